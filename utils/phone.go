package utils

import (
	"regexp"
	"strings"
)

var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// NormalizeMobile 归一化手机号
// 去掉空格、横线、括号，再剥离 +91 / 91 / 0 前缀，返回纯10位号码
func NormalizeMobile(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	phone := b.String()

	switch {
	case strings.HasPrefix(phone, "+91") && len(phone) == 13:
		phone = phone[3:]
	case strings.HasPrefix(phone, "91") && len(phone) == 12:
		phone = phone[2:]
	case strings.HasPrefix(phone, "0") && len(phone) == 11:
		phone = phone[1:]
	}

	return phone
}

// IsValidMobile 验证手机号是否有效
// 归一化后必须是以6/7/8/9开头的10位号码
func IsValidMobile(raw string) bool {
	return mobilePattern.MatchString(NormalizeMobile(raw))
}

// CompositeKey 生成客户查重用的组合键
// 名称取小写字母数字前缀，号码取末5位，两者拼接
func CompositeKey(name, mobile string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
		if b.Len() >= 10 {
			break
		}
	}

	digits := NormalizeMobile(mobile)
	suffix := digits
	if len(digits) > 5 {
		suffix = digits[len(digits)-5:]
	}

	return b.String() + "#" + suffix
}

// TelURI 生成拨号链接
// 本系统不会自己发起呼叫，只是导航到 tel: 地址
func TelURI(mobile string) string {
	return "tel:" + NormalizeMobile(mobile)
}
