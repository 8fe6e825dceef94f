package utils

import "testing"

func TestNormalizeMobile(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"9876543210", "9876543210"},
		{"+919876543210", "9876543210"},
		{"919876543210", "9876543210"},
		{"09876543210", "9876543210"},
		{"98765 43210", "9876543210"},
		{"98765-43210", "9876543210"},
		{"(987) 654-3210", "9876543210"},
		// 前缀长度不符时不剥离
		{"98765432", "98765432"},
		{"9123456789", "9123456789"},
	}

	for _, tt := range tests {
		if got := NormalizeMobile(tt.raw); got != tt.want {
			t.Errorf("NormalizeMobile(%q) = %q, 期望 %q", tt.raw, got, tt.want)
		}
	}
}

func TestIsValidMobile(t *testing.T) {
	valid := []string{
		"9876543210",
		"6000000000",
		"7123456789",
		"8123456789",
		"+919876543210",
		"919876543210",
		"09876543210",
		"98765 43210",
	}
	for _, m := range valid {
		if !IsValidMobile(m) {
			t.Errorf("IsValidMobile(%q) 应为有效", m)
		}
	}

	invalid := []string{
		"",
		"12345",
		"5876543210",  // 首位不是6-9
		"1234567890",  // 首位不是6-9
		"98765432101", // 11位且无法剥离前缀
		"987654321",   // 9位
		"abcdefghij",
	}
	for _, m := range invalid {
		if IsValidMobile(m) {
			t.Errorf("IsValidMobile(%q) 应为无效", m)
		}
	}
}

func TestCompositeKey(t *testing.T) {
	tests := []struct {
		name   string
		mobile string
		want   string
	}{
		{"Asha Rao", "9876543210", "asharao#43210"},
		// 名称只取小写字母数字前10位
		{"Venkatasubramanian Iyer", "9876543210", "venkatasub#43210"},
		// 归一化后再取末5位，前缀写法不影响键
		{"Asha Rao", "+919876543210", "asharao#43210"},
	}

	for _, tt := range tests {
		if got := CompositeKey(tt.name, tt.mobile); got != tt.want {
			t.Errorf("CompositeKey(%q, %q) = %q, 期望 %q", tt.name, tt.mobile, got, tt.want)
		}
	}

	// 同名同尾号的两种写法必须产生同一个键
	if CompositeKey("Asha Rao", "9876543210") != CompositeKey("ASHA RAO", "919876543210") {
		t.Error("大小写和号码前缀不应影响组合键")
	}
}

func TestTelURI(t *testing.T) {
	if got := TelURI("+91 98765 43210"); got != "tel:9876543210" {
		t.Errorf("TelURI = %q, 期望 tel:9876543210", got)
	}
}
