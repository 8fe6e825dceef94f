package utils

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

var (
	jwtSecret []byte
	agentPIN  string
)

// InitAuth 初始化认证模块
func InitAuth(jwtKey, pin string) {
	jwtSecret = []byte(jwtKey)
	agentPIN = pin
}

// VerifyPIN 校验坐席PIN
// PIN只在内存中比较，不落库
func VerifyPIN(pin string) bool {
	if agentPIN == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pin), []byte(agentPIN)) == 1
}

// GenerateToken 生成坐席会话JWT令牌
func GenerateToken(pin string) (string, error) {
	Logger.Info().Msg("开始生成token")

	// 创建JWT Claims
	claims := jwt.MapClaims{
		"agentPin": pin,
		"exp":      time.Now().Add(time.Hour * 24 * 30).Unix(), // 30天有效期
		"iat":      time.Now().Unix(),
	}

	// 创建token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// 签名token
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		Logger.Error().Err(err).Msg("生成token失败")
		return "", err
	}

	Logger.Info().
		Str("token", tokenString[:10]+"...").
		Int("length", len(tokenString)).
		Msg("Token生成成功")

	return tokenString, nil
}

// ParseToken 解析和验证JWT令牌
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	// 验证token并提取claims
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("无效的token")
}

// LoginAgent 当前登录坐席
type LoginAgent struct {
	Pin string `json:"agentPin"`
}

// GetAgent 从请求上下文中取出当前坐席
func GetAgent(c *gin.Context) (*LoginAgent, error) {
	currentAgent, exists := c.Get("agent")
	if !exists {
		return nil, fmt.Errorf("GetAgent 未授权访问")
	}

	// 处理不同类型的 claims
	var claims map[string]interface{}
	switch v := currentAgent.(type) {
	case jwt.MapClaims:
		claims = make(map[string]interface{})
		for key, val := range v {
			claims[key] = val
		}
	case map[string]interface{}:
		claims = v
	default:
		return nil, fmt.Errorf("无法处理会话信息格式: %T", currentAgent)
	}

	pin, ok := claims["agentPin"].(string)
	if !ok {
		return nil, fmt.Errorf("无效的坐席PIN")
	}

	return &LoginAgent{Pin: pin}, nil
}
