package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	Port             int
	MongoURI         string
	MongoDB          string
	JWTKey           string
	AgentPIN         string
	UseLocalFallback bool
	ReminderCron     string
	Debug            bool
}

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// LoadConfig 从环境变量和.env文件加载配置
func LoadConfig() (*Config, error) {
	// .env不存在时忽略错误，已设置的环境变量不会被覆盖
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("PORT", "8080"))

	cfg := &Config{
		Port:             port,
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "calltracker"),
		JWTKey:           getEnv("JWT_KEY", "your-secret-key"), // 实际环境应替换为安全密钥
		AgentPIN:         getEnv("AGENT_PIN", "1234"),
		UseLocalFallback: getEnv("USE_LOCAL_FALLBACK", "false") == "true",
		ReminderCron:     getEnv("REMINDER_CRON", "0 8 * * *"),
		Debug:            getEnv("GIN_MODE", "debug") == "debug",
	}

	// 配置错误是致命的，整个应用不可用
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI 未配置")
	}
	if !pinPattern.MatchString(cfg.AgentPIN) {
		return nil, fmt.Errorf("AGENT_PIN 必须是4位数字: %q", cfg.AgentPIN)
	}

	return cfg, nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
