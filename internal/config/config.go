package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBDriver    string
	DatabaseURL string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	LLMModel          string
	LLMTemperature    float32
	LLMTimeout        time.Duration
	HistoryLimit      int
	AppReferer        string
	AppTitle          string

	TelegramToken string
	AdminChatID   int64

	RobokassaLogin     string
	RobokassaPassword1 string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3Insecure  bool

	CORSOrigins        []string
	InterpretRateLimit int
}

// Load — .env (если есть) + переменные окружения
func Load() (Config, error) {
	_ = godotenv.Load()

	c := Config{
		Port:               envOr("PORT", "8080"),
		DBDriver:           envOr("DB_DRIVER", "postgres"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		OpenRouterAPIKey:   os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL:  envOr("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMModel:           envOr("LLM_MODEL", "mistralai/mistral-7b-instruct"),
		LLMTemperature:     0.7,
		LLMTimeout:         60 * time.Second,
		HistoryLimit:       3,
		AppReferer:         envOr("APP_REFERER", "http://localhost:3000"),
		AppTitle:           envOr("APP_TITLE", "AI Dream Interpreter"),
		TelegramToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		RobokassaLogin:     os.Getenv("ROBOKASSA_MERCHANT_LOGIN"),
		RobokassaPassword1: os.Getenv("ROBOKASSA_PASSWORD_1"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3AccessKey:        os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:        os.Getenv("S3_SECRET_KEY"),
		S3Bucket:           os.Getenv("S3_BUCKET"),
		S3Region:           os.Getenv("S3_REGION"),
		S3Insecure:         os.Getenv("S3_INSECURE") == "true",
		CORSOrigins:        splitList(envOr("CORS_ORIGINS", "*")),
		InterpretRateLimit: 30,
	}

	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LLM_TEMPERATURE %q: %w", v, err)
		}
		c.LLMTemperature = float32(f)
	}

	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LLM_TIMEOUT %q: %w", v, err)
		}
		c.LLMTimeout = d
	}

	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid HISTORY_LIMIT %q", v)
		}
		c.HistoryLimit = n
	}

	if v := os.Getenv("ADMIN_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ADMIN_CHAT_ID %q: %w", v, err)
		}
		c.AdminChatID = id
	}

	if v := os.Getenv("INTERPRET_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid INTERPRET_RATE_LIMIT %q", v)
		}
		c.InterpretRateLimit = n
	}

	switch c.DBDriver {
	case "postgres", "sqlite3":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is not set")
	}
	if c.OpenRouterAPIKey == "" {
		return Config{}, fmt.Errorf("OPENROUTER_API_KEY is not set")
	}

	return c, nil
}

// S3Enabled — экспорт истории включается только при полном наборе ключей
func (c Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
