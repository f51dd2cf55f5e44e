package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/dreams")
	t.Setenv("OPENROUTER_API_KEY", "key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Port != "8080" {
		t.Errorf("port: %s", c.Port)
	}
	if c.DBDriver != "postgres" {
		t.Errorf("driver: %s", c.DBDriver)
	}
	if c.LLMTimeout != 60*time.Second {
		t.Errorf("timeout: %v", c.LLMTimeout)
	}
	if c.HistoryLimit != 3 {
		t.Errorf("history limit: %d", c.HistoryLimit)
	}
	if c.LLMModel != "mistralai/mistral-7b-instruct" {
		t.Errorf("model: %s", c.LLMModel)
	}
	if len(c.CORSOrigins) != 1 || c.CORSOrigins[0] != "*" {
		t.Errorf("cors: %v", c.CORSOrigins)
	}
	if c.S3Enabled() {
		t.Errorf("s3 must be disabled without keys")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("HISTORY_LIMIT", "5")
	t.Setenv("ADMIN_CHAT_ID", "-100123")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://example.org ,")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.DBDriver != "sqlite3" || c.LLMTimeout != 15*time.Second || c.HistoryLimit != 5 {
		t.Errorf("unexpected config: %+v", c)
	}
	if c.LLMTemperature < 0.19 || c.LLMTemperature > 0.21 {
		t.Errorf("temperature: %v", c.LLMTemperature)
	}
	if c.AdminChatID != -100123 {
		t.Errorf("admin chat: %d", c.AdminChatID)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "https://example.org" {
		t.Errorf("cors: %v", c.CORSOrigins)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing db url":  {"DATABASE_URL": ""},
		"missing api key": {"OPENROUTER_API_KEY": ""},
		"bad driver":      {"DB_DRIVER": "mysql"},
		"bad timeout":     {"LLM_TIMEOUT": "soon"},
		"bad history":     {"HISTORY_LIMIT": "-1"},
		"zero history":    {"HISTORY_LIMIT": "0"},
		"bad rate limit":  {"INTERPRET_RATE_LIMIT": "0"},
		"bad admin chat":  {"ADMIN_CHAT_ID": "admin"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ")
	if strings.Join(got, "|") != "a|b" {
		t.Errorf("splitList: %v", got)
	}
}
