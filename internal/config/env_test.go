package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv("APP_ENV", "test-env")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "test-db-host")
	t.Setenv("DB_SSL", "true")
	t.Setenv("WEBHOOK_VERIFY_TOKEN", "verify-me")
	t.Setenv("FACEBOOK_APP_SECRET", "app-secret")
	t.Setenv("GRAPH_TIMEOUT", "3s")
	t.Setenv("ALLOWED_ORIGINS", "https://example.com, https://admin.example.com")
	t.Setenv("DEDUPE_ENABLED", "true")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("RATE_LIMIT_RATE", "2.5")
	t.Setenv("PAGE_DEFAULT_AUTO_DELETE", "false")

	config := &AppConfig{}
	if err := LoadEnv(config); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if config.App.Environment != "test-env" {
		t.Errorf("Expected App.Environment = %s, got %s", "test-env", config.App.Environment)
	}
	if config.Server.Port != 9090 {
		t.Errorf("Expected Server.Port = %d, got %d", 9090, config.Server.Port)
	}
	if config.Database.Host != "test-db-host" || !config.Database.SSL {
		t.Errorf("Unexpected database settings %+v", config.Database)
	}
	if config.Webhook.VerifyToken != "verify-me" || config.Webhook.AppSecret != "app-secret" {
		t.Errorf("Unexpected webhook settings %+v", config.Webhook)
	}
	if config.Graph.Timeout != 3*time.Second {
		t.Errorf("Expected Graph.Timeout = 3s, got %v", config.Graph.Timeout)
	}
	if len(config.CORS.AllowedOrigins) != 2 || config.CORS.AllowedOrigins[1] != "https://admin.example.com" {
		t.Errorf("Unexpected allowed origins %v", config.CORS.AllowedOrigins)
	}
	if !config.Dedupe.Enabled || config.Dedupe.RedisDB != 2 {
		t.Errorf("Unexpected dedupe settings %+v", config.Dedupe)
	}
	if config.RateLimit.Rate != 2.5 {
		t.Errorf("Expected RateLimit.Rate = 2.5, got %v", config.RateLimit.Rate)
	}
	if config.PageDefaults.AutoDeleteBadComments == nil || *config.PageDefaults.AutoDeleteBadComments {
		t.Error("Expected PAGE_DEFAULT_AUTO_DELETE=false to set an explicit false")
	}
}

func TestLoadEnvInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"invalid integer", "SERVER_PORT", "not-a-number"},
		{"invalid duration", "GRAPH_TIMEOUT", "soon"},
		{"invalid boolean", "DEDUPE_ENABLED", "maybe"},
		{"invalid float", "RATE_LIMIT_RATE", "fast"},
		{"invalid optional boolean", "PAGE_DEFAULT_AUTO_DELETE", "perhaps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if err := LoadEnv(&AppConfig{}); err == nil {
				t.Errorf("LoadEnv() expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadEnvFromFile(t *testing.T) {
	secretPath := filepath.Join(t.TempDir(), "app_secret")
	if err := os.WriteFile(secretPath, []byte("from-file\n"), 0600); err != nil {
		t.Fatalf("Failed to write secret file: %v", err)
	}
	t.Setenv("FACEBOOK_APP_SECRET_FILE", secretPath)
	t.Setenv("JWT_SECRET", "direct")
	t.Setenv("JWT_SECRET_FILE", filepath.Join(t.TempDir(), "ignored"))

	config := &AppConfig{}
	if err := LoadEnv(config); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if config.Webhook.AppSecret != "from-file" {
		t.Errorf("Expected app secret from file, got %q", config.Webhook.AppSecret)
	}
	if config.JWT.Secret != "direct" {
		t.Errorf("Expected the variable to win over the file, got %q", config.JWT.Secret)
	}

	t.Setenv("TOKEN_ENCRYPTION_KEY_FILE", filepath.Join(t.TempDir(), "missing"))
	if err := LoadEnv(&AppConfig{}); err == nil {
		t.Error("Expected an error for an unreadable secret file")
	}
}
