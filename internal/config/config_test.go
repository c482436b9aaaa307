package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
mongo:
  database: gp_dashboard_test
auth:
  session_ttl: 2h
  refresh_window: 30m
rate_limit:
  login_per_minute: 5
model:
  name: trial_model
  classes: [healthy, mild, moderate, severe]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Mongo.Database != "gp_dashboard_test" {
		t.Fatalf("unexpected mongo database: %q", cfg.Mongo.Database)
	}
	if cfg.Auth.SessionTTL != 2*time.Hour {
		t.Fatalf("unexpected session ttl: %s", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.RefreshWindow != 30*time.Minute {
		t.Fatalf("unexpected refresh window: %s", cfg.Auth.RefreshWindow)
	}
	if cfg.RateLimit.LoginPerMinute != 5 {
		t.Fatalf("unexpected login rate limit: %d", cfg.RateLimit.LoginPerMinute)
	}
	if cfg.Model.Name != "trial_model" {
		t.Fatalf("unexpected model name: %q", cfg.Model.Name)
	}
	if len(cfg.Model.Classes) != 4 || cfg.Model.Classes[0] != "healthy" {
		t.Fatalf("unexpected model classes: %v", cfg.Model.Classes)
	}

	// untouched sections keep defaults
	if cfg.HTTP.Addr != ":8000" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTP.Addr)
	}
	if cfg.Auth.CookieName != "session_token" {
		t.Fatalf("unexpected cookie name: %q", cfg.Auth.CookieName)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Auth.SessionTTL != time.Hour {
		t.Fatalf("unexpected session ttl: %s", cfg.Auth.SessionTTL)
	}
	if cfg.RateLimit.LoginPerMinute != 20 {
		t.Fatalf("unexpected login rate limit: %d", cfg.RateLimit.LoginPerMinute)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("MONGO_URI", "mongodb://db.internal:27017")
	t.Setenv("DB_NAME", "dashboard_prod")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Mongo.URI != "mongodb://db.internal:27017" {
		t.Fatalf("unexpected mongo uri: %q", cfg.Mongo.URI)
	}
	if cfg.Mongo.Database != "dashboard_prod" {
		t.Fatalf("unexpected mongo database: %q", cfg.Mongo.Database)
	}
	if cfg.Auth.SessionTTL != 45*time.Minute {
		t.Fatalf("unexpected session ttl: %s", cfg.Auth.SessionTTL)
	}
	if cfg.RateLimit.LoginPerMinute != 3 {
		t.Fatalf("unexpected login rate limit: %d", cfg.RateLimit.LoginPerMinute)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORS.AllowedOrigins)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL", "MONGO_URI", "DB_NAME", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"SESSION_TTL", "SESSION_REFRESH_WINDOW", "SESSION_COOKIE_NAME", "SESSION_COOKIE_SECURE",
		"LOGIN_RATE_PER_MINUTE", "CORS_ALLOWED_ORIGINS", "MODEL_NAME", "MODEL_INPUT_SIZE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
