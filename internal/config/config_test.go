package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/saucier")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AppEnv != "development" {
		t.Errorf("AppEnv = %s, want development", cfg.AppEnv)
	}
	if cfg.AppPort != 8080 {
		t.Errorf("AppPort = %d, want 8080", cfg.AppPort)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %s, want http://localhost:8080", cfg.BaseURL)
	}
	if cfg.MediaRoot != "./media" {
		t.Errorf("MediaRoot = %s, want ./media", cfg.MediaRoot)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.MaxRequestBodySize != 1<<20 {
		t.Errorf("MaxRequestBodySize = %d, want %d", cfg.MaxRequestBodySize, 1<<20)
	}
	if cfg.MaxImageBytes != 8<<20 {
		t.Errorf("MaxImageBytes = %d, want %d", cfg.MaxImageBytes, 8<<20)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	// t.Setenv registers the restore; unset so "required" trips.
	t.Setenv("DATABASE_URL", "placeholder")
	os.Unsetenv("DATABASE_URL")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("MEDIA_ROOT", "/var/media")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
	if cfg.IsDevelopment() {
		t.Error("did not expect development mode")
	}
	if cfg.AppPort != 9000 {
		t.Errorf("AppPort = %d, want 9000", cfg.AppPort)
	}
	if cfg.MediaRoot != "/var/media" {
		t.Errorf("MediaRoot = %s, want /var/media", cfg.MediaRoot)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %s, want text", cfg.LogFormat)
	}
}

func TestGetCORSAllowedOrigins(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "https://example.com", []string{"https://example.com"}},
		{"multiple with spaces", "https://a.com, https://b.com ,https://c.com", []string{"https://a.com", "https://b.com", "https://c.com"}},
		{"trailing comma", "https://a.com,", []string{"https://a.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{CORSAllowedOrigins: tt.value}
			got := cfg.GetCORSAllowedOrigins()

			if len(got) != len(tt.want) {
				t.Fatalf("got %d origins, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("origin[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}
