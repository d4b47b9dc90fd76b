package main

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	cfgPath := writeFile(t, "config.json", `{
		"http_port": 7070,
		"store_driver": "redis",
		"redis_addr": "localhost:6379",
		"poll_interval": "2s",
		"cors_allow_origins": ["https://a.example"]
	}`)
	t.Setenv("HIRECHAT_HTTP_PORT", "8080")
	t.Setenv("HIRECHAT_CORS_ALLOW_ORIGINS", "https://b.example,https://c.example")

	cfg, err := LoadConfig(cfgPath, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HttpPort != 8080 {
		t.Errorf("env must override the file, port = %d", cfg.HttpPort)
	}
	if cfg.StoreDriver != "redis" || cfg.RedisAddr != "localhost:6379" {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("poll interval = %s", cfg.PollInterval)
	}
	if !slices.Equal(cfg.CorsAllowOrigins, []string{"https://b.example", "https://c.example"}) {
		t.Errorf("origins = %v", cfg.CorsAllowOrigins)
	}
	if cfg.NotifyMaxRetry != 3 {
		t.Errorf("defaults must survive a partial file, notify_max_retry = %d", cfg.NotifyMaxRetry)
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	envPath := writeFile(t, ".env", "HIRECHAT_STORE_DRIVER=memory\nHIRECHAT_ROOM_URL_BASE=https://rooms.example\n")
	t.Cleanup(func() {
		os.Unsetenv("HIRECHAT_STORE_DRIVER")
		os.Unsetenv("HIRECHAT_ROOM_URL_BASE")
	})

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"), envPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreDriver != "memory" || cfg.RoomURLBase != "https://rooms.example" {
		t.Errorf("env file not applied: %+v", cfg)
	}
	if cfg.HttpPort != 6060 {
		t.Errorf("expected default port, got %d", cfg.HttpPort)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", `{"store_driver": "sqlite"}`},
		{"bad interval", `{"store_driver": "memory", "poll_interval": "soon"}`},
		{"postgres without dsn", `{"store_driver": "postgres"}`},
		{"mongo without database", `{"store_driver": "mongo", "mongo_uri": "mongodb://localhost"}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeFile(t, "config.json", tt.content), ""); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
