package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Backend != BackendSQLite || cfg.Rollover != "00:00" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.FocusDuration() != 25*time.Minute || cfg.IdleTimeout() != 5*time.Minute {
		t.Fatalf("unexpected focus defaults: %+v", cfg)
	}
	if cfg.LogLevel != logrus.InfoLevel || cfg.UserID == "" || cfg.File != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !strings.HasSuffix(cfg.SQLitePath, filepath.Join("streakr", "streakr.db")) {
		t.Fatalf("unexpected db path %q", cfg.SQLitePath)
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := writeConfig(t, `
user_id: alice
backend: redis
redis:
  addr: cache:6380
  db: 2
rollover: "04:30"
focus:
  minutes: 50
  idle_minutes: 0
log:
  level: debug
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UserID != "alice" || cfg.Backend != BackendRedis || cfg.File != path {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Redis.Addr != "cache:6380" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Rollover != "04:30" || cfg.FocusMinutes != 50 || cfg.IdleTimeout() != 0 {
		t.Fatalf("unexpected schedule config: %+v", cfg)
	}
	if cfg.LogLevel != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", cfg.LogLevel)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "user_id: alice\nfocus:\n  minutes: 50\n")
	t.Setenv("STREAKR_USER_ID", "bob")
	t.Setenv("STREAKR_FOCUS_MINUTES", "15")
	t.Setenv("STREAKR_REDIS_ADDR", "remote:6379")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UserID != "bob" || cfg.FocusMinutes != 15 || cfg.Redis.Addr != "remote:6379" {
		t.Fatalf("env should override file: %+v", cfg)
	}
}

func TestLoadUsesConfigEnv(t *testing.T) {
	path := writeConfig(t, "user_id: carol\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UserID != "carol" || cfg.File != path {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"backend", "backend: postgres\n", "backend"},
		{"rollover", "rollover: midnight\n", "rollover"},
		{"focus", "focus:\n  minutes: 0\n", "focus.minutes"},
		{"idle", "focus:\n  idle_minutes: -1\n", "focus.idle_minutes"},
		{"level", "log:\n  level: loud\n", "log.level"},
		{"yaml", "backend: [\n", "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
