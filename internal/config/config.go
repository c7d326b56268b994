// Package config loads runtime settings from an optional YAML file and
// STREAKR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/sadopc/streakr/internal/store"
)

const (
	EnvPrefix     = "STREAKR"
	EnvConfigPath = "STREAKR_CONFIG"
	TypeYaml      = "yaml"

	KeyUserID        = "user_id"
	KeyBackend       = "backend"
	KeySQLitePath    = "sqlite.path"
	KeyRedisAddr     = "redis.addr"
	KeyRedisPassword = "redis.password"
	KeyRedisDB       = "redis.db"
	KeyRollover      = "rollover"
	KeyFocusMinutes  = "focus.minutes"
	KeyIdleMinutes   = "focus.idle_minutes"
	KeyLogLevel      = "log.level"
	KeyLogFile       = "log.file"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	UserID       string
	Backend      string
	SQLitePath   string
	Redis        RedisConfig
	Rollover     string // HH:MM
	FocusMinutes int
	IdleMinutes  int
	LogLevel     logrus.Level
	LogFile      string

	// File is the config file that was read, empty when none existed.
	File string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Dir returns ~/.config/streakr.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "streakr"), nil
}

// Load reads $STREAKR_CONFIG, or config.yaml in Dir, if present. Environment
// variables override file values.
func Load() (Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return Config{}, fmt.Errorf("locate config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit path. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType(TypeYaml)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := setDefaults(v); err != nil {
		return Config{}, err
	}

	var file string
	if path != "" {
		v.SetConfigFile(path)
		err := v.ReadInConfig()
		switch {
		case err == nil:
			file = path
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	level, err := logrus.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}

	cfg := Config{
		UserID:     strings.TrimSpace(v.GetString(KeyUserID)),
		Backend:    strings.ToLower(strings.TrimSpace(v.GetString(KeyBackend))),
		SQLitePath: v.GetString(KeySQLitePath),
		Redis: RedisConfig{
			Addr:     v.GetString(KeyRedisAddr),
			Password: v.GetString(KeyRedisPassword),
			DB:       v.GetInt(KeyRedisDB),
		},
		Rollover:     strings.TrimSpace(v.GetString(KeyRollover)),
		FocusMinutes: v.GetInt(KeyFocusMinutes),
		IdleMinutes:  v.GetInt(KeyIdleMinutes),
		LogLevel:     level,
		LogFile:      v.GetString(KeyLogFile),
		File:         file,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) error {
	dir, err := Dir()
	if err != nil {
		return fmt.Errorf("locate config dir: %w", err)
	}
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return fmt.Errorf("locate database: %w", err)
	}

	v.SetDefault(KeyUserID, defaultUserID())
	v.SetDefault(KeyBackend, BackendSQLite)
	v.SetDefault(KeySQLitePath, dbPath)
	v.SetDefault(KeyRedisAddr, "localhost:6379")
	v.SetDefault(KeyRedisPassword, "")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyRollover, "00:00")
	v.SetDefault(KeyFocusMinutes, 25)
	v.SetDefault(KeyIdleMinutes, 5)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, filepath.Join(dir, "streakr.log"))
	return nil
}

func defaultUserID() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

func (c Config) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%s must not be empty", KeyUserID)
	}
	switch c.Backend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%s must not be empty", KeySQLitePath)
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%s must not be empty", KeyRedisAddr)
		}
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", KeyBackend, BackendSQLite, BackendRedis, c.Backend)
	}
	if _, err := time.Parse("15:04", c.Rollover); err != nil {
		return fmt.Errorf("%s must be HH:MM, got %q", KeyRollover, c.Rollover)
	}
	if c.FocusMinutes <= 0 {
		return fmt.Errorf("%s must be positive", KeyFocusMinutes)
	}
	if c.IdleMinutes < 0 {
		return fmt.Errorf("%s must not be negative", KeyIdleMinutes)
	}
	return nil
}

func (c Config) FocusDuration() time.Duration {
	return time.Duration(c.FocusMinutes) * time.Minute
}

// IdleTimeout is zero when idle auto-pause is disabled.
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleMinutes) * time.Minute
}
