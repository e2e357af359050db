package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/asakatsu/internal/clock"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "WAKEUP_"
	envConfigFile = "WAKEUP_CONFIG"

	maxHistoryDays = 31
)

var (
	// ErrInvalidConfig 表示配置值未通过校验。
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig 表示配置文件或环境变量读取失败。
	ErrLoadConfig = errors.New("load config failed")
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string `koanf:"addr"`
	Port           string `koanf:"port"`
	DatabasePath   string `koanf:"database_path"`
	SessionSecret  string `koanf:"session_secret"`
	GinMode        string `koanf:"gin_mode"`
	Timezone       string `koanf:"timezone"`
	LogLevel       string `koanf:"log_level"`
	TemplateDir    string `koanf:"template_dir"`
	StaticDir      string `koanf:"static_dir"`
	HistoryDays    int    `koanf:"history_days"`
	MetricsEnabled bool   `koanf:"metrics_enabled"`
}

// Default 返回未经任何覆盖的默认配置。
func Default() AppConfig {
	return AppConfig{
		Port:           "10000",
		DatabasePath:   "wakeups.db",
		SessionSecret:  "asakatsu-dev-secret",
		GinMode:        "release",
		Timezone:       clock.DefaultTimezone,
		LogLevel:       "info",
		TemplateDir:    "web/template",
		StaticDir:      "web/static",
		HistoryDays:    7,
		MetricsEnabled: true,
	}
}

// Load 按 默认值 -> YAML 文件(WAKEUP_CONFIG) -> 环境变量(WAKEUP_*) 的顺序叠加配置。
func Load() (AppConfig, error) {
	k := koanf.New(".")

	if path := strings.TrimSpace(os.Getenv(envConfigFile)); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return AppConfig{}, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// WAKEUP_DATABASE_PATH -> database_path
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return AppConfig{}, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return AppConfig{}, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	c.Port = strings.TrimSpace(c.Port)
	if c.ListenAddr == "" && c.Port != "" {
		c.ListenAddr = ":" + c.Port
	}
	c.DatabasePath = strings.TrimSpace(c.DatabasePath)
	c.SessionSecret = strings.TrimSpace(c.SessionSecret)
	c.GinMode = strings.ToLower(strings.TrimSpace(c.GinMode))
	c.Timezone = strings.TrimSpace(c.Timezone)
}

// Validate 检查配置是否可用于启动服务。
func (c AppConfig) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database_path must not be empty", ErrInvalidConfig)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("%w: session_secret must not be empty", ErrInvalidConfig)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("%w: unsupported gin_mode %q", ErrInvalidConfig, c.GinMode)
	}
	if c.HistoryDays < 1 || c.HistoryDays > maxHistoryDays {
		return fmt.Errorf("%w: history_days must be between 1 and %d", ErrInvalidConfig, maxHistoryDays)
	}
	if _, err := clock.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
