package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/asakatsu/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ListenAddr, convey.ShouldEqual, ":10000")
				convey.So(cfg.DatabasePath, convey.ShouldEqual, "wakeups.db")
				convey.So(cfg.Timezone, convey.ShouldEqual, "Asia/Tokyo")
				convey.So(cfg.HistoryDays, convey.ShouldEqual, 7)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("WAKEUP_ADDR", "127.0.0.1:8080")
			_ = os.Setenv("WAKEUP_DATABASE_PATH", "data/test.db")
			_ = os.Setenv("WAKEUP_HISTORY_DAYS", "14")
			_ = os.Setenv("WAKEUP_METRICS_ENABLED", "false")
			_ = os.Setenv("WAKEUP_GIN_MODE", "DEBUG")

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ListenAddr, convey.ShouldEqual, "127.0.0.1:8080")
				convey.So(cfg.DatabasePath, convey.ShouldEqual, "data/test.db")
				convey.So(cfg.HistoryDays, convey.ShouldEqual, 14)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
				convey.So(cfg.GinMode, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When only a port is configured", func() {
			_ = os.Setenv("WAKEUP_PORT", "9000")

			cfg, err := config.Load()

			convey.Convey("Then the listen address is derived from it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ListenAddr, convey.ShouldEqual, ":9000")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeConfigFile(t, `
addr: ":9090"
timezone: "UTC"
history_days: 10
`)
			_ = os.Setenv("WAKEUP_CONFIG", path)
			_ = os.Setenv("WAKEUP_HISTORY_DAYS", "3")

			cfg, err := config.Load()

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ListenAddr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Timezone, convey.ShouldEqual, "UTC")
				convey.So(cfg.HistoryDays, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the config file is missing", func() {
			_ = os.Setenv("WAKEUP_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load()

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the timezone is unknown", func() {
			_ = os.Setenv("WAKEUP_TIMEZONE", "Mars/Olympus_Mons")

			_, err := config.Load()

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When history_days is out of range", func() {
			_ = os.Setenv("WAKEUP_HISTORY_DAYS", "90")

			_, err := config.Load()

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "history_days")
			})
		})
	})
}

func TestDefaultValidates(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.Default()
		cfg.ListenAddr = ":10000"

		convey.So(cfg.Validate(), convey.ShouldBeNil)

		convey.Convey("An unsupported gin mode is rejected", func() {
			cfg.GinMode = "turbo"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wakeup.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "WAKEUP_") {
			_ = os.Unsetenv(key)
		}
	}
}
