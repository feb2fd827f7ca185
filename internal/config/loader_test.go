package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/Entinus-oss/howmuchtime/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults and a key", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HMT_STEAM_API_KEY", "test-key")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SteamAPIKey, convey.ShouldEqual, "test-key")
				convey.So(cfg.MaxSuggestions, convey.ShouldEqual, 8)
				convey.So(cfg.SummaryBatch, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HMT_STEAM_API_KEY", "test-key")
			_ = os.Setenv("HMT_ADDR", ":9090")
			_ = os.Setenv("HMT_MAX_SUGGESTIONS", "4")
			_ = os.Setenv("HMT_PROBE_INTERVAL_MS", "250")
			_ = os.Setenv("HMT_REDIS_ADDR", "localhost:6379")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MaxSuggestions, convey.ShouldEqual, 4)
				convey.So(cfg.ProbeIntervalMS, convey.ShouldEqual, 250)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":7070"
steam_api_key: file-key
detail_batch: 5
private_threshold: 0.75
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			clearConfigEnvVars()
			_ = os.Setenv("HMT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.SteamAPIKey, convey.ShouldEqual, "file-key")
				convey.So(cfg.DetailBatch, convey.ShouldEqual, 5)
				convey.So(cfg.PrivateThreshold, convey.ShouldEqual, 0.75)
			})

			convey.Convey("And defaults fill the missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SummaryBatch, convey.ShouldEqual, 100)
				convey.So(cfg.SessionCookie, convey.ShouldEqual, "steam_session")
			})
		})

		convey.Convey("When env vars and a file are both present", func() {
			yamlContent := `
addr: ":7070"
steam_api_key: file-key
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			clearConfigEnvVars()
			_ = os.Setenv("HMT_CONFIG", tmpFile)
			_ = os.Setenv("HMT_ADDR", ":8081")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.SteamAPIKey, convey.ShouldEqual, "file-key")
			})
		})

		convey.Convey("When the Steam API key is missing", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "steam_api_key")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the addr is cleared", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HMT_STEAM_API_KEY", "test-key")
			_ = os.Setenv("HMT_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the private threshold is out of range", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HMT_STEAM_API_KEY", "test-key")
			_ = os.Setenv("HMT_PRIVATE_THRESHOLD", "1.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HMT_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// clearConfigEnvVars removes every HMT_ variable this test suite touches.
func clearConfigEnvVars() {
	for _, key := range []string{
		"HMT_CONFIG",
		"HMT_ADDR",
		"HMT_STEAM_API_KEY",
		"HMT_MAX_SUGGESTIONS",
		"HMT_PROBE_INTERVAL_MS",
		"HMT_PRIVATE_THRESHOLD",
		"HMT_REDIS_ADDR",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "hmt-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	_ = tmpFile.Close()
	return tmpFile.Name()
}
