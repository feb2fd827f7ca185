package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if HMT_CONFIG is set
//  3. env (prefix HMT_)
//
// A .env file in the working directory is loaded into the environment first;
// its absence is not an error.
func Load(_ context.Context) (*Config, error) {
	_ = godotenv.Load()

	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("HMT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: HMT_ADDR, HMT_STEAM_API_KEY, ...
	// Map env keys like HMT_STEAM_API_KEY -> steam_api_key (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("HMT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "hmt_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.SteamAPIKey == "" {
		return nil, fmt.Errorf("%w: steam_api_key must be set", ErrInvalidConfig)
	}
	if cfg.PrivateThreshold < 0 || cfg.PrivateThreshold > 1 {
		return nil, fmt.Errorf("%w: private_threshold must be within [0, 1]", ErrInvalidConfig)
	}
	return &cfg, nil
}
