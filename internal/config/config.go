// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

import "time"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SteamAPIKey authenticates calls against the Steam Web API. Required.
	SteamAPIKey string `koanf:"steam_api_key"`

	// SteamAPIBase is the Steam Web API origin.
	SteamAPIBase string `koanf:"steam_api_base"`

	// SteamStoreBase is the storefront API origin (appdetails).
	SteamStoreBase string `koanf:"steam_store_base"`

	// SteamCommunityBase is the community origin used for OpenID login.
	SteamCommunityBase string `koanf:"steam_community_base"`

	// UpstreamTimeoutMS bounds a single upstream HTTP call.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// RedisAddr selects the session/recents store. Empty falls back to the
	// in-process store (development only).
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// SessionTTLHours bounds login session lifetime.
	SessionTTLHours int `koanf:"session_ttl_hours"`

	// SessionCookie names the HttpOnly session cookie.
	SessionCookie string `koanf:"session_cookie"`

	// PublicBaseURL is the externally visible origin used as the OpenID
	// realm and return target. Empty derives it from request headers.
	PublicBaseURL string `koanf:"public_base_url"`

	// ProbeIntervalMS spaces vanity probes and per-title achievement calls.
	ProbeIntervalMS int `koanf:"probe_interval_ms"`

	// DetailIntervalMS spaces storefront appdetails calls.
	DetailIntervalMS int `koanf:"detail_interval_ms"`

	// MaxSuggestions caps the suggestion list returned on failed resolution.
	MaxSuggestions int `koanf:"max_suggestions"`

	// AchievementBatch caps titles handled per achievements call.
	AchievementBatch int `koanf:"achievement_batch"`

	// DetailBatch caps titles handled per game-details call.
	DetailBatch int `koanf:"detail_batch"`

	// SummaryBatch caps IDs per player-summaries call (upstream ceiling).
	SummaryBatch int `koanf:"summary_batch"`

	// FriendConcurrency bounds parallel per-friend playtime fetches.
	FriendConcurrency int `koanf:"friend_concurrency"`

	// PrivateThreshold is the share of individually private titles at which
	// an achievement batch is flagged private. Heuristic, tunable.
	PrivateThreshold float64 `koanf:"private_threshold"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8080",
		SteamAPIBase:       "https://api.steampowered.com",
		SteamStoreBase:     "https://store.steampowered.com",
		SteamCommunityBase: "https://steamcommunity.com",
		UpstreamTimeoutMS:  10_000,
		SessionTTLHours:    24,
		SessionCookie:      "steam_session",
		ProbeIntervalMS:    100,
		DetailIntervalMS:   200,
		MaxSuggestions:     8,
		AchievementBatch:   10,
		DetailBatch:        20,
		SummaryBatch:       100,
		FriendConcurrency:  8,
		PrivateThreshold:   0.5,
	}
}

// UpstreamTimeout returns the upstream HTTP timeout as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// SessionTTL returns the session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// ProbeInterval returns the probe pacing interval as a duration.
func (c *Config) ProbeInterval() time.Duration {
	return time.Duration(c.ProbeIntervalMS) * time.Millisecond
}

// DetailInterval returns the storefront pacing interval as a duration.
func (c *Config) DetailInterval() time.Duration {
	return time.Duration(c.DetailIntervalMS) * time.Millisecond
}
