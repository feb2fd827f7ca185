package steam

import "errors"

var (
	// ErrUpstream marks any transport failure or non-success status from
	// the Steam API or storefront. Callers match it to return 502.
	ErrUpstream = errors.New("steam upstream failure")

	// ErrVanityNotFound is returned when ResolveVanityURL reports no match.
	ErrVanityNotFound = errors.New("vanity url did not resolve")

	// ErrStatsPrivate is returned when GetPlayerAchievements refuses a
	// title because the profile or its game details are not public.
	ErrStatsPrivate = errors.New("player stats are private")

	// ErrNoStats is returned when GetPlayerAchievements reports the title
	// tracks no stats at all. Distinct from ErrStatsPrivate so callers can
	// report zero totals instead of a privacy fallback.
	ErrNoStats = errors.New("title has no stats")

	// ErrBatchTooLarge is returned when a summaries request exceeds the
	// upstream batch ceiling.
	ErrBatchTooLarge = errors.New("summary batch exceeds upstream limit")
)
