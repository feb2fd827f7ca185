package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Entinus-oss/howmuchtime/internal/adapters/steam"
	"github.com/Entinus-oss/howmuchtime/internal/domain/identity"
	"github.com/Entinus-oss/howmuchtime/internal/domain/suggest"
	"github.com/Entinus-oss/howmuchtime/pkg/logger"
	"github.com/Entinus-oss/howmuchtime/pkg/metrics"
)

// ResolveAccount turns any user-supplied identifier (canonical id, profile
// URL, vanity URL, or bare name) into a canonical SteamID. A vanity name
// that does not resolve triggers a suggestion search; when that finds
// alternatives the returned error is a *SuggestionsError, otherwise
// ErrNotFound.
func (s *Service) ResolveAccount(ctx context.Context, raw string) (identity.SteamID, error) {
	id, vanity := identity.Normalize(raw)
	if id != "" {
		metrics.RecordResolution("canonical")
		return id, nil
	}

	resolved, err := s.steam.ResolveVanity(ctx, vanity)
	if err == nil {
		id := identity.SteamID(resolved)
		if !id.Valid() {
			metrics.RecordResolution("error")
			return "", fmt.Errorf("%w: malformed id %q for vanity %s", steam.ErrUpstream, resolved, vanity)
		}
		metrics.RecordResolution("vanity")
		return id, nil
	}
	if !errors.Is(err, steam.ErrVanityNotFound) {
		metrics.RecordResolution("error")
		return "", err
	}

	suggestions := s.suggestProfiles(ctx, vanity)
	if len(suggestions) > 0 {
		metrics.RecordResolution("suggested")
		return "", &SuggestionsError{Query: vanity, Suggestions: suggestions}
	}
	metrics.RecordResolution("not_found")
	return "", fmt.Errorf("%w: %s", ErrNotFound, vanity)
}

// suggestProfiles probes spelling variations of a failed vanity name and
// returns the profiles that resolve. Probes are paced; individual probe
// failures are skipped. The search stops as soon as enough suggestions
// are collected.
func (s *Service) suggestProfiles(ctx context.Context, vanity string) []ProfileSuggestion {
	seen := map[string]bool{}
	suggestions := make([]ProfileSuggestion, 0, s.maxSuggestions)

	for _, candidate := range suggest.Variations(vanity) {
		if len(suggestions) >= s.maxSuggestions {
			break
		}
		if err := s.probePace.Wait(ctx); err != nil {
			break
		}

		metrics.RecordSuggestionProbe()
		resolved, err := s.steam.ResolveVanity(ctx, candidate)
		if err != nil || seen[resolved] {
			continue
		}
		seen[resolved] = true

		players, err := s.steam.PlayerSummaries(ctx, []string{resolved})
		if err != nil || len(players) == 0 {
			continue
		}
		metrics.RecordSuggestionHit()
		suggestions = append(suggestions, ProfileSuggestion{
			SteamID:     players[0].SteamID,
			PersonaName: players[0].PersonaName,
			Avatar:      players[0].AvatarMedium,
			ProfileURL:  players[0].ProfileURL,
		})
	}

	s.logger.Debug(ctx, "suggestion search finished",
		logger.String("query", vanity),
		logger.Int("found", len(suggestions)),
	)
	return suggestions
}
