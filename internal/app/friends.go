package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Entinus-oss/howmuchtime/internal/adapters/steam"
	"github.com/Entinus-oss/howmuchtime/internal/domain/identity"
)

// FriendEntry is one friend in the social listing.
type FriendEntry struct {
	SteamID      string `json:"steamId"`
	PersonaName  string `json:"personaName"`
	Avatar       string `json:"avatar"`
	ProfileURL   string `json:"profileUrl"`
	PersonaState int    `json:"personaState"`
	FriendSince  int64  `json:"friendSince"`
}

// Friends lists an account's friends with their profiles filled in,
// online friends first. Friends beyond the first summary batch, and any
// whose summary is missing, get a placeholder profile so the list length
// always matches the friend count.
func (s *Service) Friends(ctx context.Context, id identity.SteamID) ([]FriendEntry, error) {
	friends, err := s.steam.FriendList(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if len(friends) == 0 {
		return []FriendEntry{}, nil
	}

	batch := friends
	if len(batch) > s.summaryBatch {
		batch = batch[:s.summaryBatch]
	}
	ids := make([]string, 0, len(batch))
	for _, f := range batch {
		ids = append(ids, f.SteamID)
	}
	profiles, err := s.steam.PlayerSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]steam.PlayerSummary, len(profiles))
	for _, p := range profiles {
		byID[p.SteamID] = p
	}

	out := make([]FriendEntry, 0, len(friends))
	for _, f := range friends {
		entry := FriendEntry{
			SteamID:     f.SteamID,
			PersonaName: "Unknown User",
			ProfileURL:  fmt.Sprintf("https://steamcommunity.com/profiles/%s", f.SteamID),
			FriendSince: f.FriendSince,
		}
		if p, ok := byID[f.SteamID]; ok {
			entry.PersonaName = p.PersonaName
			entry.Avatar = p.AvatarMedium
			entry.ProfileURL = p.ProfileURL
			entry.PersonaState = p.PersonaState
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		iOnline := out[i].PersonaState != 0
		jOnline := out[j].PersonaState != 0
		if iOnline != jOnline {
			return iOnline
		}
		return strings.ToLower(out[i].PersonaName) < strings.ToLower(out[j].PersonaName)
	})
	return out, nil
}
