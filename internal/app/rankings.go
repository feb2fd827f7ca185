package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/Entinus-oss/howmuchtime/internal/adapters/steam"
	"github.com/Entinus-oss/howmuchtime/internal/domain/identity"
	"github.com/Entinus-oss/howmuchtime/internal/domain/ranking"
	"github.com/Entinus-oss/howmuchtime/pkg/logger"
	"github.com/Entinus-oss/howmuchtime/pkg/metrics"
)

// subjectMarker is appended to the subject's display name so the ranking
// table distinguishes them from their friends.
const subjectMarker = " (You)"

// RankFriends builds the playtime leaderboard for an account and its
// friends. Only the subject's summary must be fetchable; every library
// failure, the subject's included, counts as zero playtime so private
// libraries still rank. An unreadable friend list yields a pool of one
// and a failed summary batch drops that batch.
func (s *Service) RankFriends(ctx context.Context, subject identity.SteamID) (ranking.Result, error) {
	players, err := s.steam.PlayerSummaries(ctx, []string{subject.String()})
	if err != nil {
		return ranking.Result{}, err
	}
	if len(players) == 0 {
		return ranking.Result{}, fmt.Errorf("%w: %s", ErrNotFound, subject)
	}
	owned, err := s.steam.OwnedGames(ctx, subject.String())
	if err != nil {
		s.logger.Warn(ctx, "subject library unreadable, counting zero playtime",
			logger.String("steamId", subject.String()),
			logger.Error(err),
		)
		owned = steam.OwnedGames{}
	}

	friends, err := s.steam.FriendList(ctx, subject.String())
	if err != nil {
		s.logger.Warn(ctx, "friend list unavailable, ranking subject alone",
			logger.String("steamId", subject.String()),
			logger.Error(err),
		)
		friends = nil
	}

	profiles := s.friendProfiles(ctx, friends)
	playtimes := s.friendPlaytimes(ctx, profiles)
	pool := make([]ranking.Player, 0, len(profiles)+1)
	for i, p := range profiles {
		pool = append(pool, toRankedPlayer(p, playtimes[i].minutes, playtimes[i].games, false))
	}
	// The subject goes last so a playtime tie sorts them below the friend.
	pool = append(pool, toRankedPlayer(players[0], owned.TotalPlaytime(), owned.GameCount, true))

	metrics.RecordRankingPoolSize(len(pool))
	return ranking.Rank(pool, subject.String()), nil
}

// friendProfiles fetches friend summaries in batches. A failed batch is
// logged and skipped; the remaining batches still contribute.
func (s *Service) friendProfiles(ctx context.Context, friends []steam.Friend) []steam.PlayerSummary {
	profiles := make([]steam.PlayerSummary, 0, len(friends))
	for start := 0; start < len(friends); start += s.summaryBatch {
		end := start + s.summaryBatch
		if end > len(friends) {
			end = len(friends)
		}
		ids := make([]string, 0, end-start)
		for _, f := range friends[start:end] {
			ids = append(ids, f.SteamID)
		}

		batch, err := s.steam.PlayerSummaries(ctx, ids)
		if err != nil {
			s.logger.Warn(ctx, "friend summary batch failed",
				logger.Int("offset", start),
				logger.Int("size", len(ids)),
				logger.Error(err),
			)
			continue
		}
		profiles = append(profiles, batch...)
	}
	return profiles
}

type playtime struct {
	minutes int
	games   int
}

// friendPlaytimes fetches each friend's library totals with bounded
// concurrency. Each friend is tried exactly once; a failure, usually a
// private library, counts as zero playtime so the friend still ranks.
func (s *Service) friendPlaytimes(ctx context.Context, profiles []steam.PlayerSummary) []playtime {
	out := make([]playtime, len(profiles))
	sem := make(chan struct{}, s.friendFetchers)

	var wg sync.WaitGroup
	for i, p := range profiles {
		wg.Add(1)
		go func(i int, steamID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			owned, err := s.steam.OwnedGames(ctx, steamID)
			if err != nil {
				s.logger.Debug(ctx, "friend library unreadable, counting zero playtime",
					logger.String("steamId", steamID),
					logger.Error(err),
				)
				return
			}
			out[i] = playtime{minutes: owned.TotalPlaytime(), games: owned.GameCount}
		}(i, p.SteamID)
	}
	wg.Wait()
	return out
}

func toRankedPlayer(p steam.PlayerSummary, minutes, games int, subject bool) ranking.Player {
	name := p.PersonaName
	if subject {
		name += subjectMarker
	}
	return ranking.Player{
		SteamID:       p.SteamID,
		PersonaName:   name,
		Avatar:        p.Avatar,
		AvatarMedium:  p.AvatarMedium,
		AvatarFull:    p.AvatarFull,
		ProfileURL:    p.ProfileURL,
		PersonaState:  p.PersonaState,
		TotalPlaytime: minutes,
		TotalGames:    games,
		CountryCode:   p.CountryCode,
		RealName:      p.RealName,
	}
}
