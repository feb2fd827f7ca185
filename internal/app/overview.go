package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Entinus-oss/howmuchtime/internal/adapters/steam"
	"github.com/Entinus-oss/howmuchtime/internal/domain/identity"
	"github.com/Entinus-oss/howmuchtime/pkg/logger"
)

// Overview is the profile landing view: summary, library totals, and
// community level. TotalPlaytime and playtimes are in minutes.
type Overview struct {
	SteamID       string       `json:"steamId"`
	PersonaName   string       `json:"personaName"`
	Avatar        string       `json:"avatar"`
	AvatarFull    string       `json:"avatarFull"`
	ProfileURL    string       `json:"profileUrl"`
	PersonaState  int          `json:"personaState"`
	CountryCode   string       `json:"countryCode,omitempty"`
	RealName      string       `json:"realName,omitempty"`
	TimeCreated   int64        `json:"timeCreated,omitempty"`
	Public        bool         `json:"public"`
	SteamLevel    int          `json:"steamLevel"`
	TotalPlaytime int          `json:"totalPlaytime"`
	TotalGames    int          `json:"totalGames"`
	PlayedGames   int          `json:"playedGames"`
	Games         []steam.Game `json:"games"`
}

// Overview builds the profile view for one account. The summary, library,
// and level are fetched concurrently; a missing summary is ErrNotFound,
// while library and level failures degrade to zero values since private
// profiles legitimately hide them.
func (s *Service) Overview(ctx context.Context, id identity.SteamID) (Overview, error) {
	var (
		wg       sync.WaitGroup
		players  []steam.PlayerSummary
		owned    steam.OwnedGames
		level    int
		sumErr   error
		gamesErr error
		levelErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		players, sumErr = s.steam.PlayerSummaries(ctx, []string{id.String()})
	}()
	go func() {
		defer wg.Done()
		owned, gamesErr = s.steam.OwnedGames(ctx, id.String())
	}()
	go func() {
		defer wg.Done()
		level, levelErr = s.steam.SteamLevel(ctx, id.String())
	}()
	wg.Wait()

	if sumErr != nil {
		return Overview{}, sumErr
	}
	if len(players) == 0 {
		return Overview{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if gamesErr != nil {
		s.logger.Warn(ctx, "library unavailable, rendering profile without games",
			logger.String("steamId", id.String()),
			logger.Error(gamesErr),
		)
		owned = steam.OwnedGames{}
	}
	if levelErr != nil {
		level = 0
	}

	played := make([]steam.Game, 0, len(owned.Games))
	for _, g := range owned.Games {
		if g.PlaytimeForever > 0 {
			played = append(played, g)
		}
	}
	sort.SliceStable(played, func(i, j int) bool {
		return played[i].PlaytimeForever > played[j].PlaytimeForever
	})

	p := players[0]
	return Overview{
		SteamID:       p.SteamID,
		PersonaName:   p.PersonaName,
		Avatar:        p.AvatarMedium,
		AvatarFull:    p.AvatarFull,
		ProfileURL:    p.ProfileURL,
		PersonaState:  p.PersonaState,
		CountryCode:   p.CountryCode,
		RealName:      p.RealName,
		TimeCreated:   p.TimeCreated,
		Public:        p.Public(),
		SteamLevel:    level,
		TotalPlaytime: owned.TotalPlaytime(),
		TotalGames:    owned.GameCount,
		PlayedGames:   len(played),
		Games:         played,
	}, nil
}
