package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Entinus-oss/howmuchtime/internal/adapters/steam"
	"github.com/Entinus-oss/howmuchtime/internal/domain/identity"
	"github.com/Entinus-oss/howmuchtime/pkg/logger"
)

// Achievement is one unlockable with its catalogue metadata merged in.
type Achievement struct {
	APIName     string `json:"apiName"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	IconGray    string `json:"iconGray,omitempty"`
	Hidden      bool   `json:"hidden"`
	Achieved    bool   `json:"achieved"`
	UnlockTime  int64  `json:"unlockTime,omitempty"`
}

// GameAchievements is the unlock state for one title. Private titles
// carry the catalogue with every entry locked.
type GameAchievements struct {
	AppID        int           `json:"appId"`
	GameName     string        `json:"gameName"`
	IconURL      string        `json:"iconUrl,omitempty"`
	Playtime     int           `json:"playtime"`
	Total        int           `json:"total"`
	Unlocked     int           `json:"unlocked"`
	Completion   float64       `json:"completion"`
	Private      bool          `json:"private"`
	Achievements []Achievement `json:"achievements"`
}

// AchievementsReport aggregates unlock state over the examined titles.
type AchievementsReport struct {
	SteamID        string             `json:"steamId"`
	ProfilePrivate bool               `json:"profilePrivate"`
	GamesPrivate   bool               `json:"gamesPrivate"`
	ExaminedGames  int                `json:"examinedGames"`
	TotalUnlocked  int                `json:"totalUnlocked"`
	Games          []GameAchievements `json:"games"`
}

// FetchAchievements builds the achievement report for the requested
// titles, capped and with a paced fetch per title. An empty request
// falls back to the account's most played titles. A non-public profile
// yields schema-only summaries per title; otherwise titles that refuse
// stats fall back to their public catalogue and are marked private, and
// a high enough share of private titles flags the whole report.
func (s *Service) FetchAchievements(ctx context.Context, id identity.SteamID, appIDs []int) (AchievementsReport, error) {
	players, err := s.steam.PlayerSummaries(ctx, []string{id.String()})
	if err != nil {
		return AchievementsReport{}, err
	}
	if len(players) == 0 {
		return AchievementsReport{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	report := AchievementsReport{SteamID: id.String(), Games: []GameAchievements{}}

	titles, err := s.requestedTitles(ctx, id, appIDs)
	if err != nil {
		return AchievementsReport{}, err
	}

	if !players[0].Public() {
		report.ProfilePrivate = true
		report.ExaminedGames = len(titles)
		for _, g := range titles {
			if err := s.probePace.Wait(ctx); err != nil {
				return AchievementsReport{}, err
			}
			entry, ok := s.schemaOnly(ctx, g)
			if !ok {
				continue
			}
			report.Games = append(report.Games, entry)
		}
		return report, nil
	}

	private := 0
	for _, g := range titles {
		if err := s.probePace.Wait(ctx); err != nil {
			return AchievementsReport{}, err
		}

		entry, isPrivate, err := s.titleAchievements(ctx, id.String(), g)
		if err != nil {
			s.logger.Debug(ctx, "skipping title with unreadable achievements",
				logger.Int("appId", g.AppID),
				logger.Error(err),
			)
			continue
		}
		if isPrivate {
			private++
		}
		report.TotalUnlocked += entry.Unlocked
		report.Games = append(report.Games, entry)
	}

	report.ExaminedGames = len(titles)
	report.GamesPrivate = private > 0 &&
		float64(private) >= float64(len(titles))*s.privateShare
	return report, nil
}

// requestedTitles maps the requested app ids onto library entries,
// enriched with name and playtime when the library is readable. Without
// an explicit request the most played titles are examined instead.
func (s *Service) requestedTitles(ctx context.Context, id identity.SteamID, appIDs []int) ([]steam.Game, error) {
	if len(appIDs) == 0 {
		owned, err := s.steam.OwnedGames(ctx, id.String())
		if err != nil {
			return nil, err
		}
		return topPlayed(owned.Games, s.achievementCap), nil
	}

	if len(appIDs) > s.achievementCap {
		appIDs = appIDs[:s.achievementCap]
	}
	byApp := make(map[int]steam.Game)
	owned, err := s.steam.OwnedGames(ctx, id.String())
	if err != nil {
		s.logger.Debug(ctx, "library unreadable, reporting requested titles bare",
			logger.String("steamId", id.String()),
			logger.Error(err),
		)
	} else {
		for _, g := range owned.Games {
			byApp[g.AppID] = g
		}
	}

	titles := make([]steam.Game, 0, len(appIDs))
	for _, appID := range appIDs {
		if g, ok := byApp[appID]; ok {
			titles = append(titles, g)
			continue
		}
		titles = append(titles, steam.Game{AppID: appID})
	}
	return titles, nil
}

// schemaOnly builds a catalogue-count summary for a title whose player
// stats cannot be asked for. Titles without a readable schema are
// dropped.
func (s *Service) schemaOnly(ctx context.Context, g steam.Game) (GameAchievements, bool) {
	entry := GameAchievements{
		AppID:        g.AppID,
		GameName:     g.Name,
		IconURL:      g.ImgIconURL,
		Playtime:     g.PlaytimeForever,
		Achievements: []Achievement{},
	}
	schema, err := s.steam.GameSchema(ctx, g.AppID)
	if err != nil {
		s.logger.Debug(ctx, "skipping title with unreadable schema",
			logger.Int("appId", g.AppID),
			logger.Error(err),
		)
		return GameAchievements{}, false
	}
	if schema.GameName != "" {
		entry.GameName = schema.GameName
	}
	entry.Total = len(schema.Achievements)
	entry.Private = entry.Total > 0
	return entry, true
}

// titleAchievements resolves one title's unlock state. When the stats
// endpoint refuses the title the catalogue alone is returned, marked
// private only when it actually holds achievements; a title without
// stats keeps zero totals and is never marked private.
func (s *Service) titleAchievements(ctx context.Context, steamID string, g steam.Game) (GameAchievements, bool, error) {
	entry := GameAchievements{
		AppID:        g.AppID,
		GameName:     g.Name,
		IconURL:      g.ImgIconURL,
		Playtime:     g.PlaytimeForever,
		Achievements: []Achievement{},
	}

	schema, err := s.steam.GameSchema(ctx, g.AppID)
	if err != nil {
		return GameAchievements{}, false, err
	}
	if entry.GameName == "" && schema.GameName != "" {
		entry.GameName = schema.GameName
	}
	byKey := make(map[string]steam.SchemaAchievement, len(schema.Achievements))
	for _, a := range schema.Achievements {
		byKey[a.Name] = a
	}

	stats, err := s.steam.PlayerAchievements(ctx, steamID, g.AppID)
	switch {
	case errors.Is(err, steam.ErrStatsPrivate):
		entry.Private = len(schema.Achievements) > 0
		for _, a := range schema.Achievements {
			entry.Achievements = append(entry.Achievements, fromSchema(a))
		}
		entry.Total = len(entry.Achievements)
		return entry, entry.Private, nil
	case errors.Is(err, steam.ErrNoStats):
		return entry, false, nil
	case err != nil:
		return GameAchievements{}, false, err
	}
	if stats.GameName != "" {
		entry.GameName = stats.GameName
	}

	for _, a := range stats.Achievements {
		merged := Achievement{
			APIName:     a.APIName,
			DisplayName: a.APIName,
			Achieved:    a.Achieved == 1,
			UnlockTime:  a.UnlockTime,
		}
		if def, ok := byKey[a.APIName]; ok {
			merged.DisplayName = def.DisplayName
			merged.Description = def.Description
			merged.Icon = def.Icon
			merged.IconGray = def.IconGray
			merged.Hidden = def.Hidden == 1
		}
		if merged.Achieved {
			entry.Unlocked++
		}
		entry.Achievements = append(entry.Achievements, merged)
	}
	entry.Total = len(entry.Achievements)
	if entry.Total > 0 {
		entry.Completion = math.Round(float64(entry.Unlocked)/float64(entry.Total)*1000) / 10
	}
	return entry, false, nil
}

func fromSchema(a steam.SchemaAchievement) Achievement {
	return Achievement{
		APIName:     a.Name,
		DisplayName: a.DisplayName,
		Description: a.Description,
		Icon:        a.Icon,
		IconGray:    a.IconGray,
		Hidden:      a.Hidden == 1,
	}
}

// topPlayed returns the n most played titles, ignoring unplayed ones.
func topPlayed(games []steam.Game, n int) []steam.Game {
	played := make([]steam.Game, 0, len(games))
	for _, g := range games {
		if g.PlaytimeForever > 0 {
			played = append(played, g)
		}
	}
	sort.SliceStable(played, func(i, j int) bool {
		return played[i].PlaytimeForever > played[j].PlaytimeForever
	})
	if len(played) > n {
		played = played[:n]
	}
	return played
}
