package app

import (
	"context"
	"fmt"

	"github.com/Entinus-oss/howmuchtime/internal/domain/identity"
	"github.com/Entinus-oss/howmuchtime/pkg/logger"
)

// GameDetail is one library title enriched with storefront metadata.
type GameDetail struct {
	AppID           int      `json:"appId"`
	Name            string   `json:"name"`
	Playtime        int      `json:"playtime"`
	IconURL         string   `json:"iconUrl,omitempty"`
	HeaderImage     string   `json:"headerImage,omitempty"`
	ShortDesc       string   `json:"shortDescription,omitempty"`
	IsFree          bool     `json:"isFree"`
	PriceFormatted  string   `json:"priceFormatted,omitempty"`
	DiscountPercent int      `json:"discountPercent,omitempty"`
	MetacriticScore int      `json:"metacriticScore,omitempty"`
	Developers      []string `json:"developers,omitempty"`
	Genres          []string `json:"genres,omitempty"`
	ReleaseDate     string   `json:"releaseDate,omitempty"`
	Windows         bool     `json:"windows"`
	Mac             bool     `json:"mac"`
	Linux           bool     `json:"linux"`
}

// GameDetails enriches an account's most played titles with storefront
// metadata. Detail fetches are paced; a title whose store lookup fails
// still appears with library data only.
func (s *Service) GameDetails(ctx context.Context, id identity.SteamID) ([]GameDetail, error) {
	players, err := s.steam.PlayerSummaries(ctx, []string{id.String()})
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	owned, err := s.steam.OwnedGames(ctx, id.String())
	if err != nil {
		return nil, err
	}
	titles := topPlayed(owned.Games, s.detailCap)

	out := make([]GameDetail, 0, len(titles))
	for _, g := range titles {
		detail := GameDetail{
			AppID:    g.AppID,
			Name:     g.Name,
			Playtime: g.PlaytimeForever,
			IconURL:  g.ImgIconURL,
		}

		if err := s.detailPace.Wait(ctx); err != nil {
			return nil, err
		}
		store, err := s.steam.AppDetails(ctx, g.AppID)
		if err != nil {
			s.logger.Debug(ctx, "store details unavailable, keeping library data",
				logger.Int("appId", g.AppID),
				logger.Error(err),
			)
			out = append(out, detail)
			continue
		}

		if store.Name != "" {
			detail.Name = store.Name
		}
		detail.HeaderImage = store.HeaderImage
		detail.ShortDesc = store.ShortDesc
		detail.IsFree = store.IsFree
		detail.Developers = store.Developers
		detail.ReleaseDate = store.ReleaseDate.Date
		detail.Windows = store.Platforms.Windows
		detail.Mac = store.Platforms.Mac
		detail.Linux = store.Platforms.Linux
		if store.Price != nil {
			detail.PriceFormatted = store.Price.FinalFormatted
			detail.DiscountPercent = store.Price.DiscountPercent
		}
		if store.Metacritic != nil {
			detail.MetacriticScore = store.Metacritic.Score
		}
		for _, genre := range store.Genres {
			detail.Genres = append(detail.Genres, genre.Description)
		}
		out = append(out, detail)
	}
	return out, nil
}
