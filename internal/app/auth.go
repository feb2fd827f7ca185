package app

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"github.com/Entinus-oss/howmuchtime/internal/domain/identity"
	"github.com/Entinus-oss/howmuchtime/pkg/logger"
)

// claimedIDPattern extracts the SteamID from an OpenID claimed identity.
var claimedIDPattern = regexp.MustCompile(`^https://steamcommunity\.com/openid/id/(\d+)$`)

// VerifyLogin validates an OpenID return assertion and extracts the
// authenticated SteamID. The assertion is replayed to the provider in
// check_authentication mode; anything short of a positive answer with a
// well-formed claimed id is ErrLoginInvalid.
func (s *Service) VerifyLogin(ctx context.Context, params url.Values) (identity.SteamID, error) {
	valid, err := s.steam.VerifyOpenID(ctx, params)
	if err != nil {
		return "", err
	}
	if !valid {
		return "", fmt.Errorf("%w: provider rejected assertion", ErrLoginInvalid)
	}

	claimed := params.Get("openid.claimed_id")
	m := claimedIDPattern.FindStringSubmatch(claimed)
	if m == nil {
		return "", fmt.Errorf("%w: unexpected claimed id", ErrLoginInvalid)
	}
	id := identity.SteamID(m[1])
	if !id.Valid() {
		return "", fmt.Errorf("%w: claimed id is not a steam account", ErrLoginInvalid)
	}

	s.logger.Info(ctx, "login verified", logger.String("steamId", id.String()))
	return id, nil
}
