package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Entinus-oss/howmuchtime/pkg/logger"
	"github.com/Entinus-oss/howmuchtime/pkg/metrics"
)

const (
	defaultAPIBase       = "https://api.steampowered.com"
	defaultStoreBase     = "https://store.steampowered.com"
	defaultCommunityBase = "https://steamcommunity.com"

	// MaxSummaryBatch is the upstream ceiling on ids per
	// GetPlayerSummaries call.
	MaxSummaryBatch = 100

	vanitySuccess = 1

	// noStatsBody is the error the stats endpoint returns, as a 400, for
	// titles that track no stats at all.
	noStatsBody = "Requested app has no stats"
)

// Client is the read surface of the Steam Web API used by the service
// layer. Every call is ctx-bound; failures are reported as wrapped
// sentinel errors from this package.
type Client interface {
	// ResolveVanity maps a vanity name to a canonical SteamID. Returns
	// ErrVanityNotFound when the name does not resolve.
	ResolveVanity(ctx context.Context, vanity string) (string, error)

	// PlayerSummaries fetches profile summaries for up to MaxSummaryBatch
	// ids in one call.
	PlayerSummaries(ctx context.Context, steamIDs []string) ([]PlayerSummary, error)

	// FriendList fetches the friend edges of a profile. Private friend
	// lists surface as ErrUpstream.
	FriendList(ctx context.Context, steamID string) ([]Friend, error)

	// OwnedGames fetches the library with app info included.
	OwnedGames(ctx context.Context, steamID string) (OwnedGames, error)

	// SteamLevel fetches the community level of a profile.
	SteamLevel(ctx context.Context, steamID string) (int, error)

	// PlayerAchievements fetches per-title unlock state. Returns
	// ErrStatsPrivate when the title or profile hides game details and
	// ErrNoStats when the title tracks no stats at all.
	PlayerAchievements(ctx context.Context, steamID string, appID int) (PlayerStats, error)

	// GameSchema fetches the achievement catalogue for a title.
	GameSchema(ctx context.Context, appID int) (GameSchema, error)

	// AppDetails fetches storefront metadata for a title.
	AppDetails(ctx context.Context, appID int) (AppDetails, error)

	// VerifyOpenID replays an OpenID assertion against the community
	// endpoint in check_authentication mode and reports validity.
	VerifyOpenID(ctx context.Context, params url.Values) (bool, error)
}

type httpClient struct {
	apiKey        string
	apiBase       string
	storeBase     string
	communityBase string
	hc            *http.Client
	log           logger.Logger
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithAPIBase overrides the Web API base URL.
func WithAPIBase(base string) Option {
	return func(c *httpClient) {
		if base != "" {
			c.apiBase = strings.TrimRight(base, "/")
		}
	}
}

// WithStoreBase overrides the storefront base URL.
func WithStoreBase(base string) Option {
	return func(c *httpClient) {
		if base != "" {
			c.storeBase = strings.TrimRight(base, "/")
		}
	}
}

// WithCommunityBase overrides the community base URL used for OpenID
// verification.
func WithCommunityBase(base string) Option {
	return func(c *httpClient) {
		if base != "" {
			c.communityBase = strings.TrimRight(base, "/")
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(log logger.Logger) Option {
	return func(c *httpClient) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Steam Web API client.
func New(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:        apiKey,
		apiBase:       defaultAPIBase,
		storeBase:     defaultStoreBase,
		communityBase: defaultCommunityBase,
		hc:            &http.Client{Timeout: 10 * time.Second},
		log:           logger.Get().Named("steam"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) ResolveVanity(ctx context.Context, vanity string) (string, error) {
	q := url.Values{"vanityurl": {vanity}}
	var env vanityEnvelope
	if err := c.getAPI(ctx, "resolve_vanity", "/ISteamUser/ResolveVanityURL/v1/", q, &env); err != nil {
		return "", err
	}
	if env.Response.Success != vanitySuccess {
		return "", fmt.Errorf("%w: %s", ErrVanityNotFound, vanity)
	}
	return env.Response.SteamID, nil
}

func (c *httpClient) PlayerSummaries(ctx context.Context, steamIDs []string) ([]PlayerSummary, error) {
	if len(steamIDs) == 0 {
		return nil, nil
	}
	if len(steamIDs) > MaxSummaryBatch {
		return nil, fmt.Errorf("%w: %d ids", ErrBatchTooLarge, len(steamIDs))
	}
	q := url.Values{"steamids": {strings.Join(steamIDs, ",")}}
	var env summariesEnvelope
	if err := c.getAPI(ctx, "player_summaries", "/ISteamUser/GetPlayerSummaries/v2/", q, &env); err != nil {
		return nil, err
	}
	return env.Response.Players, nil
}

func (c *httpClient) FriendList(ctx context.Context, steamID string) ([]Friend, error) {
	q := url.Values{"steamid": {steamID}, "relationship": {"friend"}}
	var env friendsEnvelope
	if err := c.getAPI(ctx, "friend_list", "/ISteamUser/GetFriendList/v1/", q, &env); err != nil {
		return nil, err
	}
	return env.FriendsList.Friends, nil
}

func (c *httpClient) OwnedGames(ctx context.Context, steamID string) (OwnedGames, error) {
	q := url.Values{
		"steamid":                   {steamID},
		"include_appinfo":           {"true"},
		"include_played_free_games": {"true"},
	}
	var env ownedGamesEnvelope
	if err := c.getAPI(ctx, "owned_games", "/IPlayerService/GetOwnedGames/v1/", q, &env); err != nil {
		return OwnedGames{}, err
	}
	return env.Response, nil
}

func (c *httpClient) SteamLevel(ctx context.Context, steamID string) (int, error) {
	q := url.Values{"steamid": {steamID}}
	var env steamLevelEnvelope
	if err := c.getAPI(ctx, "steam_level", "/IPlayerService/GetSteamLevel/v1/", q, &env); err != nil {
		return 0, err
	}
	return env.Response.PlayerLevel, nil
}

func (c *httpClient) PlayerAchievements(ctx context.Context, steamID string, appID int) (PlayerStats, error) {
	q := url.Values{"steamid": {steamID}, "appid": {strconv.Itoa(appID)}}
	endpoint := "player_achievements"
	u := c.apiURL("/ISteamUserStats/GetPlayerAchievements/v1/", q)

	body, status, err := c.do(ctx, endpoint, u)
	if err != nil {
		return PlayerStats{}, err
	}

	// The stats endpoint reports refusals through the body rather than the
	// status alone: "no stats" titles answer 400 and privacy shows up as
	// 403 or a success=false body on 200, so the error field is classified
	// before the status.
	var env playerStatsEnvelope
	decodeErr := json.Unmarshal(body, &env)
	if decodeErr == nil && !env.PlayerStats.Success && env.PlayerStats.Error != "" {
		if env.PlayerStats.Error == noStatsBody {
			metrics.RecordUpstreamRequest(endpoint, "no_stats")
			return PlayerStats{}, fmt.Errorf("%w: appid %d", ErrNoStats, appID)
		}
		metrics.RecordUpstreamRequest(endpoint, "private")
		return PlayerStats{}, fmt.Errorf("%w: %s", ErrStatsPrivate, env.PlayerStats.Error)
	}
	if status == http.StatusForbidden {
		metrics.RecordUpstreamRequest(endpoint, "private")
		return PlayerStats{}, fmt.Errorf("%w: appid %d", ErrStatsPrivate, appID)
	}
	if status < 200 || status > 299 {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return PlayerStats{}, fmt.Errorf("%w: %s returned %d", ErrUpstream, endpoint, status)
	}
	if decodeErr != nil {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return PlayerStats{}, fmt.Errorf("%w: decode %s: %w", ErrUpstream, endpoint, decodeErr)
	}
	metrics.RecordUpstreamRequest(endpoint, "success")
	return PlayerStats{
		GameName:     env.PlayerStats.GameName,
		Achievements: env.PlayerStats.Achievements,
	}, nil
}

func (c *httpClient) GameSchema(ctx context.Context, appID int) (GameSchema, error) {
	q := url.Values{"appid": {strconv.Itoa(appID)}}
	var env schemaEnvelope
	if err := c.getAPI(ctx, "game_schema", "/ISteamUserStats/GetSchemaForGame/v2/", q, &env); err != nil {
		return GameSchema{}, err
	}
	return GameSchema{
		GameName:     env.Game.GameName,
		Achievements: env.Game.AvailableGameStats.Achievements,
	}, nil
}

func (c *httpClient) AppDetails(ctx context.Context, appID int) (AppDetails, error) {
	endpoint := "app_details"
	u := fmt.Sprintf("%s/api/appdetails?appids=%d", c.storeBase, appID)

	body, status, err := c.do(ctx, endpoint, u)
	if err != nil {
		return AppDetails{}, err
	}
	if status < 200 || status > 299 {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return AppDetails{}, fmt.Errorf("%w: %s returned %d", ErrUpstream, endpoint, status)
	}

	// The storefront keys its response by app id.
	var envs map[string]appDetailsEnvelope
	if err := json.Unmarshal(body, &envs); err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return AppDetails{}, fmt.Errorf("%w: decode %s: %w", ErrUpstream, endpoint, err)
	}
	env, ok := envs[strconv.Itoa(appID)]
	if !ok || !env.Success {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return AppDetails{}, fmt.Errorf("%w: no store data for appid %d", ErrUpstream, appID)
	}
	metrics.RecordUpstreamRequest(endpoint, "success")
	details := env.Data
	details.AppID = appID
	return details, nil
}

func (c *httpClient) VerifyOpenID(ctx context.Context, params url.Values) (bool, error) {
	endpoint := "openid_verify"
	verify := url.Values{}
	for k, vs := range params {
		verify[k] = vs
	}
	verify.Set("openid.mode", "check_authentication")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.communityBase+"/openid/login", strings.NewReader(verify.Encode()))
	if err != nil {
		return false, fmt.Errorf("%w: build %s request: %w", ErrUpstream, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.hc.Do(req)
	metrics.RecordUpstreamLatency(endpoint, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return false, fmt.Errorf("%w: %s: %w", ErrUpstream, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return false, fmt.Errorf("%w: read %s response: %w", ErrUpstream, endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return false, fmt.Errorf("%w: %s returned %d", ErrUpstream, endpoint, resp.StatusCode)
	}
	metrics.RecordUpstreamRequest(endpoint, "success")
	return strings.Contains(string(body), "is_valid:true"), nil
}

// apiURL builds a Web API URL with the key and JSON format applied.
func (c *httpClient) apiURL(path string, q url.Values) string {
	q.Set("key", c.apiKey)
	q.Set("format", "json")
	return c.apiBase + path + "?" + q.Encode()
}

// getAPI performs a Web API GET and decodes the envelope, recording
// upstream metrics under the given endpoint label.
func (c *httpClient) getAPI(ctx context.Context, endpoint, path string, q url.Values, out any) error {
	body, status, err := c.do(ctx, endpoint, c.apiURL(path, q))
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return fmt.Errorf("%w: %s returned %d", ErrUpstream, endpoint, status)
	}
	if err := json.Unmarshal(body, out); err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return fmt.Errorf("%w: decode %s: %w", ErrUpstream, endpoint, err)
	}
	metrics.RecordUpstreamRequest(endpoint, "success")
	return nil
}

// do executes a GET and returns the body and status. Transport failures
// are wrapped in ErrUpstream; status handling is left to the caller.
func (c *httpClient) do(ctx context.Context, endpoint, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build %s request: %w", ErrUpstream, endpoint, err)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	metrics.RecordUpstreamLatency(endpoint, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrUpstream, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return nil, 0, fmt.Errorf("%w: read %s response: %w", ErrUpstream, endpoint, err)
	}
	c.log.Debug(ctx, "upstream call",
		logger.String("endpoint", endpoint),
		logger.Int("status", resp.StatusCode),
	)
	return body, resp.StatusCode, nil
}
