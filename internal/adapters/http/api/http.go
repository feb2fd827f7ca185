// Package api declares the HTTP surface of the dashboard: route
// registration, request decoding, and the mapping from service errors to
// status codes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/Entinus-oss/howmuchtime/internal/adapters/session"
	"github.com/Entinus-oss/howmuchtime/internal/adapters/steam"
	"github.com/Entinus-oss/howmuchtime/internal/app"
	"github.com/Entinus-oss/howmuchtime/internal/domain/identity"
	"github.com/Entinus-oss/howmuchtime/internal/domain/ranking"
	"github.com/Entinus-oss/howmuchtime/pkg/logger"
)

// Dependencies bundles the service operations the handlers need. An
// interface keeps the handler layer decoupled from the app package's
// concrete Service.
type Dependencies interface {
	// ResolveAccount turns any identifier into a canonical SteamID.
	ResolveAccount(ctx context.Context, raw string) (identity.SteamID, error)

	// Overview builds the profile landing view.
	Overview(ctx context.Context, id identity.SteamID) (app.Overview, error)

	// RankFriends builds the friend playtime leaderboard.
	RankFriends(ctx context.Context, subject identity.SteamID) (ranking.Result, error)

	// FetchAchievements builds the achievement report for the requested
	// titles, or the most played ones when none are named.
	FetchAchievements(ctx context.Context, id identity.SteamID, appIDs []int) (app.AchievementsReport, error)

	// GameDetails enriches the most played titles with store metadata.
	GameDetails(ctx context.Context, id identity.SteamID) ([]app.GameDetail, error)

	// Friends lists an account's friends, online first.
	Friends(ctx context.Context, id identity.SteamID) ([]app.FriendEntry, error)

	// VerifyLogin validates an OpenID return assertion.
	VerifyLogin(ctx context.Context, params url.Values) (identity.SteamID, error)
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	deps     Dependencies
	sessions session.Store

	cookieName string
	// sessionTTL bounds the session cookie; it should match the store TTL
	// so the cookie does not outlive the session behind it.
	sessionTTL time.Duration
	// publicBaseURL is the externally visible origin used to build OpenID
	// return URLs. Empty means derive it from the request.
	publicBaseURL string

	log logger.Logger
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) ServerOption {
	return func(s *Server) {
		if name != "" {
			s.cookieName = name
		}
	}
}

// WithSessionTTL aligns the cookie lifetime with the session store TTL.
func WithSessionTTL(ttl time.Duration) ServerOption {
	return func(s *Server) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithPublicBaseURL pins the origin used in OpenID return URLs.
func WithPublicBaseURL(base string) ServerOption {
	return func(s *Server) {
		s.publicBaseURL = base
	}
}

// WithServerLogger sets the handler logger.
func WithServerLogger(log logger.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// NewServer creates the API server.
func NewServer(deps Dependencies, sessions session.Store, opts ...ServerOption) *Server {
	s := &Server{
		deps:       deps,
		sessions:   sessions,
		cookieName: "hmt_session",
		sessionTTL: 24 * time.Hour,
		log:        logger.Get().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// suggestionsResponse is the 404 payload when a failed lookup produced
// alternatives.
type suggestionsResponse struct {
	Code        string                  `json:"code"`
	Message     string                  `json:"message"`
	Query       string                  `json:"query"`
	Suggestions []app.ProfileSuggestion `json:"suggestions"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and upstream errors onto status codes.
// Suggestions ride on the not-found response so clients can render them
// without a second round trip.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var sugg *app.SuggestionsError
	switch {
	case errors.As(err, &sugg):
		writeJSON(w, http.StatusNotFound, suggestionsResponse{
			Code:        "suggestions",
			Message:     sugg.Error(),
			Query:       sugg.Query,
			Suggestions: sugg.Suggestions,
		})
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, app.ErrLoginInvalid):
		writeError(w, http.StatusUnauthorized, "login_invalid", err)
	case errors.Is(err, session.ErrNoSession):
		writeError(w, http.StatusUnauthorized, "no_session", err)
	case errors.Is(err, steam.ErrUpstream):
		s.log.Error(r.Context(), "upstream failure", logger.Error(err))
		writeError(w, http.StatusBadGateway, "upstream_error", err)
	default:
		s.log.Error(r.Context(), "unhandled error", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// resolveSubject resolves the {account} path parameter, writing the
// error response itself on failure.
func (s *Server) resolveSubject(w http.ResponseWriter, r *http.Request, raw string) (identity.SteamID, bool) {
	if raw == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing account identifier"))
		return "", false
	}
	id, err := s.deps.ResolveAccount(r.Context(), raw)
	if err != nil {
		s.writeServiceError(w, r, err)
		return "", false
	}
	return id, true
}
