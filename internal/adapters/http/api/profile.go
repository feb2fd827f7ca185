package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleResolve serves GET /api/resolve?q=<identifier>. It answers with
// the canonical id only; clients follow up with the profile routes.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolveSubject(w, r, r.URL.Query().Get("q"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"steamId": id.String()})
}

// handleOverview serves GET /api/profile/{account}.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolveSubject(w, r, chi.URLParam(r, "account"))
	if !ok {
		return
	}
	view, err := s.deps.Overview(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.recordVisit(r, view)
	writeJSON(w, http.StatusOK, view)
}

// handleFriends serves GET /api/profile/{account}/friends.
func (s *Server) handleFriends(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolveSubject(w, r, chi.URLParam(r, "account"))
	if !ok {
		return
	}
	list, err := s.deps.Friends(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"friends": list,
		"count":   len(list),
	})
}

// handleRankings serves GET /api/profile/{account}/rankings.
func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolveSubject(w, r, chi.URLParam(r, "account"))
	if !ok {
		return
	}
	res, err := s.deps.RankFriends(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAchievements serves GET /api/profile/{account}/achievements.
// An optional comma-separated gameIds query names the titles to examine;
// without it the account's most played titles are used.
func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolveSubject(w, r, chi.URLParam(r, "account"))
	if !ok {
		return
	}
	appIDs, err := parseGameIDs(r.URL.Query().Get("gameIds"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	report, err := s.deps.FetchAchievements(r.Context(), id, appIDs)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// parseGameIDs splits a comma-separated id list. Empty input is fine;
// a non-numeric entry is not.
func parseGameIDs(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return nil, errors.New("gameIds must be positive integers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// handleGameDetails serves GET /api/profile/{account}/games.
func (s *Server) handleGameDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolveSubject(w, r, chi.URLParam(r, "account"))
	if !ok {
		return
	}
	details, err := s.deps.GameDetails(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"games": details,
		"count": len(details),
	})
}
