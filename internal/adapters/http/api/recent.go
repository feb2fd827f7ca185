package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Entinus-oss/howmuchtime/internal/adapters/session"
	"github.com/Entinus-oss/howmuchtime/internal/app"
)

var errBadBody = errors.New("malformed request body")

// handleRecents serves GET /api/recent, the recently viewed buckets of
// the current session.
func (s *Server) handleRecents(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		s.writeServiceError(w, r, session.ErrNoSession)
		return
	}
	recents, err := s.sessions.Recents(r.Context(), cookie.Value)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recents)
}

// touchRequest is the body of POST /api/recent. Manual entries are the
// user pinning an account; non-manual ones arrive from profile visits.
type touchRequest struct {
	SteamID       string `json:"steamId"`
	PersonaName   string `json:"personaName"`
	Avatar        string `json:"avatar"`
	TotalPlaytime int    `json:"totalPlaytime"`
	Manual        bool   `json:"manual"`
}

func (t touchRequest) validate() error {
	if strings.TrimSpace(t.SteamID) == "" {
		return errors.New("missing steamId")
	}
	return nil
}

// handleTouchAccount serves POST /api/recent.
func (s *Server) handleTouchAccount(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		s.writeServiceError(w, r, session.ErrNoSession)
		return
	}

	var req touchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errBadBody)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	acc := session.Account{
		SteamID:       req.SteamID,
		PersonaName:   req.PersonaName,
		Avatar:        req.Avatar,
		TotalPlaytime: req.TotalPlaytime,
	}
	if err := s.sessions.TouchAccount(r.Context(), cookie.Value, acc, req.Manual); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// recordVisit notes a successfully rendered profile in the viewer's
// recents, when a session exists. Failures are ignored; browsing must
// not depend on the session store.
func (s *Server) recordVisit(r *http.Request, view app.Overview) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return
	}
	acc := session.Account{
		SteamID:       view.SteamID,
		PersonaName:   view.PersonaName,
		Avatar:        view.Avatar,
		TotalPlaytime: view.TotalPlaytime,
	}
	_ = s.sessions.TouchAccount(r.Context(), cookie.Value, acc, false)
}
