package api

import (
	"net/http"
	"net/url"

	"github.com/Entinus-oss/howmuchtime/internal/adapters/session"
	"github.com/Entinus-oss/howmuchtime/pkg/logger"
)

const (
	openIDEndpoint = "https://steamcommunity.com/openid/login"
	openIDNS       = "http://specs.openid.net/auth/2.0"
	openIDSelect   = "http://specs.openid.net/auth/2.0/identifier_select"
)

// handleLogin serves GET /api/auth/login by redirecting the browser to
// the Steam OpenID provider.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	base := s.baseURL(r)
	params := url.Values{
		"openid.ns":         {openIDNS},
		"openid.mode":       {"checkid_setup"},
		"openid.return_to":  {base + "/api/auth/callback"},
		"openid.realm":      {base},
		"openid.identity":   {openIDSelect},
		"openid.claimed_id": {openIDSelect},
	}
	http.Redirect(w, r, openIDEndpoint+"?"+params.Encode(), http.StatusFound)
}

// handleCallback serves GET /api/auth/callback: it verifies the provider
// assertion, mints a session, and sends the browser back to the app root
// with the session cookie set.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("openid.mode") == "cancel" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	id, err := s.deps.VerifyLogin(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	token, err := s.sessions.CreateSession(r.Context(), id.String())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	// The cookie expires with the server-side session.
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Info(r.Context(), "login completed",
		logger.String("steamId", id.String()),
		logger.Duration("sessionTtl", s.sessionTTL),
	)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout serves POST /api/auth/logout.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.cookieName); err == nil {
		if err := s.sessions.DeleteSession(r.Context(), cookie.Value); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// handleMe serves GET /api/auth/me, reporting the logged-in account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess, err := s.currentSession(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"steamId":   sess.SteamID,
		"createdAt": sess.CreatedAt,
	})
}

// currentSession resolves the session behind the request cookie.
func (s *Server) currentSession(r *http.Request) (session.Session, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return session.Session{}, session.ErrNoSession
	}
	return s.sessions.GetSession(r.Context(), cookie.Value)
}

// baseURL determines the externally visible origin, preferring the
// configured one over request-derived headers.
func (s *Server) baseURL(r *http.Request) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL
	}
	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host
}
