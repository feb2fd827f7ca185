// Package session persists login sessions and the per-session list of
// recently viewed accounts. Sessions are opaque uuid tokens handed to the
// browser as a cookie; all state lives server-side.
package session

import (
	"context"
	"errors"
	"time"
)

const (
	// MaxManual caps accounts pinned explicitly by the user.
	MaxManual = 2

	// MaxVisited caps accounts recorded from profile visits.
	MaxVisited = 5
)

// ErrNoSession is returned when a token does not map to a live session.
var ErrNoSession = errors.New("session not found")

// Session is the server-side state behind one login cookie.
type Session struct {
	SteamID   string    `json:"steamId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Account is one entry in the recently viewed list.
type Account struct {
	SteamID       string `json:"steamId"`
	PersonaName   string `json:"personaName"`
	Avatar        string `json:"avatar"`
	TotalPlaytime int    `json:"totalPlaytime"`
	LastAccessed  int64  `json:"lastAccessed"`
}

// Recents holds the two recently viewed buckets for one session.
type Recents struct {
	ManualAccounts  []Account `json:"manualAccounts"`
	VisitedAccounts []Account `json:"visitedAccounts"`
}

// Store is the session persistence surface. Implementations must bound
// the recents buckets to MaxManual and MaxVisited and keep both sorted
// most recently accessed first.
type Store interface {
	// CreateSession mints a session for the given account and returns
	// the opaque token.
	CreateSession(ctx context.Context, steamID string) (string, error)

	// GetSession resolves a token. Returns ErrNoSession for unknown or
	// expired tokens.
	GetSession(ctx context.Context, token string) (Session, error)

	// DeleteSession removes a session. Unknown tokens are not an error.
	DeleteSession(ctx context.Context, token string) error

	// Recents returns the recently viewed buckets for a session.
	Recents(ctx context.Context, token string) (Recents, error)

	// TouchAccount records an account view. Manual entries are pinned
	// and evict the same account from the visited bucket.
	TouchAccount(ctx context.Context, token string, acc Account, manual bool) error
}

// touch applies the recents update rules in memory. Shared by both
// store implementations so the bucket semantics cannot drift.
func touch(r Recents, acc Account, manual bool) Recents {
	acc.LastAccessed = time.Now().UnixMilli()

	if manual {
		r.ManualAccounts = upsert(r.ManualAccounts, acc, MaxManual)
		r.VisitedAccounts = remove(r.VisitedAccounts, acc.SteamID)
		return r
	}
	// A pinned account never duplicates into the visited bucket.
	for _, m := range r.ManualAccounts {
		if m.SteamID == acc.SteamID {
			r.ManualAccounts = upsert(r.ManualAccounts, acc, MaxManual)
			return r
		}
	}
	r.VisitedAccounts = upsert(r.VisitedAccounts, acc, MaxVisited)
	return r
}

// upsert moves the touched account to the front so the list stays most
// recently accessed first even when two touches land on the same
// millisecond.
func upsert(list []Account, acc Account, max int) []Account {
	out := make([]Account, 0, len(list)+1)
	out = append(out, acc)
	out = append(out, remove(list, acc.SteamID)...)
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func remove(list []Account, steamID string) []Account {
	out := make([]Account, 0, len(list))
	for _, a := range list {
		if a.SteamID != steamID {
			out = append(out, a)
		}
	}
	return out
}
