package app

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means an identifier resolved to no account at all,
	// with no suggestions to offer.
	ErrNotFound = errors.New("account not found")

	// ErrLoginInvalid means an OpenID assertion failed verification or
	// carried a malformed claimed id.
	ErrLoginInvalid = errors.New("login assertion invalid")
)

// ProfileSuggestion is one resolvable alternative offered when a vanity
// name does not match any account.
type ProfileSuggestion struct {
	SteamID     string `json:"steamId"`
	PersonaName string `json:"personaName"`
	Avatar      string `json:"avatar"`
	ProfileURL  string `json:"profileUrl"`
}

// SuggestionsError reports a failed resolution that produced alternative
// profiles. It is an error so the not-found outcome still flows through
// the usual error path, while handlers recover the payload via errors.As.
type SuggestionsError struct {
	Query       string
	Suggestions []ProfileSuggestion
}

func (e *SuggestionsError) Error() string {
	return fmt.Sprintf("no account named %q, found %d similar profiles", e.Query, len(e.Suggestions))
}

func (e *SuggestionsError) Unwrap() error {
	return ErrNotFound
}
