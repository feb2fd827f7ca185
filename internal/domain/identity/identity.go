// Package identity classifies raw user input into canonical SteamIDs and
// vanity candidates. Normalization is pure string work; whether a vanity
// candidate actually exists is decided by the remote resolver downstream.
package identity

import (
	"regexp"
	"strings"
)

// SteamID is a canonical 64-bit Steam account identifier in decimal string
// form. Every downstream lookup keys on this type; values must satisfy
// Valid() before being used as a lookup key.
type SteamID string

var (
	canonicalPattern = regexp.MustCompile(`^7656\d{13}$`)
	profilesURL      = regexp.MustCompile(`steamcommunity\.com/profiles/(\d+)`)
	vanityURL        = regexp.MustCompile(`steamcommunity\.com/id/([^/?#]+)`)
)

// Valid reports whether id matches the canonical 17-digit pattern.
func (id SteamID) Valid() bool {
	return canonicalPattern.MatchString(string(id))
}

func (id SteamID) String() string {
	return string(id)
}

// Normalize classifies raw input as either a canonical SteamID or a vanity
// candidate that still needs remote resolution. Exactly one of the return
// values is non-empty. It never fails and performs no network calls.
//
// Accepted forms, checked in order:
//   - a bare 17-digit SteamID, returned unchanged
//   - a profile URL embedding a numeric ID (/profiles/<id>)
//   - a profile URL embedding a vanity name (/id/<vanity>)
//   - anything else, treated as a vanity candidate after trim+lowercase
func Normalize(raw string) (SteamID, string) {
	input := strings.TrimSpace(raw)

	if canonicalPattern.MatchString(input) {
		return SteamID(input), ""
	}

	if m := profilesURL.FindStringSubmatch(input); m != nil {
		if id := SteamID(m[1]); id.Valid() {
			return id, ""
		}
	}

	if m := vanityURL.FindStringSubmatch(input); m != nil {
		return "", m[1]
	}

	return "", strings.ToLower(input)
}
