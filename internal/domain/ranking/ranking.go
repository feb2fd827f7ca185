// Package ranking sorts player pools by total playtime and assigns
// competition ranks.
package ranking

import "sort"

// Player is one ranked entry in a friend pool. Rank is derived on every
// call and never cached across calls.
type Player struct {
	SteamID       string `json:"steamId"`
	PersonaName   string `json:"personaName"`
	Avatar        string `json:"avatar"`
	AvatarMedium  string `json:"avatarMedium"`
	AvatarFull    string `json:"avatarFull"`
	ProfileURL    string `json:"profileUrl"`
	PersonaState  int    `json:"personaState"`
	TotalPlaytime int    `json:"totalPlaytime"`
	TotalGames    int    `json:"totalGames"`
	Rank          int    `json:"rank"`
	CountryCode   string `json:"countryCode,omitempty"`
	RealName      string `json:"realName,omitempty"`
}

// Result is the outcome of ranking a subject against their friend pool.
type Result struct {
	Players      []Player `json:"friends"`
	SubjectRank  int      `json:"userRank"`
	TotalPlayers int      `json:"totalPlayers"`
}

// Rank sorts the pool by total playtime, highest first, and assigns
// competition ranks: players with equal playtime share a rank, and the next
// strictly lower playtime takes its 1-based position in the sorted order,
// leaving a gap after the tied block. SubjectRank is the rank held by the
// entry whose SteamID equals subject, or 0 when the subject is absent.
//
// The sort is stable so callers control tie order by insertion order.
func Rank(pool []Player, subject string) Result {
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].TotalPlaytime > pool[j].TotalPlaytime
	})

	current := 1
	for i := range pool {
		if i > 0 && pool[i].TotalPlaytime < pool[i-1].TotalPlaytime {
			current = i + 1
		}
		pool[i].Rank = current
	}

	subjectRank := 0
	for i := range pool {
		if pool[i].SteamID == subject {
			subjectRank = pool[i].Rank
			break
		}
	}

	return Result{
		Players:      pool,
		SubjectRank:  subjectRank,
		TotalPlayers: len(pool),
	}
}
