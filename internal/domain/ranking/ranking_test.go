package ranking_test

import (
	"testing"

	"github.com/Entinus-oss/howmuchtime/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func pool(playtimes ...int) []ranking.Player {
	players := make([]ranking.Player, len(playtimes))
	for i, pt := range playtimes {
		players[i] = ranking.Player{
			SteamID:       string(rune('a' + i)),
			TotalPlaytime: pt,
		}
	}
	return players
}

func TestRank(t *testing.T) {
	Convey("Given a pool with tied playtimes", t, func() {
		players := pool(300, 500, 100, 500)

		result := ranking.Rank(players, "c")

		Convey("Then the pool is sorted by playtime descending", func() {
			So(result.Players[0].TotalPlaytime, ShouldEqual, 500)
			So(result.Players[1].TotalPlaytime, ShouldEqual, 500)
			So(result.Players[2].TotalPlaytime, ShouldEqual, 300)
			So(result.Players[3].TotalPlaytime, ShouldEqual, 100)
		})

		Convey("Then ties share a rank and the next value jumps past them", func() {
			So(result.Players[0].Rank, ShouldEqual, 1)
			So(result.Players[1].Rank, ShouldEqual, 1)
			So(result.Players[2].Rank, ShouldEqual, 3)
			So(result.Players[3].Rank, ShouldEqual, 4)
		})

		Convey("Then totals cover the whole pool", func() {
			So(result.TotalPlayers, ShouldEqual, 4)
			So(result.SubjectRank, ShouldEqual, 4)
		})
	})

	Convey("Given the subject ties with a friend", t, func() {
		players := []ranking.Player{
			{SteamID: "friend", TotalPlaytime: 500},
			{SteamID: "other", TotalPlaytime: 200},
			{SteamID: "subject", TotalPlaytime: 500},
		}

		result := ranking.Rank(players, "subject")

		Convey("Then the subject holds the shared rank value", func() {
			So(result.SubjectRank, ShouldEqual, 1)
			So(result.TotalPlayers, ShouldEqual, 3)
		})
	})

	Convey("Given a pool of one", t, func() {
		players := []ranking.Player{{SteamID: "solo", TotalPlaytime: 0}}

		result := ranking.Rank(players, "solo")

		Convey("Then the single entry is rank 1", func() {
			So(result.Players[0].Rank, ShouldEqual, 1)
			So(result.SubjectRank, ShouldEqual, 1)
			So(result.TotalPlayers, ShouldEqual, 1)
		})
	})

	Convey("Given a subject missing from the pool", t, func() {
		result := ranking.Rank(pool(10, 20), "nobody")

		Convey("Then the subject rank is zero", func() {
			So(result.SubjectRank, ShouldEqual, 0)
		})
	})

	Convey("Given any sorted pool", t, func() {
		result := ranking.Rank(pool(7, 3, 3, 9, 1, 3), "a")

		Convey("Then ranks never decrease as playtime decreases", func() {
			for i := 1; i < len(result.Players); i++ {
				So(result.Players[i].Rank, ShouldBeGreaterThanOrEqualTo, result.Players[i-1].Rank)
				So(result.Players[i].TotalPlaytime, ShouldBeLessThanOrEqualTo, result.Players[i-1].TotalPlaytime)
			}
		})
	})
}
