package app_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/Entinus-oss/howmuchtime/internal/adapters/steam"
	app "github.com/Entinus-oss/howmuchtime/internal/app"
	"github.com/Entinus-oss/howmuchtime/internal/domain/identity"
	"github.com/Entinus-oss/howmuchtime/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeSteam is a scriptable steam.Client for service tests.
type fakeSteam struct {
	vanities     map[string]string
	summaries    map[string]steam.PlayerSummary
	friends      map[string][]steam.Friend
	friendsErr   error
	owned        map[string]steam.OwnedGames
	ownedErr     map[string]error
	levels       map[string]int
	stats        map[int]steam.PlayerStats
	statsErr     map[int]error
	schemas      map[int]steam.GameSchema
	schemaErr    map[int]error
	details      map[int]steam.AppDetails
	openIDValid  bool
	openIDErr    error
	summariesErr error
}

func (f *fakeSteam) ResolveVanity(_ context.Context, vanity string) (string, error) {
	if id, ok := f.vanities[vanity]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %s", steam.ErrVanityNotFound, vanity)
}

func (f *fakeSteam) PlayerSummaries(_ context.Context, ids []string) ([]steam.PlayerSummary, error) {
	if f.summariesErr != nil {
		return nil, f.summariesErr
	}
	out := make([]steam.PlayerSummary, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.summaries[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSteam) FriendList(_ context.Context, steamID string) ([]steam.Friend, error) {
	if f.friendsErr != nil {
		return nil, f.friendsErr
	}
	return f.friends[steamID], nil
}

func (f *fakeSteam) OwnedGames(_ context.Context, steamID string) (steam.OwnedGames, error) {
	if err, ok := f.ownedErr[steamID]; ok {
		return steam.OwnedGames{}, err
	}
	return f.owned[steamID], nil
}

func (f *fakeSteam) SteamLevel(_ context.Context, steamID string) (int, error) {
	return f.levels[steamID], nil
}

func (f *fakeSteam) PlayerAchievements(_ context.Context, _ string, appID int) (steam.PlayerStats, error) {
	if err, ok := f.statsErr[appID]; ok {
		return steam.PlayerStats{}, err
	}
	return f.stats[appID], nil
}

func (f *fakeSteam) GameSchema(_ context.Context, appID int) (steam.GameSchema, error) {
	if err, ok := f.schemaErr[appID]; ok {
		return steam.GameSchema{}, err
	}
	return f.schemas[appID], nil
}

func (f *fakeSteam) AppDetails(_ context.Context, appID int) (steam.AppDetails, error) {
	if d, ok := f.details[appID]; ok {
		return d, nil
	}
	return steam.AppDetails{}, fmt.Errorf("%w: no store data", steam.ErrUpstream)
}

func (f *fakeSteam) VerifyOpenID(_ context.Context, _ url.Values) (bool, error) {
	return f.openIDValid, f.openIDErr
}

func publicProfile(id, name string) steam.PlayerSummary {
	return steam.PlayerSummary{
		SteamID:                  id,
		PersonaName:              name,
		CommunityVisibilityState: steam.VisibilityPublic,
		ProfileURL:               "https://steamcommunity.com/profiles/" + id,
	}
}

func library(minutes ...int) steam.OwnedGames {
	games := make([]steam.Game, len(minutes))
	for i, m := range minutes {
		games[i] = steam.Game{AppID: 100 + i, Name: fmt.Sprintf("game-%d", i), PlaytimeForever: m}
	}
	return steam.OwnedGames{GameCount: len(games), Games: games}
}

const subjectID = "76561197960287930"

func TestResolveAccount(t *testing.T) {
	ctx := context.Background()

	Convey("Given an identifier resolver", t, func() {
		fake := &fakeSteam{
			vanities:  map[string]string{"gaben": subjectID},
			summaries: map[string]steam.PlayerSummary{subjectID: publicProfile(subjectID, "GabeN")},
		}
		svc := app.New(fake)

		Convey("A canonical id passes through without an upstream call", func() {
			id, err := svc.ResolveAccount(ctx, subjectID)

			So(err, ShouldBeNil)
			So(id.String(), ShouldEqual, subjectID)
		})

		Convey("A profile URL resolves to its embedded id", func() {
			id, err := svc.ResolveAccount(ctx, "https://steamcommunity.com/profiles/"+subjectID)

			So(err, ShouldBeNil)
			So(id.String(), ShouldEqual, subjectID)
		})

		Convey("A vanity name resolves through the upstream", func() {
			id, err := svc.ResolveAccount(ctx, "GabeN")

			So(err, ShouldBeNil)
			So(id.String(), ShouldEqual, subjectID)
		})

		Convey("A misspelling with a resolvable variation yields suggestions", func() {
			// "gaben®x" derives "gaben" among its candidates.
			_, err := svc.ResolveAccount(ctx, "gaben®x")

			var sugg *app.SuggestionsError
			So(errors.As(err, &sugg), ShouldBeTrue)
			So(errors.Is(err, app.ErrNotFound), ShouldBeTrue)
			So(len(sugg.Suggestions), ShouldBeGreaterThan, 0)
			So(sugg.Suggestions[0].SteamID, ShouldEqual, subjectID)
		})

		Convey("A name with no resolvable variation is plainly not found", func() {
			_, err := svc.ResolveAccount(ctx, "zzzzqqqq")

			So(errors.Is(err, app.ErrNotFound), ShouldBeTrue)
			var sugg *app.SuggestionsError
			So(errors.As(err, &sugg), ShouldBeFalse)
		})

		Convey("A malformed id from the vanity endpoint is an upstream error", func() {
			fake.vanities["badid"] = "123"
			_, err := svc.ResolveAccount(ctx, "badid")

			So(errors.Is(err, steam.ErrUpstream), ShouldBeTrue)
		})

		Convey("Duplicate resolutions collapse to one suggestion", func() {
			// Both derived candidates resolve to the same account.
			fake.vanities["duplicate"] = subjectID
			fake.vanities["duplicat"] = subjectID
			_, err := svc.ResolveAccount(ctx, "duplicate®")

			var sugg *app.SuggestionsError
			So(errors.As(err, &sugg), ShouldBeTrue)
			So(sugg.Suggestions, ShouldHaveLength, 1)
		})
	})
}

func TestRankFriends(t *testing.T) {
	ctx := context.Background()
	subject := identity.SteamID(subjectID)

	Convey("Given a friend ranking service", t, func() {
		fake := &fakeSteam{
			summaries: map[string]steam.PlayerSummary{
				subjectID: publicProfile(subjectID, "Subject"),
				"f1":      publicProfile("f1", "FriendOne"),
				"f2":      publicProfile("f2", "FriendTwo"),
			},
			friends: map[string][]steam.Friend{
				subjectID: {{SteamID: "f1"}, {SteamID: "f2"}},
			},
			owned: map[string]steam.OwnedGames{
				subjectID: library(300),
				"f1":      library(500),
				"f2":      library(300),
			},
			ownedErr: map[string]error{},
		}
		svc := app.New(fake)

		Convey("When every fetch succeeds", func() {
			res, err := svc.RankFriends(ctx, subject)

			So(err, ShouldBeNil)
			So(res.TotalPlayers, ShouldEqual, 3)

			Convey("Then ranks are dense competition ranks", func() {
				So(res.Players[0].PersonaName, ShouldEqual, "FriendOne")
				So(res.Players[0].Rank, ShouldEqual, 1)
				So(res.Players[1].Rank, ShouldEqual, 2)
				So(res.Players[2].Rank, ShouldEqual, 2)
			})

			Convey("Then the subject carries the marker and the shared rank", func() {
				var marked bool
				for _, p := range res.Players {
					if p.SteamID == subjectID {
						marked = p.PersonaName == "Subject (You)"
					}
				}
				So(marked, ShouldBeTrue)
				So(res.SubjectRank, ShouldEqual, 2)
			})

			Convey("Then a tied friend displays above the subject", func() {
				So(res.Players[1].SteamID, ShouldEqual, "f2")
				So(res.Players[2].SteamID, ShouldEqual, subjectID)
			})
		})

		Convey("When the friend list is unreadable", func() {
			fake.friendsErr = errors.New("friends hidden")
			res, err := svc.RankFriends(ctx, subject)

			So(err, ShouldBeNil)
			So(res.TotalPlayers, ShouldEqual, 1)
			So(res.SubjectRank, ShouldEqual, 1)
		})

		Convey("When one friend's library is unreadable", func() {
			fake.ownedErr["f1"] = errors.New("library private")
			res, err := svc.RankFriends(ctx, subject)

			So(err, ShouldBeNil)
			So(res.TotalPlayers, ShouldEqual, 3)

			Convey("Then that friend still ranks, with zero playtime", func() {
				last := res.Players[len(res.Players)-1]
				So(last.SteamID, ShouldEqual, "f1")
				So(last.TotalPlaytime, ShouldEqual, 0)
				So(last.Rank, ShouldEqual, 3)
			})
		})

		Convey("When the subject's own library is unreadable", func() {
			fake.ownedErr[subjectID] = errors.New("library private")
			res, err := svc.RankFriends(ctx, subject)

			So(err, ShouldBeNil)
			So(res.TotalPlayers, ShouldEqual, 3)

			Convey("Then the subject still ranks, with zero playtime", func() {
				last := res.Players[len(res.Players)-1]
				So(last.SteamID, ShouldEqual, subjectID)
				So(last.TotalPlaytime, ShouldEqual, 0)
				So(last.Rank, ShouldEqual, 3)
				So(res.SubjectRank, ShouldEqual, 3)
			})
		})
	})
}

func TestFetchAchievements(t *testing.T) {
	ctx := context.Background()
	subject := identity.SteamID(subjectID)

	schema := func(names ...string) steam.GameSchema {
		s := steam.GameSchema{}
		for _, n := range names {
			s.Achievements = append(s.Achievements, steam.SchemaAchievement{
				Name:        n,
				DisplayName: "Display " + n,
			})
		}
		return s
	}

	Convey("Given an achievement aggregation service", t, func() {
		fake := &fakeSteam{
			summaries: map[string]steam.PlayerSummary{
				subjectID: publicProfile(subjectID, "Subject"),
			},
			owned: map[string]steam.OwnedGames{
				subjectID: library(900, 100),
			},
			ownedErr: map[string]error{},
			schemas: map[int]steam.GameSchema{
				100: schema("ACH_A", "ACH_B"),
				101: schema("ACH_C"),
			},
			stats: map[int]steam.PlayerStats{
				100: {GameName: "game-0", Achievements: []steam.PlayerAchievement{
					{APIName: "ACH_A", Achieved: 1, UnlockTime: 1600000000},
					{APIName: "ACH_B", Achieved: 0},
				}},
				101: {GameName: "game-1", Achievements: []steam.PlayerAchievement{
					{APIName: "ACH_C", Achieved: 1},
				}},
			},
			statsErr: map[int]error{},
		}
		svc := app.New(fake)

		Convey("When every title is readable", func() {
			report, err := svc.FetchAchievements(ctx, subject, nil)

			So(err, ShouldBeNil)
			So(report.ProfilePrivate, ShouldBeFalse)
			So(report.GamesPrivate, ShouldBeFalse)
			So(report.Games, ShouldHaveLength, 2)
			So(report.TotalUnlocked, ShouldEqual, 2)

			Convey("Then unlocks merge catalogue metadata", func() {
				first := report.Games[0]
				So(first.GameName, ShouldEqual, "game-0")
				So(first.Unlocked, ShouldEqual, 1)
				So(first.Total, ShouldEqual, 2)
				So(first.Completion, ShouldEqual, 50.0)
				So(first.Achievements[0].DisplayName, ShouldEqual, "Display ACH_A")
				So(first.Achievements[0].Achieved, ShouldBeTrue)
			})
		})

		Convey("When specific titles are requested", func() {
			report, err := svc.FetchAchievements(ctx, subject, []int{101})

			So(err, ShouldBeNil)
			So(report.Games, ShouldHaveLength, 1)
			So(report.Games[0].AppID, ShouldEqual, 101)

			Convey("Then library metadata enriches the entry", func() {
				So(report.Games[0].GameName, ShouldEqual, "game-1")
				So(report.Games[0].Playtime, ShouldEqual, 100)
			})
		})

		Convey("When an unlock has no catalogue entry", func() {
			fake.stats[100] = steam.PlayerStats{Achievements: []steam.PlayerAchievement{
				{APIName: "ACH_UNLISTED", Achieved: 1},
			}}
			report, err := svc.FetchAchievements(ctx, subject, nil)

			So(err, ShouldBeNil)
			So(report.Games[0].Achievements[0].DisplayName, ShouldEqual, "ACH_UNLISTED")
		})

		Convey("When one of two titles refuses stats", func() {
			fake.statsErr[100] = steam.ErrStatsPrivate
			report, err := svc.FetchAchievements(ctx, subject, nil)

			So(err, ShouldBeNil)

			Convey("Then it falls back to the locked catalogue", func() {
				So(report.Games[0].Private, ShouldBeTrue)
				So(report.Games[0].Unlocked, ShouldEqual, 0)
				So(report.Games[0].Achievements, ShouldHaveLength, 2)
			})

			Convey("Then half the titles private flags the report", func() {
				So(report.GamesPrivate, ShouldBeTrue)
			})
		})

		Convey("When a title tracks no stats at all", func() {
			fake.statsErr[100] = steam.ErrNoStats
			report, err := svc.FetchAchievements(ctx, subject, nil)

			So(err, ShouldBeNil)

			Convey("Then it stays in the report with zero totals", func() {
				So(report.Games, ShouldHaveLength, 2)
				So(report.Games[0].AppID, ShouldEqual, 100)
				So(report.Games[0].Total, ShouldEqual, 0)
				So(report.Games[0].Private, ShouldBeFalse)
			})

			Convey("Then the report is not flagged private", func() {
				So(report.GamesPrivate, ShouldBeFalse)
			})
		})

		Convey("When fewer than half the titles refuse stats", func() {
			svc := app.New(fake, app.WithPrivateShare(0.6))
			fake.statsErr[100] = steam.ErrStatsPrivate
			report, err := svc.FetchAchievements(ctx, subject, nil)

			So(err, ShouldBeNil)
			So(report.GamesPrivate, ShouldBeFalse)
		})

		Convey("When the profile itself is private", func() {
			private := publicProfile(subjectID, "Subject")
			private.CommunityVisibilityState = 1
			fake.summaries[subjectID] = private

			report, err := svc.FetchAchievements(ctx, subject, []int{100, 101, 300})

			So(err, ShouldBeNil)
			So(report.ProfilePrivate, ShouldBeTrue)
			So(report.Games, ShouldHaveLength, 3)

			Convey("Then titles with achievements report locked catalogue counts", func() {
				So(report.Games[0].Total, ShouldEqual, 2)
				So(report.Games[0].Unlocked, ShouldEqual, 0)
				So(report.Games[0].Private, ShouldBeTrue)
				So(report.Games[1].Total, ShouldEqual, 1)
				So(report.Games[1].Private, ShouldBeTrue)
			})

			Convey("Then a title without achievements is not marked private", func() {
				So(report.Games[2].AppID, ShouldEqual, 300)
				So(report.Games[2].Total, ShouldEqual, 0)
				So(report.Games[2].Private, ShouldBeFalse)
			})
		})

		Convey("When a private profile hits an unreadable schema", func() {
			private := publicProfile(subjectID, "Subject")
			private.CommunityVisibilityState = 1
			fake.summaries[subjectID] = private
			fake.schemaErr = map[int]error{101: steam.ErrUpstream}

			report, err := svc.FetchAchievements(ctx, subject, []int{100, 101})

			So(err, ShouldBeNil)
			So(report.Games, ShouldHaveLength, 1)
			So(report.Games[0].AppID, ShouldEqual, 100)
		})

		Convey("When the title cap is lower than the request", func() {
			svc := app.New(fake, app.WithAchievementCap(1))
			report, err := svc.FetchAchievements(ctx, subject, []int{100, 101})

			So(err, ShouldBeNil)
			So(report.ExaminedGames, ShouldEqual, 1)
			So(report.Games, ShouldHaveLength, 1)
			So(report.Games[0].AppID, ShouldEqual, 100)
		})
	})
}

func TestFriendsAndOverview(t *testing.T) {
	ctx := context.Background()
	subject := identity.SteamID(subjectID)

	Convey("Given a social listing service", t, func() {
		online := publicProfile("f2", "Zed")
		online.PersonaState = 1
		fake := &fakeSteam{
			summaries: map[string]steam.PlayerSummary{
				subjectID: publicProfile(subjectID, "Subject"),
				"f1":      publicProfile("f1", "Alice"),
				"f2":      online,
			},
			friends: map[string][]steam.Friend{
				subjectID: {{SteamID: "f1"}, {SteamID: "f2"}, {SteamID: "ghost"}},
			},
			owned:    map[string]steam.OwnedGames{subjectID: library(120, 0, 60)},
			ownedErr: map[string]error{},
			levels:   map[string]int{subjectID: 42},
		}
		svc := app.New(fake)

		Convey("When listing friends", func() {
			list, err := svc.Friends(ctx, subject)

			So(err, ShouldBeNil)
			So(list, ShouldHaveLength, 3)

			Convey("Then online friends sort first", func() {
				So(list[0].PersonaName, ShouldEqual, "Zed")
			})

			Convey("Then a missing summary becomes a placeholder", func() {
				So(list[2].SteamID, ShouldEqual, "ghost")
				So(list[2].PersonaName, ShouldEqual, "Unknown User")
				So(list[2].ProfileURL, ShouldEqual, "https://steamcommunity.com/profiles/ghost")
			})
		})

		Convey("When building the profile overview", func() {
			view, err := svc.Overview(ctx, subject)

			So(err, ShouldBeNil)
			So(view.SteamLevel, ShouldEqual, 42)
			So(view.TotalPlaytime, ShouldEqual, 180)
			So(view.TotalGames, ShouldEqual, 3)

			Convey("Then unplayed titles are filtered, most played first", func() {
				So(view.PlayedGames, ShouldEqual, 2)
				So(view.Games[0].PlaytimeForever, ShouldEqual, 120)
			})
		})

		Convey("When the overview subject does not exist", func() {
			_, err := svc.Overview(ctx, identity.SteamID("7656119796028999"))

			So(errors.Is(err, app.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestVerifyLogin(t *testing.T) {
	ctx := context.Background()

	assertion := func(claimed string) url.Values {
		return url.Values{
			"openid.mode":       {"id_res"},
			"openid.claimed_id": {claimed},
		}
	}

	Convey("Given a login verifier", t, func() {
		fake := &fakeSteam{openIDValid: true}
		svc := app.New(fake)

		Convey("A valid assertion yields the claimed SteamID", func() {
			id, err := svc.VerifyLogin(ctx, assertion("https://steamcommunity.com/openid/id/76561197960287930"))

			So(err, ShouldBeNil)
			So(id.String(), ShouldEqual, "76561197960287930")
		})

		Convey("A rejected assertion is a login error", func() {
			fake.openIDValid = false
			_, err := svc.VerifyLogin(ctx, assertion("https://steamcommunity.com/openid/id/76561197960287930"))

			So(errors.Is(err, app.ErrLoginInvalid), ShouldBeTrue)
		})

		Convey("A malformed claimed id is a login error", func() {
			_, err := svc.VerifyLogin(ctx, assertion("https://evil.example/openid/id/123"))

			So(errors.Is(err, app.ErrLoginInvalid), ShouldBeTrue)
		})

		Convey("A claimed id outside the account range is a login error", func() {
			_, err := svc.VerifyLogin(ctx, assertion("https://steamcommunity.com/openid/id/1234"))

			So(errors.Is(err, app.ErrLoginInvalid), ShouldBeTrue)
		})
	})
}
