// Package steam implements a typed client for the Steam Web API and the
// storefront appdetails endpoint. Response shapes are declared explicitly
// and validated on ingress; handlers never see raw upstream JSON.
package steam

// Visibility states reported by player summaries.
const VisibilityPublic = 3

// PlayerSummary is one entry from ISteamUser/GetPlayerSummaries.
type PlayerSummary struct {
	SteamID                  string `json:"steamid"`
	CommunityVisibilityState int    `json:"communityvisibilitystate"`
	ProfileState             int    `json:"profilestate"`
	PersonaName              string `json:"personaname"`
	Avatar                   string `json:"avatar"`
	AvatarMedium             string `json:"avatarmedium"`
	AvatarFull               string `json:"avatarfull"`
	ProfileURL               string `json:"profileurl"`
	PersonaState             int    `json:"personastate"`
	RealName                 string `json:"realname,omitempty"`
	TimeCreated              int64  `json:"timecreated,omitempty"`
	CountryCode              string `json:"loccountrycode,omitempty"`
}

// Public reports whether the profile is community-visible.
func (p PlayerSummary) Public() bool {
	return p.CommunityVisibilityState == VisibilityPublic
}

// Friend is one edge from ISteamUser/GetFriendList.
type Friend struct {
	SteamID      string `json:"steamid"`
	Relationship string `json:"relationship"`
	FriendSince  int64  `json:"friend_since"`
}

// Game is one owned title from IPlayerService/GetOwnedGames. Playtime is in
// minutes.
type Game struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever"`
	ImgIconURL      string `json:"img_icon_url"`
	ImgLogoURL      string `json:"img_logo_url"`
	Playtime2Weeks  int    `json:"playtime_2weeks,omitempty"`
}

// OwnedGames is the library aggregate for one account.
type OwnedGames struct {
	GameCount int    `json:"game_count"`
	Games     []Game `json:"games"`
}

// TotalPlaytime sums playtime_forever across the library, in minutes.
func (o OwnedGames) TotalPlaytime() int {
	total := 0
	for _, g := range o.Games {
		total += g.PlaytimeForever
	}
	return total
}

// PlayerAchievement is one unlock record from
// ISteamUserStats/GetPlayerAchievements.
type PlayerAchievement struct {
	APIName    string `json:"apiname"`
	Achieved   int    `json:"achieved"`
	UnlockTime int64  `json:"unlocktime"`
}

// PlayerStats is the per-title achievement state for one account.
type PlayerStats struct {
	GameName     string              `json:"gameName"`
	Achievements []PlayerAchievement `json:"achievements"`
}

// SchemaAchievement is one achievement definition from
// ISteamUserStats/GetSchemaForGame.
type SchemaAchievement struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IconGray    string `json:"icongray"`
	Hidden      int    `json:"hidden"`
}

// GameSchema is the achievement catalogue for one title.
type GameSchema struct {
	GameName     string
	Achievements []SchemaAchievement
}

// AppDetails is the storefront metadata for one title.
type AppDetails struct {
	AppID           int
	Name            string         `json:"name"`
	IsFree          bool           `json:"is_free"`
	ShortDesc       string         `json:"short_description"`
	HeaderImage     string         `json:"header_image"`
	Website         string         `json:"website"`
	Developers      []string       `json:"developers"`
	Publishers      []string       `json:"publishers"`
	Price           *PriceOverview `json:"price_overview,omitempty"`
	Platforms       Platforms      `json:"platforms"`
	Metacritic      *Metacritic    `json:"metacritic,omitempty"`
	Categories      []Descriptor   `json:"categories"`
	Genres          []Descriptor   `json:"genres"`
	Recommendations *struct {
		Total int `json:"total"`
	} `json:"recommendations,omitempty"`
	Achievements *struct {
		Total int `json:"total"`
	} `json:"achievements,omitempty"`
	ReleaseDate struct {
		ComingSoon bool   `json:"coming_soon"`
		Date       string `json:"date"`
	} `json:"release_date"`
}

// PriceOverview carries storefront pricing in the store's currency.
type PriceOverview struct {
	Currency         string `json:"currency"`
	Initial          int    `json:"initial"`
	Final            int    `json:"final"`
	DiscountPercent  int    `json:"discount_percent"`
	InitialFormatted string `json:"initial_formatted"`
	FinalFormatted   string `json:"final_formatted"`
}

// Platforms flags storefront platform availability.
type Platforms struct {
	Windows bool `json:"windows"`
	Mac     bool `json:"mac"`
	Linux   bool `json:"linux"`
}

// Metacritic is the storefront review aggregate.
type Metacritic struct {
	Score int    `json:"score"`
	URL   string `json:"url"`
}

// Descriptor is a storefront id/description pair. The id is left untyped
// because the store mixes numeric and string ids across fields.
type Descriptor struct {
	Description string `json:"description"`
}

// Envelope shapes, internal to the client.

type vanityEnvelope struct {
	Response struct {
		Success int    `json:"success"`
		SteamID string `json:"steamid"`
		Message string `json:"message"`
	} `json:"response"`
}

type summariesEnvelope struct {
	Response struct {
		Players []PlayerSummary `json:"players"`
	} `json:"response"`
}

type friendsEnvelope struct {
	FriendsList struct {
		Friends []Friend `json:"friends"`
	} `json:"friendslist"`
}

type ownedGamesEnvelope struct {
	Response OwnedGames `json:"response"`
}

type steamLevelEnvelope struct {
	Response struct {
		PlayerLevel int `json:"player_level"`
	} `json:"response"`
}

type playerStatsEnvelope struct {
	PlayerStats struct {
		GameName     string              `json:"gameName"`
		Achievements []PlayerAchievement `json:"achievements"`
		Success      bool                `json:"success"`
		Error        string              `json:"error"`
	} `json:"playerstats"`
}

type schemaEnvelope struct {
	Game struct {
		GameName           string `json:"gameName"`
		AvailableGameStats struct {
			Achievements []SchemaAchievement `json:"achievements"`
		} `json:"availableGameStats"`
	} `json:"game"`
}

type appDetailsEnvelope struct {
	Success bool       `json:"success"`
	Data    AppDetails `json:"data"`
}
