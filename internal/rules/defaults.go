/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rules

// Families are evaluated top to bottom and the first match wins, so a more
// specific shell must stay above any broader shell sharing its prefix.
var defaultFamilies = []FamilySpec{
	// Major soccer leagues
	{Label: "BIG10+", Shell: `BIG10\+ \d+:`},
	{Label: "Bundesliga", Shell: `Bundesliga \d+:`},
	{Label: "EPL", Shell: `EPL \d+:?`},
	{Label: "EPL", Shell: `EPL\d+`},
	{Label: "La Liga", Shell: `La Liga \d+:`},
	{Label: "Ligue1", Shell: `Ligue1 \d+:`},
	{Label: "Serie A", Shell: `Serie A \d+:`},
	{Label: "Scottish Premiership", Shell: `Scottish Premiership \d+:`},
	{Label: "SPFL", Shell: `SPFL \d+:`},

	// Basketball
	{Label: "NBA", Shell: `NBA \d+:`},
	{Label: "NCAAB", Shell: `NCAAB \d+:`},
	{Label: "NCAAW B", Shell: `NCAAW B \d+:`},
	{Label: "NJCAA Men's Basketball", Shell: `NJCAA Men's Basketball \d+:`},
	{Label: "NJCAA Women's Basketball", Shell: `NJCAA Women's Basketball \d+:`},
	{Label: "USA Real NBA", Shell: `USA Real NBA \d+:`},
	{Label: "WNBA", Shell: `WNBA \d+:?`},
	{Label: "FIBA", Shell: `FIBA \d+:`},

	// American football
	{Label: "NCAAF", Shell: `NCAAF \d+:?`},
	{Label: "NFL", Shell: `NFL \d+:?`},
	{Label: "NFL Game Pass", Shell: `NFL Game Pass \d+:?`},
	{Label: "NFL Multi Screen", Shell: `NFL Multi Screen / HDR \d+`},
	{Label: "NFL |", Shell: `NFL\s+\|\s+\d+\s*-?`},

	// Hockey
	{Label: "NHL", Shell: `NHL \d+:`},
	{Label: "NHL |", Shell: `NHL \| \d+:`},
	{Label: "USA Real NHL", Shell: `USA Real NHL \d+:`},
	{Label: "WHL", Shell: `WHL \d+:`},
	{Label: "QMJHL", Shell: `QMJHL \d+:`},
	{Label: "OHL", Shell: `OHL \d+:`},

	// Baseball
	{Label: "MLB", Shell: `MLB \d+:`},
	{Label: "MiLB", Shell: `MiLB \d+:`},
	{Label: "USA Real MLB", Shell: `USA Real MLB \d+:`},

	// International soccer and cups
	{Label: "MLS", Shell: `MLS \d+:`},
	{Label: "MLS", Shell: `MLS \d+ \|`},
	{Label: "MLS NEXT PRO", Shell: `MLS NEXT PRO \d+:?`},
	{Label: "MLS Espanol", Shell: `MLS Espanolⓧ \d+:?`},
	{Label: "USA | MLS", Shell: `USA \| MLS \d+:?`},
	{Label: "USA Soccer", Shell: `USA Soccer\s?\d+:`},
	{Label: "FA Cup", Shell: `FA Cup \d+:?`},
	{Label: "EFL", Shell: `EFL\s?\d+:?`},
	{Label: "Super League", Shell: `Super League \+ \d+:?`},
	{Label: "UEFA Champions League", Shell: `UEFA Champions League \d+:`},
	{Label: "UEFA Europa League", Shell: `UEFA Europa League \d+:`},
	{Label: "UEFA Europa Conf League", Shell: `UEFA Europa Conf\. League \d+:`},
	{Label: "UEFA/FIFA", Shell: `UEFA/FIFA \d+:?`},
	{Label: "GAAGO", Shell: `GAAGO:\s*GAME \d+:?`},
	{Label: "LOI", Shell: `LOI GAME \d+:?`},
	{Label: "National League TV", Shell: `National League TV \d+:?`},

	// Streaming services
	{Label: "DAZN BE", Shell: `DAZN BE \d+:`},
	{Label: "DAZN CA", Shell: `DAZN CA \d+:?`},
	{Label: "ESPN+", Shell: `ESPN\+ \d+:?`},
	{Label: "Fanatiz", Shell: `Fanatiz \d+:`},
	{Label: "Flo Football", Shell: `Flo Football \d+:`},
	{Label: "Flo Racing", Shell: `Flo Racing \d+:`},
	{Label: "Flo Sports", Shell: `Flo Sports \d+:`},
	{Label: "Paramount+", Shell: `Paramount\+ \d+:?`},
	{Label: "Peacock", Shell: `Peacock \d+:`},
	{Label: "Prime US", Shell: `Prime US \d+:`},
	{Label: "SEC+/ACC extra", Shell: `SEC\+ / ACC extra \d+:?`},
	{Label: "Fubo Sports Network", Shell: `Fubo Sports Network \d+:?`},
	{Label: "Sportsnet+", Shell: `Sportsnet\+ \d+:?`},
	{Label: "TSN+", Shell: `TSN\+ \d+:`},

	// International streaming
	{Label: "MAX NL", Shell: `MAX NL \d+:`},
	{Label: "MAX SE", Shell: `MAX SE \d+:`},
	{Label: "MAX USA", Shell: `MAX USA \d+:`},
	{Label: "Viaplay NL", Shell: `Viaplay NL \d+:`},
	{Label: "Viaplay SE", Shell: `Viaplay SE \d+:`},
	{Label: "Viaplay NO", Shell: `Viaplay NO \d+:?`},
	{Label: "TV2 NO", Shell: `TV2 NO \d+:`},
	{Label: "Tv4 Play SE", Shell: `Tv4 Play SE \d+:`},
	{Label: "Sky Sports+", Shell: `Sky Sports\+ \|`},
	{Label: "Sky Tennis+", Shell: `Sky Tennis\+ \|`},
	{Label: "Setanta Sports", Shell: `Setanta Sports \d+:`},

	// Tennis and combat sports
	{Label: "Tennis", Shell: `Tennis \d+:`},
	{Label: "Tennis TV", Shell: `Tennis TV \| Event \d+:?`},
	{Label: "UFC", Shell: `UFC \d+:?`},
	{Label: "TrillerTV", Shell: `TrillerTV Event \d+:?`},
	{Label: "Matchroom", Shell: `Matchroom Event \d+:?`},

	// Other
	{Label: "LIVE EVENT", Shell: `LIVE EVENT \d+:?`},
	{Label: "Dirtvision", Shell: `Dirtvision:\s*EVENT \d+:?`},
	{Label: "Clubber", Shell: `Clubber \d+:?`},
	{Label: "NCAA Softball", Shell: `NCAA Softball \d+:`},
}

// Payload words that describe the feed rather than its content.
var defaultFluffTokens = []string{
	"LIVE", "TEST", "FHD", "UHD", "HEVC", "EN", "ES", "ALT", "MULTI", "BACKUP", "FEED", "EVENT", "STREAM",
	"1080P", "2160P", "4K", "HDR", "SD", "HD", "H264", "H265", "AAC", "AC3", "EAC3",
}

var defaultZones = map[string]string{
	// North America
	"ET": "America/New_York", "EST": "America/New_York", "EDT": "America/New_York",
	"CT": "America/Chicago", "CST": "America/Chicago", "CDT": "America/Chicago",
	"MT": "America/Denver", "MST": "America/Denver", "MDT": "America/Denver",
	"PT": "America/Los_Angeles", "PST": "America/Los_Angeles", "PDT": "America/Los_Angeles",
	"UTC": "UTC", "GMT": "UTC",
	// Europe
	"CET": "Europe/Berlin", "CEST": "Europe/Berlin",
	"BST": "Europe/London", "WEST": "Europe/Lisbon", "WET": "Europe/Lisbon",
}

// DefaultZone is used for abbreviations missing from the zone table.
const DefaultZone = "America/New_York"

// studioException is the operator override that treats a bare "Studio" payload
// on Peacock as a generic slot. It is only applied when Options.StudioGeneric is set.
var studioException = map[string][]string{
	"Peacock": {"STUDIO"},
}

// DefaultTitles returns the stock programme titles.
func DefaultTitles() TitleSpec {
	return TitleSpec{
		Filler:       "No Programming Today.",
		LiveMarker:   "●",
		AiringPrefix: "Airing Next:",
		TBASuffix:    "(Time TBA)",
		TimeLayout:   "Jan 02 03:04 PM MST",
	}
}

// DefaultSpec returns a copy of the built-in rule tables.
func DefaultSpec() Spec {
	families := make([]FamilySpec, len(defaultFamilies))
	copy(families, defaultFamilies)

	fluff := make([]string, len(defaultFluffTokens))
	copy(fluff, defaultFluffTokens)

	zones := make(map[string]string, len(defaultZones))
	for k, v := range defaultZones {
		zones[k] = v
	}

	return Spec{
		Families:    families,
		FluffTokens: fluff,
		Zones:       zones,
		DefaultZone: DefaultZone,
		Exceptions:  map[string][]string{},
		Titles:      DefaultTitles(),
	}
}
