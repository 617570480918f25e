package domain

import (
	"time"
)

// PlayerSnapshot mirrors the /player/essentials payload.
type PlayerSnapshot struct {
	PlayerTag                string        `json:"playerTag" validate:"required"`
	PlayerName               string        `json:"playerName" validate:"required"`
	ExpLevel                 int           `json:"expLevel"`
	Trophies                 int           `json:"trophies"`
	TownHallLevel            int           `json:"townHallLevel"`
	WarStars                 int           `json:"warStars"`
	Donations                int           `json:"donations"`
	DonationsReceived        int           `json:"donationsReceived"`
	DefenseWins              int           `json:"defenseWins"`
	ClanCapitalContributions int           `json:"clanCapitalContributions"`
	Clan                     *Clan         `json:"clan,omitempty"`
	League                   *League       `json:"league,omitempty"`
	Role                     *string       `json:"role,omitempty"`
	WarPreference            *string       `json:"warPreference,omitempty"`
	Achievements             *Achievement  `json:"achievements,omitempty"`
	Legends                  *Legends      `json:"legends,omitempty"`
	Heroes                   []Item        `json:"heroes"`
	HeroEquipment            HeroEquipment `json:"heroEquipment"`
	Pets                     []Item        `json:"pets"`
	ElixirTroops             []Item        `json:"elixirTroops"`
	DarkElixirTroops         []Item        `json:"darkElixirTroops"`
	SiegeMachines            []Item        `json:"siegeMachines"`
	ElixirSpells             []Item        `json:"elixirSpells"`
	DarkElixirSpells         []Item        `json:"darkElixirSpells"`
}

// BestTrophies is whatever the upstream achievement reports, falling back to
// the current trophy count. It is not guaranteed to be >= Trophies.
func (p *PlayerSnapshot) BestTrophies() int {
	if p.Achievements != nil {
		return p.Achievements.Value
	}
	return p.Trophies
}

type Clan struct {
	Name      string    `json:"name"`
	Tag       string    `json:"tag"`
	BadgeURLs BadgeURLs `json:"badgeUrls"`
	ClanLevel int       `json:"clanLevel"`
}

type BadgeURLs struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

type League struct {
	Name string `json:"name"`
}

type Achievement struct {
	CompletionInfo string `json:"completionInfo"`
	Info           string `json:"info"`
	Name           string `json:"name"`
	Stars          int    `json:"stars"`
	Target         int    `json:"target"`
	Value          int    `json:"value"`
	Village        string `json:"village"`
}

// Legends is only present for players in the legend league.
type Legends struct {
	GlobalRank     *int    `json:"global_rank,omitempty"`
	LocalRank      *int    `json:"local_rank,omitempty"`
	PreviousSeason *Season `json:"previous_season,omitempty"`
	BestSeason     *Season `json:"best_season,omitempty"`
}

type Season struct {
	ID       *string `json:"id,omitempty"`
	Rank     *int    `json:"rank,omitempty"`
	Trophies *int    `json:"trophies,omitempty"`
}

type Item struct {
	Name     string `json:"name"`
	Level    int    `json:"level"`
	MaxLevel int    `json:"maxLevel"`
	Village  string `json:"village"`
	Order    int    `json:"order"`
}

func (i Item) IsMaxed() bool {
	return i.Level >= i.MaxLevel
}

type HeroEquipment struct {
	BarbarianKing []EquipmentItem `json:"barbarianKing"`
	ArcherQueen   []EquipmentItem `json:"archerQueen"`
	MinionPrince  []EquipmentItem `json:"minionPrince"`
	GrandWarden   []EquipmentItem `json:"grandWarden"`
	RoyalChampion []EquipmentItem `json:"royalChampion"`
}

type EquipmentItem struct {
	Name       string `json:"name"`
	Level      int    `json:"level"`
	MaxLevel   int    `json:"maxLevel"`
	Village    string `json:"village"`
	IsEpic     bool   `json:"isEpic"`
	IsEquipped bool   `json:"isEquipped"`
	Order      int    `json:"order"`
}

func (e EquipmentItem) IsMaxed() bool {
	return e.Level >= e.MaxLevel
}

// StoredProfile is the single durable profile row.
type StoredProfile struct {
	ID                string
	Tag               string
	Name              string
	ExpLevel          int
	Trophies          int
	BestTrophies      int
	TownHallLevel     int
	WarStars          int
	Donations         int
	DonationsReceived int
	LastUpdated       time.Time
	Snapshot          []byte
}
