package achievement

import "time"

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Definition is an immutable catalog entry. MaxProgress of 0 means the
// achievement carries no progress counter.
type Definition struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Rarity      Rarity  `json:"rarity"`
	Points      int     `json:"points"`
	MaxProgress float64 `json:"maxProgress,omitempty"`
}

// State is the per-achievement mutable unlock record, kept separate
// from the definitions so the catalog is never aliased or mutated.
type State struct {
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
	Progress   float64    `json:"progress,omitempty"`
}

// Achievement is the merged view of a definition and its unlock state.
type Achievement struct {
	Definition
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
	Progress   float64    `json:"progress"`
}

type Summary struct {
	Total    int          `json:"total"`
	Unlocked int          `json:"unlocked"`
	Points   int          `json:"points"`
	Next     *Achievement `json:"nextAchievement"`
}

var catalog = []Definition{
	// Savings
	{ID: "first_save", Title: "First Deal", Description: "Caught your first price drop", Icon: "🎯", Rarity: RarityCommon, Points: 10},
	{ID: "save_100", Title: "Smart Saver", Description: "Saved $100 on flights", Icon: "💰", Rarity: RarityCommon, Points: 20, MaxProgress: 100},
	{ID: "save_500", Title: "Deal Hunter", Description: "Saved $500 on flights", Icon: "🏆", Rarity: RarityRare, Points: 50, MaxProgress: 500},
	{ID: "save_1000", Title: "Master Negotiator", Description: "Saved $1000 on flights", Icon: "👑", Rarity: RarityEpic, Points: 100, MaxProgress: 1000},

	// Activity
	{ID: "first_alert", Title: "Alert Rookie", Description: "Created your first price alert", Icon: "🔔", Rarity: RarityCommon, Points: 10},
	{ID: "alerts_10", Title: "Alert Master", Description: "Created 10 price alerts", Icon: "🚨", Rarity: RarityRare, Points: 30, MaxProgress: 10},
	{ID: "first_trip", Title: "Trip Planner", Description: "Planned your first trip", Icon: "✈️", Rarity: RarityCommon, Points: 10},
	{ID: "trips_5", Title: "Frequent Flyer", Description: "Planned 5 trips", Icon: "🌍", Rarity: RarityRare, Points: 40, MaxProgress: 5},

	// Streaks
	{ID: "streak_7", Title: "Week Warrior", Description: "7-day check-in streak", Icon: "🔥", Rarity: RarityCommon, Points: 25, MaxProgress: 7},
	{ID: "streak_30", Title: "Dedicated Traveler", Description: "30-day check-in streak", Icon: "⚡", Rarity: RarityEpic, Points: 100, MaxProgress: 30},

	// Special
	{ID: "perfect_timing", Title: "Perfect Timing", Description: "Caught a 50%+ price drop", Icon: "⏰", Rarity: RarityEpic, Points: 75},
	{ID: "night_owl", Title: "Night Owl", Description: "Checked prices after midnight", Icon: "🦉", Rarity: RarityRare, Points: 20},
	{ID: "early_bird", Title: "Early Bird", Description: "Checked prices before 6 AM", Icon: "🐦", Rarity: RarityRare, Points: 20},
	{ID: "subscriber", Title: "Pro Traveler", Description: "Became a Pro subscriber", Icon: "⭐", Rarity: RarityLegendary, Points: 200},
}

// Catalog returns a copy of the fixed achievement definitions in
// display order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the definition for an id, or false if unknown.
func Lookup(id string) (Definition, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}
