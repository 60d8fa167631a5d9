package stats

import "time"

// UserStats drives achievement unlock evaluation. TotalSaved is in
// dollars; the counters are lifetime totals.
type UserStats struct {
	TotalSaved       float64    `json:"totalSaved"`
	AlertsCreated    int        `json:"alertsCreated"`
	TripsPlanned     int        `json:"tripsPlanned"`
	PriceDropsCaught int        `json:"priceDropsCaught"`
	PerfectDeals     int        `json:"perfectDeals"`
	Streak           int        `json:"streak"`
	LastCheckIn      *time.Time `json:"lastCheckIn"`
}

// Update is a partial stats mutation. Nil fields are left unchanged.
type Update struct {
	TotalSaved       *float64   `json:"totalSaved,omitempty"`
	AlertsCreated    *int       `json:"alertsCreated,omitempty"`
	TripsPlanned     *int       `json:"tripsPlanned,omitempty"`
	PriceDropsCaught *int       `json:"priceDropsCaught,omitempty"`
	PerfectDeals     *int       `json:"perfectDeals,omitempty"`
	Streak           *int       `json:"streak,omitempty"`
	LastCheckIn      *time.Time `json:"lastCheckIn,omitempty"`
}

// Apply merges the update into a stats record.
func (u Update) Apply(s UserStats) UserStats {
	if u.TotalSaved != nil {
		s.TotalSaved = *u.TotalSaved
	}
	if u.AlertsCreated != nil {
		s.AlertsCreated = *u.AlertsCreated
	}
	if u.TripsPlanned != nil {
		s.TripsPlanned = *u.TripsPlanned
	}
	if u.PriceDropsCaught != nil {
		s.PriceDropsCaught = *u.PriceDropsCaught
	}
	if u.PerfectDeals != nil {
		s.PerfectDeals = *u.PerfectDeals
	}
	if u.Streak != nil {
		s.Streak = *u.Streak
	}
	if u.LastCheckIn != nil {
		s.LastCheckIn = u.LastCheckIn
	}
	return s
}

// Helpers for building partial updates inline.
func Float(v float64) *float64    { return &v }
func Int(v int) *int              { return &v }
func Time(t time.Time) *time.Time { return &t }
