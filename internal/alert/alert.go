package alert

import "time"

// PriceAlert is a user-defined route watched for price drops.
type PriceAlert struct {
	ID           string    `json:"id"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	TargetPrice  float64   `json:"targetPrice"`
	CurrentPrice float64   `json:"currentPrice"`
	LastChecked  time.Time `json:"lastChecked"`
	Triggered    bool      `json:"triggered"`
}

type CreateAlertRequest struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	TargetPrice float64 `json:"targetPrice"`
}

// PriceCheckResult is the per-alert outcome of a price check.
// Triggered is recomputed on every check; it is not sticky.
type PriceCheckResult struct {
	AlertID   string  `json:"alertId"`
	OldPrice  float64 `json:"oldPrice"`
	NewPrice  float64 `json:"newPrice"`
	Triggered bool    `json:"triggered"`
	Error     string  `json:"error,omitempty"`
}
