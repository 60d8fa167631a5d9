package pricing

import "strings"

// Route is an origin/destination airport-code pair.
type Route struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Key returns the canonical "ORIGIN-DEST" route key used across the API.
func (r Route) Key() string {
	return r.Origin + "-" + r.Destination
}

// WireFormat returns the "ORIGIN|DEST" form the pricing endpoint expects.
func (r Route) WireFormat() string {
	return r.Origin + "|" + r.Destination
}

// ParseWireRoute parses "ORIGIN|DEST" or "ORIGIN|DEST|DATE" into a route
// plus an optional departure date.
func ParseWireRoute(s string) (Route, string) {
	parts := strings.Split(s, "|")
	r := Route{}
	if len(parts) > 0 {
		r.Origin = parts[0]
	}
	if len(parts) > 1 {
		r.Destination = parts[1]
	}
	date := ""
	if len(parts) > 2 {
		date = parts[2]
	}
	return r, date
}

// Quote is the outcome of a price lookup. Fallback marks a synthetic
// price substituted because the pricing backend was unreachable or
// returned no price for the route.
type Quote struct {
	Price    float64 `json:"price"`
	Fallback bool    `json:"fallback"`
}

// PriceRequest is the body of POST /api/prices.
type PriceRequest struct {
	Routes []string `json:"routes"`
}

// PriceResponse maps route keys to prices. A nil entry means the
// backend could not price the route; clients substitute a fallback.
type PriceResponse struct {
	Prices map[string]*float64 `json:"prices"`
}
