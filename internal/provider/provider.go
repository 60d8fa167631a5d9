package provider

import (
	"context"
	"errors"
)

// ErrNoOffer means the provider answered but had no priced offer for
// the route; callers treat it as "no price", not as a hard failure.
var ErrNoOffer = errors.New("provider: no offer for route")

// Provider looks up the cheapest one-adult fare for a route on a
// departure date (YYYY-MM-DD).
type Provider interface {
	FetchPrice(ctx context.Context, origin, destination, date string) (float64, error)
}
