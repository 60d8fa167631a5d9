package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"travelmateAPI/internal/stats"
	"travelmateAPI/internal/trip"
)

// TripService owns the trip list and its itinerary activities. Trip
// creation counts toward the tripsPlanned stat.
type TripService struct {
	persistence  *PersistenceService
	achievements *AchievementService
}

func NewTripService(p *PersistenceService, a *AchievementService) *TripService {
	return &TripService{persistence: p, achievements: a}
}

func (s *TripService) GetTrips(ctx context.Context) []trip.Trip {
	return s.persistence.LoadTrips(ctx)
}

func (s *TripService) CreateTrip(ctx context.Context, req *trip.CreateTripRequest) (*trip.Trip, error) {
	if req.Name == "" || req.Destination == "" {
		return nil, fmt.Errorf("%w: name and destination are required", ErrInvalidInput)
	}
	if req.StartDate == "" || req.EndDate == "" {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}

	newTrip := trip.Trip{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Destination:   req.Destination,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Budget:        req.Budget,
		Collaborators: []string{},
		Activities:    []trip.Activity{},
	}

	trips := append(s.persistence.LoadTrips(ctx), newTrip)
	s.persistence.SaveTrips(ctx, trips)
	s.achievements.UpdateStats(ctx, stats.Update{TripsPlanned: stats.Int(len(trips))})

	return &newTrip, nil
}

func (s *TripService) UpdateTrip(ctx context.Context, updated *trip.Trip) (*trip.Trip, error) {
	trips := s.persistence.LoadTrips(ctx)
	for i := range trips {
		if trips[i].ID == updated.ID {
			if updated.Activities == nil {
				updated.Activities = trips[i].Activities
			}
			trips[i] = *updated
			s.persistence.SaveTrips(ctx, trips)
			return &trips[i], nil
		}
	}
	return nil, ErrTripNotFound
}

func (s *TripService) DeleteTrip(ctx context.Context, tripID string) error {
	trips := s.persistence.LoadTrips(ctx)
	kept := trips[:0]
	for _, t := range trips {
		if t.ID != tripID {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(trips) {
		return ErrTripNotFound
	}
	s.persistence.SaveTrips(ctx, kept)
	return nil
}

// AddActivity appends an itinerary entry to a trip day and bumps the
// trip's spent total by the activity cost.
func (s *TripService) AddActivity(ctx context.Context, tripID string, req *trip.AddActivityRequest) (*trip.Activity, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: activity title is required", ErrInvalidInput)
	}
	if req.Day < 1 {
		return nil, fmt.Errorf("%w: day must be at least 1", ErrInvalidInput)
	}

	trips := s.persistence.LoadTrips(ctx)
	for i := range trips {
		if trips[i].ID != tripID {
			continue
		}
		activity := trip.Activity{
			ID:       uuid.New().String(),
			Day:      req.Day,
			Time:     req.Time,
			Title:    req.Title,
			Location: req.Location,
			Cost:     req.Cost,
			Notes:    req.Notes,
		}
		trips[i].Activities = append(trips[i].Activities, activity)
		trips[i].Spent += activity.Cost
		s.persistence.SaveTrips(ctx, trips)
		return &activity, nil
	}
	return nil, ErrTripNotFound
}

func (s *TripService) RemoveActivity(ctx context.Context, tripID, activityID string) error {
	trips := s.persistence.LoadTrips(ctx)
	for i := range trips {
		if trips[i].ID != tripID {
			continue
		}
		activities := trips[i].Activities
		kept := activities[:0]
		for _, act := range activities {
			if act.ID != activityID {
				kept = append(kept, act)
			} else {
				trips[i].Spent -= act.Cost
			}
		}
		if len(kept) == len(activities) {
			return fmt.Errorf("%w: activity %s", ErrTripNotFound, activityID)
		}
		trips[i].Activities = kept
		s.persistence.SaveTrips(ctx, trips)
		return nil
	}
	return ErrTripNotFound
}
