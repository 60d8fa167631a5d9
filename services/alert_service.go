package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"travelmateAPI/internal/alert"
	"travelmateAPI/internal/stats"
)

// AlertService owns the price-alert list: user CRUD, user-initiated
// checks, and applying the monitor's batch results back onto the
// alerts. Every successful price observation also feeds the history
// tracker, and alert activity feeds the achievement engine.
type AlertService struct {
	persistence  *PersistenceService
	achievements *AchievementService
	history      *HistoryService
	monitor      *PriceMonitor
	notifier     *NotificationService
}

func NewAlertService(p *PersistenceService, a *AchievementService, h *HistoryService, m *PriceMonitor, n *NotificationService) *AlertService {
	return &AlertService{persistence: p, achievements: a, history: h, monitor: m, notifier: n}
}

func (s *AlertService) GetAlerts(ctx context.Context) []alert.PriceAlert {
	return s.persistence.LoadAlerts(ctx)
}

// CreateAlert validates the request, checks the current price for the
// route, and persists the new alert. Alert creation counts toward the
// alertsCreated stat.
func (s *AlertService) CreateAlert(ctx context.Context, req *alert.CreateAlertRequest) (*alert.PriceAlert, error) {
	if req.Origin == "" || req.Destination == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", ErrInvalidInput)
	}
	if req.TargetPrice <= 0 {
		return nil, fmt.Errorf("%w: target price must be positive", ErrInvalidInput)
	}

	probe := alert.PriceAlert{Origin: req.Origin, Destination: req.Destination, TargetPrice: req.TargetPrice}
	result := s.monitor.CheckSingleAlert(ctx, probe)

	newAlert := alert.PriceAlert{
		ID:           uuid.New().String(),
		Origin:       req.Origin,
		Destination:  req.Destination,
		TargetPrice:  req.TargetPrice,
		CurrentPrice: result.NewPrice,
		LastChecked:  time.Now(),
		Triggered:    result.NewPrice <= req.TargetPrice,
	}

	alerts := append(s.persistence.LoadAlerts(ctx), newAlert)
	s.persistence.SaveAlerts(ctx, alerts)
	s.history.AddPricePoint(ctx, newAlert.Origin, newAlert.Destination, newAlert.CurrentPrice)

	s.achievements.UpdateStats(ctx, stats.Update{AlertsCreated: stats.Int(len(alerts))})

	if newAlert.Triggered && s.notifier != nil {
		s.notifier.NotifyPriceDrop(ctx, newAlert.Origin, newAlert.Destination, newAlert.TargetPrice, newAlert.CurrentPrice)
	}

	return &newAlert, nil
}

// CheckAlert performs a user-initiated "check now" for one alert and
// applies the result.
func (s *AlertService) CheckAlert(ctx context.Context, alertID string) (*alert.PriceCheckResult, error) {
	alerts := s.persistence.LoadAlerts(ctx)
	idx := -1
	for i, a := range alerts {
		if a.ID == alertID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrAlertNotFound
	}

	result := s.monitor.CheckSingleAlert(ctx, alerts[idx])
	s.applyResult(ctx, &alerts[idx], result)
	s.persistence.SaveAlerts(ctx, alerts)
	return &result, nil
}

func (s *AlertService) DeleteAlert(ctx context.Context, alertID string) error {
	alerts := s.persistence.LoadAlerts(ctx)
	kept := alerts[:0]
	for _, a := range alerts {
		if a.ID != alertID {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(alerts) {
		return ErrAlertNotFound
	}
	s.persistence.SaveAlerts(ctx, kept)
	return nil
}

// ApplyCheckResults is the monitor's onUpdate callback: it maps a
// batch of results back onto the stored alerts.
func (s *AlertService) ApplyCheckResults(ctx context.Context, results []alert.PriceCheckResult) {
	if len(results) == 0 {
		return
	}

	alerts := s.persistence.LoadAlerts(ctx)
	byID := make(map[string]*alert.PriceAlert, len(alerts))
	for i := range alerts {
		byID[alerts[i].ID] = &alerts[i]
	}

	for _, r := range results {
		a, ok := byID[r.AlertID]
		if !ok {
			continue
		}
		s.applyResult(ctx, a, r)
	}

	s.persistence.SaveAlerts(ctx, alerts)
	log.Printf("Applied %d price check results", len(results))
}

// applyResult mutates the alert in place and runs the side effects of
// a completed check: history append, savings stats on a fresh trigger,
// and notifications.
func (s *AlertService) applyResult(ctx context.Context, a *alert.PriceAlert, r alert.PriceCheckResult) {
	if r.Error != "" {
		return
	}

	wasTriggered := a.Triggered
	a.CurrentPrice = r.NewPrice
	a.LastChecked = time.Now()
	a.Triggered = r.Triggered

	s.history.AddPricePoint(ctx, a.Origin, a.Destination, r.NewPrice)

	if !wasTriggered && r.Triggered {
		if s.notifier != nil {
			s.notifier.NotifyPriceDrop(ctx, a.Origin, a.Destination, a.TargetPrice, r.NewPrice)
		}

		saved := a.TargetPrice - r.NewPrice
		current := s.achievements.GetStats(ctx)
		update := stats.Update{PerfectDeals: stats.Int(current.PerfectDeals + 1)}
		if saved > 0 {
			update.TotalSaved = stats.Float(current.TotalSaved + saved)
			update.PriceDropsCaught = stats.Int(current.PriceDropsCaught + 1)
		}
		s.achievements.UpdateStats(ctx, update)

		// A drop of half or more off the previously seen price earns
		// the perfect_timing unlock.
		if r.OldPrice > 0 && r.NewPrice <= r.OldPrice*0.5 {
			s.achievements.UnlockSpecial(ctx, "perfect_timing")
		}
	}
}
