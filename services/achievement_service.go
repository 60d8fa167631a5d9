package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"travelmateAPI/internal/achievement"
	"travelmateAPI/internal/stats"
	"travelmateAPI/internal/storage"
)

// AchievementService owns the gamification state: a stored stats
// record and the per-achievement unlock records evaluated against it.
// The definitions themselves are the fixed catalog and never change.
type AchievementService struct {
	store storage.Store
	mu    sync.Mutex
	now   func() time.Time

	// onUnlock, when set, is called with each newly unlocked
	// achievement after the unlock is persisted.
	onUnlock func(achievement.Achievement)
}

func NewAchievementService(store storage.Store) *AchievementService {
	return &AchievementService{store: store, now: time.Now}
}

// SetUnlockListener registers a callback for unlock notifications.
func (s *AchievementService) SetUnlockListener(fn func(achievement.Achievement)) {
	s.onUnlock = fn
}

// GetStats returns the stored stats record, or a zero record when
// nothing is stored or the blob is unreadable.
func (s *AchievementService) GetStats(ctx context.Context) stats.UserStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadStats(ctx)
}

// GetAchievements returns the full catalog merged with unlock state,
// in catalog order.
func (s *AchievementService) GetAchievements(ctx context.Context) []achievement.Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.merged(s.loadState(ctx))
}

// UpdateStats merges the partial update into the stored record,
// persists it, and re-evaluates every locked achievement against the
// new stats. Already-unlocked achievements are never re-evaluated, so
// unlocks are monotonic and UnlockedAt is stamped exactly once.
// Returns the achievements newly unlocked by this update.
func (s *AchievementService) UpdateStats(ctx context.Context, update stats.Update) []achievement.Achievement {
	s.mu.Lock()
	newStats := update.Apply(s.loadStats(ctx))
	s.saveStats(ctx, newStats)

	state := s.loadState(ctx)
	var newlyUnlocked []achievement.Achievement

	for _, def := range achievement.Catalog() {
		st := state[def.ID]
		if st.Unlocked {
			continue
		}

		progress, shouldUnlock := evaluate(def.ID, newStats)
		if progress != st.Progress {
			st.Progress = progress
		}
		if shouldUnlock {
			st.Unlocked = true
			t := s.now()
			st.UnlockedAt = &t
			newlyUnlocked = append(newlyUnlocked, merge(def, st))
		}
		state[def.ID] = st
	}

	s.saveState(ctx, state)
	s.mu.Unlock()

	s.notify(newlyUnlocked)
	return newlyUnlocked
}

// UnlockSpecial unconditionally unlocks a named achievement, used for
// non-statistical triggers. Returns nil when the id is unknown or the
// achievement is already unlocked.
func (s *AchievementService) UnlockSpecial(ctx context.Context, id string) *achievement.Achievement {
	def, ok := achievement.Lookup(id)
	if !ok {
		return nil
	}

	s.mu.Lock()
	state := s.loadState(ctx)
	st := state[id]
	if st.Unlocked {
		s.mu.Unlock()
		return nil
	}

	st.Unlocked = true
	t := s.now()
	st.UnlockedAt = &t
	state[id] = st
	s.saveState(ctx, state)
	s.mu.Unlock()

	unlocked := merge(def, st)
	s.notify([]achievement.Achievement{unlocked})
	return &unlocked
}

// CheckDailyStreak advances the check-in streak: no prior check-in
// starts it at 1, a gap of exactly one day increments it, a longer gap
// resets it to 1, and a same-day call is a no-op. It also grants the
// time-of-day unlocks; the early-bird window is tested first, so the
// night-owl window effectively fires only in the 23:00 hour even
// though the two ranges overlap before 05:00.
func (s *AchievementService) CheckDailyStreak(ctx context.Context) {
	current := s.GetStats(ctx)
	now := s.now()

	if current.LastCheckIn == nil {
		s.UpdateStats(ctx, stats.Update{Streak: stats.Int(1), LastCheckIn: stats.Time(now)})
	} else {
		daysSince := int(math.Floor(now.Sub(*current.LastCheckIn).Hours() / 24))
		switch {
		case daysSince == 1:
			s.UpdateStats(ctx, stats.Update{Streak: stats.Int(current.Streak + 1), LastCheckIn: stats.Time(now)})
		case daysSince > 1:
			s.UpdateStats(ctx, stats.Update{Streak: stats.Int(1), LastCheckIn: stats.Time(now)})
		}
	}

	hour := now.Hour()
	if hour >= 0 && hour < 6 {
		s.UnlockSpecial(ctx, "early_bird")
	} else if hour < 5 || hour >= 23 {
		s.UnlockSpecial(ctx, "night_owl")
	}
}

// GetTotalPoints sums points over unlocked achievements only.
func (s *AchievementService) GetTotalPoints(ctx context.Context) int {
	total := 0
	for _, a := range s.GetAchievements(ctx) {
		if a.Unlocked {
			total += a.Points
		}
	}
	return total
}

// GetAchievementSummary reports unlock counts, earned points, and the
// single locked achievement closest to unlocking, chosen by highest
// progress ratio with the first locked catalog entry as fallback.
func (s *AchievementService) GetAchievementSummary(ctx context.Context) achievement.Summary {
	all := s.GetAchievements(ctx)

	summary := achievement.Summary{Total: len(all)}
	var next *achievement.Achievement
	bestRatio := -1.0

	for i := range all {
		a := all[i]
		if a.Unlocked {
			summary.Unlocked++
			summary.Points += a.Points
			continue
		}
		if next == nil {
			next = &all[i]
		}
		if a.MaxProgress > 0 {
			if ratio := a.Progress / a.MaxProgress; ratio > bestRatio {
				bestRatio = ratio
				next = &all[i]
			}
		}
	}

	summary.Next = next
	return summary
}

// evaluate is the pure unlock-condition table: stats in, progress and
// unlock decision out.
func evaluate(id string, st stats.UserStats) (progress float64, shouldUnlock bool) {
	switch id {
	case "first_save":
		return 0, st.PriceDropsCaught > 0
	case "save_100":
		return math.Min(st.TotalSaved, 100), st.TotalSaved >= 100
	case "save_500":
		return math.Min(st.TotalSaved, 500), st.TotalSaved >= 500
	case "save_1000":
		return math.Min(st.TotalSaved, 1000), st.TotalSaved >= 1000
	case "first_alert":
		return 0, st.AlertsCreated > 0
	case "alerts_10":
		return math.Min(float64(st.AlertsCreated), 10), st.AlertsCreated >= 10
	case "first_trip":
		return 0, st.TripsPlanned > 0
	case "trips_5":
		return math.Min(float64(st.TripsPlanned), 5), st.TripsPlanned >= 5
	case "streak_7":
		return math.Min(float64(st.Streak), 7), st.Streak >= 7
	case "streak_30":
		return math.Min(float64(st.Streak), 30), st.Streak >= 30
	}
	// Special achievements unlock via UnlockSpecial, never from stats.
	return 0, false
}

func (s *AchievementService) merged(state map[string]achievement.State) []achievement.Achievement {
	defs := achievement.Catalog()
	out := make([]achievement.Achievement, 0, len(defs))
	for _, def := range defs {
		out = append(out, merge(def, state[def.ID]))
	}
	return out
}

func merge(def achievement.Definition, st achievement.State) achievement.Achievement {
	return achievement.Achievement{
		Definition: def,
		Unlocked:   st.Unlocked,
		UnlockedAt: st.UnlockedAt,
		Progress:   st.Progress,
	}
}

func (s *AchievementService) notify(unlocked []achievement.Achievement) {
	if s.onUnlock == nil {
		return
	}
	for _, a := range unlocked {
		s.onUnlock(a)
	}
}

func (s *AchievementService) loadStats(ctx context.Context) stats.UserStats {
	var st stats.UserStats
	data, err := s.store.Get(ctx, storage.KeyStats)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Failed to load stats: %v", err)
		}
		return st
	}
	if err := json.Unmarshal(data, &st); err != nil {
		log.Printf("Failed to parse stats: %v", err)
		return stats.UserStats{}
	}
	return st
}

func (s *AchievementService) saveStats(ctx context.Context, st stats.UserStats) {
	data, err := json.Marshal(st)
	if err != nil {
		log.Printf("Failed to serialize stats: %v", err)
		return
	}
	if err := s.store.Set(ctx, storage.KeyStats, data); err != nil {
		log.Printf("Failed to save stats: %v", err)
	}
}

func (s *AchievementService) loadState(ctx context.Context) map[string]achievement.State {
	state := make(map[string]achievement.State)
	data, err := s.store.Get(ctx, storage.KeyAchievements)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Failed to load achievements: %v", err)
		}
		return state
	}
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("Failed to parse achievements: %v", err)
		return make(map[string]achievement.State)
	}
	return state
}

func (s *AchievementService) saveState(ctx context.Context, state map[string]achievement.State) {
	data, err := json.Marshal(state)
	if err != nil {
		log.Printf("Failed to serialize achievements: %v", err)
		return
	}
	if err := s.store.Set(ctx, storage.KeyAchievements, data); err != nil {
		log.Printf("Failed to save achievements: %v", err)
	}
}
