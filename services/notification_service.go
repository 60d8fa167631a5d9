package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"travelmateAPI/internal/notification"
	"travelmateAPI/internal/storage"
)

const notificationsKey = "travelmate_notifications"
const deviceTokensKey = "travelmate_device_tokens"

// PushProvider delivers a notification to registered devices. FCM is
// the production implementation; nil means in-app notifications only.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationService records price-drop, achievement, and
// trip-reminder notifications and forwards them to the push provider
// when one is configured. Delivery failures are logged, never
// propagated: a dead push channel must not break a price check.
type NotificationService struct {
	store        storage.Store
	pushProvider PushProvider
}

func NewNotificationService(store storage.Store) *NotificationService {
	return &NotificationService{store: store}
}

func (s *NotificationService) SetPushProvider(p PushProvider) {
	s.pushProvider = p
}

func (s *NotificationService) NotifyPriceDrop(ctx context.Context, origin, destination string, targetPrice, currentPrice float64) {
	s.record(ctx, notification.Notification{
		ID:      uuid.New(),
		Type:    notification.NotificationPriceDrop,
		Title:   "Price Drop Alert! ✈️",
		Message: fmt.Sprintf("%s → %s is now $%.0f (target: $%.0f)", origin, destination, currentPrice, targetPrice),
		Data: map[string]any{
			"origin":       origin,
			"destination":  destination,
			"currentPrice": currentPrice,
			"targetPrice":  targetPrice,
		},
		CreatedAt: time.Now(),
	})
}

func (s *NotificationService) NotifyAchievement(ctx context.Context, title, description string, points int) {
	s.record(ctx, notification.Notification{
		ID:        uuid.New(),
		Type:      notification.NotificationAchievement,
		Title:     "Achievement Unlocked! 🏆",
		Message:   fmt.Sprintf("%s: %s (+%d pts)", title, description, points),
		Data:      map[string]any{"points": points},
		CreatedAt: time.Now(),
	})
}

func (s *NotificationService) NotifyTripReminder(ctx context.Context, tripName string, startDate string) {
	s.record(ctx, notification.Notification{
		ID:        uuid.New(),
		Type:      notification.NotificationTripReminder,
		Title:     "Upcoming Trip 🌍",
		Message:   fmt.Sprintf("%s starts on %s", tripName, startDate),
		CreatedAt: time.Now(),
	})
}

// GetNotifications returns stored notifications, newest first.
func (s *NotificationService) GetNotifications(ctx context.Context) []notification.Notification {
	items := s.loadAll(ctx)
	// Stored in append order; reverse for newest-first.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

func (s *NotificationService) MarkAllRead(ctx context.Context) {
	items := s.loadAll(ctx)
	for i := range items {
		items[i].IsRead = true
	}
	s.saveAll(ctx, items)
}

// RegisterDevice stores a push token for the push provider.
func (s *NotificationService) RegisterDevice(ctx context.Context, token notification.DeviceToken) error {
	if token.Token == "" {
		return fmt.Errorf("%w: device token is required", ErrInvalidInput)
	}
	tokens := s.loadTokens(ctx)
	for _, t := range tokens {
		if t.Token == token.Token {
			return nil
		}
	}
	tokens = append(tokens, token)
	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("serialize device tokens: %w", err)
	}
	if err := s.store.Set(ctx, deviceTokensKey, data); err != nil {
		return fmt.Errorf("save device tokens: %w", err)
	}
	return nil
}

func (s *NotificationService) record(ctx context.Context, n notification.Notification) {
	items := append(s.loadAll(ctx), n)
	s.saveAll(ctx, items)

	if s.pushProvider == nil {
		return
	}
	tokens := s.loadTokens(ctx)
	if err := s.pushProvider.SendPush(ctx, tokens, n.Title, n.Message, n.Data); err != nil {
		log.Printf("Push delivery failed for %s: %v", n.Type, err)
	}
}

func (s *NotificationService) loadAll(ctx context.Context) []notification.Notification {
	items := []notification.Notification{}
	data, err := s.store.Get(ctx, notificationsKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Failed to load notifications: %v", err)
		}
		return items
	}
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("Failed to parse notifications: %v", err)
		return []notification.Notification{}
	}
	return items
}

func (s *NotificationService) saveAll(ctx context.Context, items []notification.Notification) {
	data, err := json.Marshal(items)
	if err != nil {
		log.Printf("Failed to serialize notifications: %v", err)
		return
	}
	if err := s.store.Set(ctx, notificationsKey, data); err != nil {
		log.Printf("Failed to save notifications: %v", err)
	}
}

func (s *NotificationService) loadTokens(ctx context.Context) []notification.DeviceToken {
	tokens := []notification.DeviceToken{}
	data, err := s.store.Get(ctx, deviceTokensKey)
	if err != nil {
		return tokens
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		log.Printf("Failed to parse device tokens: %v", err)
		return []notification.DeviceToken{}
	}
	return tokens
}
