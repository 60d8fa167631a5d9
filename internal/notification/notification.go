package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationPriceDrop    NotificationType = "price_drop"
	NotificationAchievement  NotificationType = "achievement"
	NotificationTripReminder NotificationType = "trip_reminder"
)

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"isRead"`
	Data      map[string]any   `json:"data,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

type DeviceToken struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
