package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"travelmateAPI/internal/notification"
	"travelmateAPI/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GET /api/v1/notifications
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	respondWithJSON(w, http.StatusOK, h.notificationService.GetNotifications(ctx))
}

// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h.notificationService.MarkAllRead(ctx)
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// POST /api/v1/notifications/devices
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var token notification.DeviceToken
	if err := json.NewDecoder(r.Body).Decode(&token); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if token.Token == "" {
		respondWithError(w, http.StatusBadRequest, "Token is required")
		return
	}

	if err := h.notificationService.RegisterDevice(ctx, token); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to register device")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]bool{"success": true})
}
