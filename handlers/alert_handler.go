package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"travelmateAPI/internal/alert"
	"travelmateAPI/services"

	"github.com/gorilla/mux"
)

type AlertHandler struct {
	alertService *services.AlertService
	monitor      *services.PriceMonitor
}

func NewAlertHandler(alertService *services.AlertService, monitor *services.PriceMonitor) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
		monitor:      monitor,
	}
}

// GET /api/v1/alerts
func (h *AlertHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	respondWithJSON(w, http.StatusOK, h.alertService.GetAlerts(ctx))
}

// POST /api/v1/alerts
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req alert.CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.alertService.CreateAlert(ctx, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to create alert")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// POST /api/v1/alerts/{id}/check
func (h *AlertHandler) CheckAlert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	alertID := mux.Vars(r)["id"]

	result, err := h.alertService.CheckAlert(ctx, alertID)
	if err != nil {
		if errors.Is(err, services.ErrAlertNotFound) {
			respondWithError(w, http.StatusNotFound, "Alert not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to check alert")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// DELETE /api/v1/alerts/{id}
func (h *AlertHandler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	alertID := mux.Vars(r)["id"]

	if err := h.alertService.DeleteAlert(ctx, alertID); err != nil {
		if errors.Is(err, services.ErrAlertNotFound) {
			respondWithError(w, http.StatusNotFound, "Alert not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete alert")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GET /api/v1/alerts/next-check
func (h *AlertHandler) NextCheck(w http.ResponseWriter, r *http.Request) {
	next := h.monitor.NextCheckTime()
	if next.IsZero() {
		respondWithJSON(w, http.StatusOK, map[string]any{"monitoring": false})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"monitoring": true,
		"nextCheck":  next,
	})
}
