package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"travelmateAPI/internal/trip"
	"travelmateAPI/services"

	"github.com/gorilla/mux"
)

type TripHandler struct {
	tripService *services.TripService
}

func NewTripHandler(tripService *services.TripService) *TripHandler {
	return &TripHandler{
		tripService: tripService,
	}
}

// GET /api/v1/trips
func (h *TripHandler) GetTrips(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	respondWithJSON(w, http.StatusOK, h.tripService.GetTrips(ctx))
}

// POST /api/v1/trips
func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req trip.CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.tripService.CreateTrip(ctx, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to create trip")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// PUT /api/v1/trips/{id}
func (h *TripHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var updated trip.Trip
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	updated.ID = mux.Vars(r)["id"]

	result, err := h.tripService.UpdateTrip(ctx, &updated)
	if err != nil {
		if errors.Is(err, services.ErrTripNotFound) {
			respondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to update trip")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// DELETE /api/v1/trips/{id}
func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.tripService.DeleteTrip(ctx, mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, services.ErrTripNotFound) {
			respondWithError(w, http.StatusNotFound, "Trip not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete trip")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// POST /api/v1/trips/{id}/activities
func (h *TripHandler) AddActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req trip.AddActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	activity, err := h.tripService.AddActivity(ctx, mux.Vars(r)["id"], &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTripNotFound):
			respondWithError(w, http.StatusNotFound, "Trip not found")
		case errors.Is(err, services.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to add activity")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, activity)
}

// DELETE /api/v1/trips/{id}/activities/{activityId}
func (h *TripHandler) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	vars := mux.Vars(r)
	if err := h.tripService.RemoveActivity(ctx, vars["id"], vars["activityId"]); err != nil {
		if errors.Is(err, services.ErrTripNotFound) {
			respondWithError(w, http.StatusNotFound, "Trip or activity not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to remove activity")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
