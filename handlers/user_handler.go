package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"travelmateAPI/internal/user"
	"travelmateAPI/services"
)

type UserHandler struct {
	userService        *services.UserService
	achievementService *services.AchievementService
}

func NewUserHandler(userService *services.UserService, achievementService *services.AchievementService) *UserHandler {
	return &UserHandler{
		userService:        userService,
		achievementService: achievementService,
	}
}

// GET /api/v1/user
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	respondWithJSON(w, http.StatusOK, h.userService.GetUser(ctx))
}

// PUT /api/v1/user
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.userService.UpdateUser(ctx, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// GET /api/v1/achievements
func (h *UserHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	respondWithJSON(w, http.StatusOK, h.achievementService.GetAchievements(ctx))
}

// GET /api/v1/achievements/summary
func (h *UserHandler) GetAchievementSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	respondWithJSON(w, http.StatusOK, h.achievementService.GetAchievementSummary(ctx))
}

// GET /api/v1/stats
func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	respondWithJSON(w, http.StatusOK, h.achievementService.GetStats(ctx))
}

// POST /api/v1/check-in - Daily streak bump, also evaluates the
// time-of-day achievements
func (h *UserHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h.achievementService.CheckDailyStreak(ctx)
	respondWithJSON(w, http.StatusOK, h.achievementService.GetStats(ctx))
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
