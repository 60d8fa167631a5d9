package handlers

import (
	"context"
	"net/http"
	"time"

	"travelmateAPI/services"

	"github.com/gorilla/mux"
)

type HistoryHandler struct {
	historyService *services.HistoryService
}

func NewHistoryHandler(historyService *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
	}
}

// GET /api/v1/history/routes
func (h *HistoryHandler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	respondWithJSON(w, http.StatusOK, map[string][]string{
		"routes": h.historyService.GetAllRoutes(ctx),
	})
}

// GET /api/v1/history/{origin}/{destination}
func (h *HistoryHandler) GetRouteHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	vars := mux.Vars(r)
	respondWithJSON(w, http.StatusOK, h.historyService.GetRouteHistory(ctx, vars["origin"], vars["destination"]))
}

// GET /api/v1/history/{origin}/{destination}/chart
func (h *HistoryHandler) GetChartData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	vars := mux.Vars(r)
	respondWithJSON(w, http.StatusOK, h.historyService.GetChartData(ctx, vars["origin"], vars["destination"]))
}

// GET /api/v1/history/{origin}/{destination}/prediction?date=2026-09-15
func (h *HistoryHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	vars := mux.Vars(r)

	targetDate := time.Now().AddDate(0, 0, 7)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		targetDate = parsed
	}

	predicted, ok := h.historyService.GetPricePrediction(ctx, vars["origin"], vars["destination"], targetDate)
	if !ok {
		respondWithJSON(w, http.StatusOK, map[string]any{"available": false})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"available":      true,
		"predictedPrice": predicted,
		"targetDate":     targetDate.Format("2006-01-02"),
	})
}

// DELETE /api/v1/history/{origin}/{destination}
func (h *HistoryHandler) ClearRouteHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	vars := mux.Vars(r)
	h.historyService.ClearRouteHistory(ctx, vars["origin"], vars["destination"])
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
