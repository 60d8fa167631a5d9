package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"travelmateAPI/internal/pricing"
	"travelmateAPI/services"
)

type PriceHandler struct {
	quoteService *services.QuoteService
}

func NewPriceHandler(quoteService *services.QuoteService) *PriceHandler {
	return &PriceHandler{
		quoteService: quoteService,
	}
}

// POST /api/prices - Batch price lookup for "ORIGIN|DEST" or
// "ORIGIN|DEST|DATE" route strings
func (h *PriceHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	var req pricing.PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Routes array required")
		return
	}
	if req.Routes == nil {
		respondWithError(w, http.StatusBadRequest, "Routes array required")
		return
	}

	prices := h.quoteService.GetPrices(ctx, req.Routes)
	respondWithJSON(w, http.StatusOK, pricing.PriceResponse{Prices: prices})
}

// GET /health - Liveness probe with cache occupancy
func (h *PriceHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"cacheSize": h.quoteService.CacheSize(),
	})
}
