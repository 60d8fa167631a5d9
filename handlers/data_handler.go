package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"travelmateAPI/services"
)

type DataHandler struct {
	persistence *services.PersistenceService
}

func NewDataHandler(persistence *services.PersistenceService) *DataHandler {
	return &DataHandler{
		persistence: persistence,
	}
}

// GET /api/v1/data/export - Full backup of trips, alerts, profile,
// achievements, and stats
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	data, err := h.persistence.Export(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="travelmate-backup.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// POST /api/v1/data/import
func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 10<<20))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Error reading body")
		return
	}

	if err := h.persistence.Import(ctx, body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid backup file")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DELETE /api/v1/data
func (h *DataHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	h.persistence.ClearAll(ctx)
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
