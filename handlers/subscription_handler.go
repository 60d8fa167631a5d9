package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"travelmateAPI/services"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// POST /api/create-checkout-session
func (h *SubscriptionHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var req struct {
		Email      string `json:"email"`
		SuccessURL string `json:"successUrl"`
		CancelURL  string `json:"cancelUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.subscriptionService.CreateCheckoutSession(ctx, req.Email, req.SuccessURL, req.CancelURL)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Checkout session error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create checkout session")
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

// POST /api/verify-subscription
func (h *SubscriptionHandler) VerifySubscription(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.subscriptionService.VerifySubscription(ctx, req.Email)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Verify subscription error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to verify subscription")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// POST /api/cancel-subscription
func (h *SubscriptionHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var req struct {
		SessionToken string `json:"sessionToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.subscriptionService.CancelSubscription(ctx, req.SessionToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrNoActiveSubscription):
			respondWithError(w, http.StatusNotFound, "No active subscription found")
		default:
			log.Printf("Cancel subscription error: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to cancel subscription")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// POST /api/create-portal-session
func (h *SubscriptionHandler) CreatePortalSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var req struct {
		SessionToken string `json:"sessionToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	url, err := h.subscriptionService.CreatePortalSession(ctx, req.SessionToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Portal session error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create portal session")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"url": url})
}
