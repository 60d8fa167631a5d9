package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelmateAPI/internal/pricing"
	"travelmateAPI/services"
)

type staticProvider struct {
	price float64
}

func (p staticProvider) FetchPrice(ctx context.Context, origin, destination, date string) (float64, error) {
	return p.price, nil
}

func newPriceHandler() *PriceHandler {
	return NewPriceHandler(services.NewQuoteService(staticProvider{price: 420}, time.Hour))
}

func TestGetPricesRequiresRoutesArray(t *testing.T) {
	h := newPriceHandler()

	for _, body := range []string{`{}`, `not json`, `{"routes": null}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/prices", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		h.GetPrices(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
	}
}

func TestGetPricesReturnsRouteKeyedMap(t *testing.T) {
	h := newPriceHandler()

	body, _ := json.Marshal(pricing.PriceRequest{Routes: []string{"JFK|LHR|2026-09-10"}})
	req := httptest.NewRequest(http.MethodPost, "/api/prices", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.GetPrices(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp pricing.PriceResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Contains(t, resp.Prices, "JFK-LHR")
	require.NotNil(t, resp.Prices["JFK-LHR"])
	assert.Equal(t, 420.0, *resp.Prices["JFK-LHR"])
}

func TestGetPricesEmptyArrayIsValid(t *testing.T) {
	h := newPriceHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/prices", bytes.NewBufferString(`{"routes": []}`))
	rr := httptest.NewRecorder()
	h.GetPrices(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp pricing.PriceResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Prices)
}

func TestHealthReportsCacheSize(t *testing.T) {
	h := newPriceHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.Health(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Status    string `json:"status"`
		CacheSize int    `json:"cacheSize"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Zero(t, resp.CacheSize)
}
