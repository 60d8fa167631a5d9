package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultAmadeusBaseURL = "https://test.api.amadeus.com"

// AmadeusProvider queries the Amadeus flight-offers search API. A
// client-credentials token is fetched lazily and cached until shortly
// before expiry.
type AmadeusProvider struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Client       *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewAmadeusProvider(baseURL, clientID, clientSecret string) *AmadeusProvider {
	if baseURL == "" {
		baseURL = defaultAmadeusBaseURL
	}
	return &AmadeusProvider{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Client:       &http.Client{Timeout: 15 * time.Second},
	}
}

type offersResponse struct {
	Data []struct {
		Price struct {
			Total string `json:"total"`
		} `json:"price"`
	} `json:"data"`
}

func (p *AmadeusProvider) FetchPrice(ctx context.Context, origin, destination, date string) (float64, error) {
	token, err := p.token(ctx)
	if err != nil {
		return 0, err
	}

	q := url.Values{}
	q.Set("originLocationCode", origin)
	q.Set("destinationLocationCode", destination)
	q.Set("departureDate", date)
	q.Set("adults", "1")
	q.Set("max", "1")

	endpoint := p.BaseURL + "/v2/shopping/flight-offers?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build offers request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch offers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("offers request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload offersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode offers: %w", err)
	}
	if len(payload.Data) == 0 || payload.Data[0].Price.Total == "" {
		return 0, ErrNoOffer
	}

	price, err := strconv.ParseFloat(payload.Data[0].Price.Total, 64)
	if err != nil {
		return 0, fmt.Errorf("parse offer price %q: %w", payload.Data[0].Price.Total, err)
	}
	return price, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (p *AmadeusProvider) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.ClientID)
	form.Set("client_secret", p.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.BaseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed: status %d", resp.StatusCode)
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	p.accessToken = payload.AccessToken
	// Renew a minute early to avoid using a token that expires mid-request.
	p.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn-60) * time.Second)
	return p.accessToken, nil
}
