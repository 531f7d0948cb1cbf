// Jamendo API implementation of [Catalog]
//
// Jamendo API response types based on https://developer.jamendo.com/v3.0
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/outofbits/ccatalog/internal/shared"
	"golang.org/x/time/rate"
)

const (
	jamendoBaseURL = "https://api.jamendo.com/v3.0"
	statusSuccess  = "success"
)

// JamendoService implements [Catalog] for the Jamendo REST API. All calls are
// authenticated with a static client id and throttled through a shared rate
// limiter so exhaustive pagination stays inside the API quota.
type JamendoService struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewJamendoService creates a JamendoService from catalog configuration.
// Returns an error when no client id is configured.
func NewJamendoService(cfg shared.CatalogConfig, logger *log.Logger) (*JamendoService, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: catalog client_id", shared.ErrMissingCredentials)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = jamendoBaseURL
	}

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 5.0
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &JamendoService{
		baseURL:    baseURL,
		clientID:   cfg.ClientID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(limit), 1),
		logger:     shared.WithLogger(logger, "service", "jamendo"),
	}, nil
}

// SetHTTPClient overrides the underlying HTTP client. Used by tests.
func (s *JamendoService) SetHTTPClient(client *http.Client) {
	s.httpClient = client
}

// Name returns the catalog provider name.
func (s *JamendoService) Name() string {
	return "Jamendo"
}

// Call performs a GET request against the named catalog resource. Credentials
// and the JSON format flag are injected last so callers cannot override them.
func (s *JamendoService) Call(ctx context.Context, resource string, params url.Values) (*Envelope, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRemoteCall, err)
	}

	query := url.Values{}
	for key, values := range params {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	query.Set("client_id", s.clientID)
	query.Set("format", "json")

	apiURL := s.baseURL + "/" + resource + "/?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("calling catalog", "resource", resource, "offset", params.Get("offset"))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRemoteCall, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrRemoteCall, resp.StatusCode)
	}

	// Pointer fields make an absent headers or results key distinguishable
	// from an empty one. An absent results key must not read as an empty
	// final page to the harvester.
	var wire struct {
		Headers *Headers           `json:"headers"`
		Results *[]json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProtocol, err)
	}

	if wire.Headers == nil {
		return nil, fmt.Errorf("%w: missing headers object", shared.ErrProtocol)
	}
	if wire.Results == nil {
		return nil, fmt.Errorf("%w: missing results array", shared.ErrProtocol)
	}
	if wire.Headers.Status == "" {
		return nil, fmt.Errorf("%w: missing status header", shared.ErrProtocol)
	}
	if wire.Headers.Status != statusSuccess {
		return nil, fmt.Errorf("%w: %s (code %d)", shared.ErrRemoteCall, wire.Headers.ErrorMessage, wire.Headers.Code)
	}

	return &Envelope{Headers: *wire.Headers, Results: *wire.Results}, nil
}
