package modena

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"modena-payment-service/internal/domain/model"
	"modena-payment-service/internal/domain/ports/adapter"
	"modena-payment-service/internal/infra/metrics"
)

const (
	sandboxBaseURL = "https://api-sandbox.modena.ee"
	liveBaseURL    = "https://api.modena.ee"

	tokenPath       = "/oauth/token"
	applicationPath = "/api/merchant/applications"
)

var _ adapter.ProcessorClient = (*Client)(nil)

// Client talks to the Modena financing API over HTTP.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	userAgent    string
	httpClient   *http.Client
	log          *zerolog.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// New creates a Modena API client for the sandbox or live environment.
func New(clientID, clientSecret, userAgent string, sandbox bool, logger *zerolog.Logger) *Client {
	baseURL := liveBaseURL
	if sandbox {
		baseURL = sandboxBaseURL
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		userAgent:    userAgent,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		log:          logger,
	}
}

type submitResponse struct {
	ApplicationID    string `json:"applicationId"`
	RedirectLocation string `json:"redirectLocation"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// SubmitApplication posts a financing application to the endpoint selected by
// the gateway variant and returns the application id and redirect location.
func (c *Client) SubmitApplication(ctx context.Context, endpoint model.Endpoint, req *model.ProcessorRequest) (*model.ApplicationResult, error) {
	path := fmt.Sprintf("%s/%s", applicationPath, endpoint)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal application request: %w", err)
	}

	var out submitResponse
	if err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body), &out); err != nil {
		return nil, err
	}

	return &model.ApplicationResult{
		ApplicationID:    out.ApplicationID,
		RedirectLocation: out.RedirectLocation,
	}, nil
}

// ApplicationStatus queries the current lifecycle status of an application.
func (c *Client) ApplicationStatus(ctx context.Context, applicationID string) (model.ApplicationStatus, error) {
	if applicationID == "" {
		return "", fmt.Errorf("application status: empty application id")
	}
	path := fmt.Sprintf("%s/%s/status", applicationPath, url.PathEscape(applicationID))

	var out statusResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return model.ApplicationStatus(out.Status), nil
}

// ParseCallback decodes the form-encoded body Modena posts to the callback
// routes. The result is untrusted; validation happens against stored order
// metadata.
func (c *Client) ParseCallback(body []byte) (*model.ProcessorResponse, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse callback body: %w", err)
	}
	return &model.ProcessorResponse{
		ApplicationID: values.Get("applicationId"),
		OrderID:       values.Get("orderId"),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", ulid.Make().String())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveProcessorRequest(path, "error", time.Since(start))
		return fmt.Errorf("modena %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveProcessorRequest(path, "error", time.Since(start))
		return fmt.Errorf("modena %s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveProcessorRequest(path, fmt.Sprintf("http_%d", resp.StatusCode), time.Since(start))
		return fmt.Errorf("modena %s %s: status %d, body: %s", method, path, resp.StatusCode, string(raw))
	}
	metrics.ObserveProcessorRequest(path, "ok", time.Since(start))

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("modena %s %s: unmarshal response: %w, body: %s", method, path, err, string(raw))
		}
	}
	return nil
}

// accessToken returns a cached client-credentials token, refreshing it when
// it is within 30 seconds of expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.tokenExp) > 30*time.Second {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("modena token request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("modena token request: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("modena token request: status %d, body: %s", resp.StatusCode, string(raw))
	}

	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", fmt.Errorf("modena token request: unmarshal: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("modena token request: empty access_token")
	}

	c.token = tok.AccessToken
	c.tokenExp = tokenExpiry(tok)
	c.log.Debug().Time("expires_at", c.tokenExp).Msg("modena access token refreshed")
	return c.token, nil
}

// tokenExpiry prefers the exp claim inside the JWT access token and falls
// back to expires_in. The token is opaque to us otherwise; we never verify
// its signature, only read when it stops being valid.
func tokenExpiry(tok tokenResponse) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	if tok.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return time.Now().Add(5 * time.Minute)
}
