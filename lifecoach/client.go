package lifecoach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/goodkarma/goodkarma/config"
)

// Client talks to the external life-coach service. Calls through one client
// are spaced at least a second apart as a courtesy to the upstream; the
// monthly budget is enforced elsewhere.
type Client struct {
	baseURL string
	apiKey  string
	apiHost string
	http    *http.Client
	limiter *rate.Limiter
}

// New builds a Client from application configuration.
func New(cfg config.AppConfig) *Client {
	return &Client{
		baseURL: cfg.LifeCoachBaseURL,
		apiKey:  cfg.LifeCoachAPIKey,
		apiHost: cfg.LifeCoachAPIHost,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// GetLifeAdvice requests a fresh advice document.
func (c *Client) GetLifeAdvice(ctx context.Context, body map[string]any) (map[string]any, error) {
	return c.post(ctx, "/getLifeAdvice", body)
}

// UpdateProgress submits a progress update and returns the assessment.
func (c *Client) UpdateProgress(ctx context.Context, body map[string]any) (map[string]any, error) {
	return c.post(ctx, "/updateProgress", body)
}

func (c *Client) post(ctx context.Context, path string, body map[string]any) (map[string]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("life coach request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("life coach status %d: %s", resp.StatusCode, raw)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	// The synchronous contract has no follow-up poll, so a queued answer is
	// unusable and reported as a failure.
	if s, _ := out["status"].(string); s == "queued" {
		return nil, fmt.Errorf("life coach returned queued status")
	}
	return out, nil
}
