// Package client provides the HTTP client for the insurer aggregation backend.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"insurance_portal_backend/platform/config"
	"insurance_portal_backend/platform/logger"
)

const (
	// OrderHashHeader scopes a call to a quoting session.
	OrderHashHeader = "X-Order-Hash"

	maxBodyBytes = 4 << 20
)

// Client is the HTTP client for the aggregation backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     *tokenSource
	log        *logger.Logger
}

// New creates a new aggregation backend client.
func New(cfg config.AggregatorConfig, log *logger.Logger) *Client {
	httpClient := &http.Client{Timeout: cfg.GetAggregatorTimeout()}
	baseURL := strings.TrimRight(cfg.GetAggregatorBaseURL(), "/")

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		tokens: &tokenSource{
			httpClient: httpClient,
			baseURL:    baseURL,
			username:   cfg.GetAggregatorUsername(),
			password:   cfg.GetAggregatorPassword(),
			now:        time.Now,
		},
		log: log,
	}
}

// Get performs a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path, orderHash string, out any) error {
	return c.do(ctx, http.MethodGet, path, orderHash, nil, out)
}

// Post encodes body as JSON, performs a POST and decodes the response into out.
func (c *Client) Post(ctx context.Context, path, orderHash string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, orderHash, body, out)
}

func (c *Client) do(ctx context.Context, method, path, orderHash string, body, out any) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, method, path, orderHash, body, out)
	c.log.WithContext(ctx).UpstreamCall(method, path, status, float64(time.Since(start).Milliseconds()), err)
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path, orderHash string, body, out any) (int, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return 0, fmt.Errorf("authenticate: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if orderHash != "" {
		req.Header.Set(OrderHashHeader, orderHash)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// The next call logs in again; this one is not replayed since order
		// creation must not be sent twice.
		c.tokens.Invalidate()
		return resp.StatusCode, &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: raw}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return resp.StatusCode, &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: raw}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
