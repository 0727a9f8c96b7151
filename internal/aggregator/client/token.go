package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

const (
	loginPath = "/auth/login"
	// refreshSkew renews the token slightly before it actually expires.
	refreshSkew = 30 * time.Second
	// defaultTokenLifetime applies when the token carries no exp claim.
	defaultTokenLifetime = 15 * time.Minute
)

// tokenSource logs in with the service account and caches the bearer token
// until shortly before its exp claim.
type tokenSource struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
}

// Token returns a valid bearer token, logging in when needed.
func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Add(refreshSkew).Before(s.expiresAt) {
		return s.token, nil
	}

	token, err := s.login(ctx)
	if err != nil {
		return "", err
	}

	s.token = token
	s.expiresAt = s.expiry(token)
	return s.token, nil
}

// Invalidate forgets the cached token so the next call logs in again.
func (s *tokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}

func (s *tokenSource) login(ctx context.Context) (string, error) {
	payload, err := json.Marshal(loginRequest{Username: s.username, Password: s.password})
	if err != nil {
		return "", fmt.Errorf("encode login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+loginPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Method: http.MethodPost, Path: loginPath, Status: resp.StatusCode, Body: body}
	}

	var parsed loginResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}

	token := strings.TrimSpace(parsed.Token)
	if token == "" {
		token = strings.TrimSpace(parsed.AccessToken)
	}
	if token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return token, nil
}

// expiry reads the exp claim without verifying the signature. The token is
// only forwarded to the backend that issued it, which does the verification.
func (s *tokenSource) expiry(token string) time.Time {
	fallback := s.now().Add(defaultTokenLifetime)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fallback
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	return exp.Time
}
