package osonkassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

const loginTimeout = 10 * time.Second

// Session holds the cached bearer token for the POS API. The token is
// process-wide shared state: only Session mutates it (on login success or on
// a 401-triggered invalidation), everything else reads it through Get.
type Session struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	tenantID   string

	mu    sync.Mutex
	token string
}

// NewSession creates a session manager for the given POS tenant.
func NewSession(baseURL, username, password, tenantID string) *Session {
	return &Session{
		httpClient: &http.Client{Timeout: loginTimeout},
		baseURL:    baseURL,
		username:   username,
		password:   password,
		tenantID:   tenantID,
	}
}

// Get returns the cached token, or "" when no valid session is known.
func (s *Session) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Invalidate drops the cached token so the next Ensure re-authenticates.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// Ensure returns a valid token, logging in first if none is cached. Callers
// must treat an error as fatal for the current resource's sync run.
func (s *Session) Ensure(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}

	token, err := s.login(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	log.Printf("OsonKassa session: login successful")
	return token, nil
}

func (s *Session) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(loginRequest{UserName: s.username, Password: s.password})
	if err != nil {
		return "", fmt.Errorf("failed to encode login request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("tenantId", s.tenantID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrLoginFailed
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("login: unexpected status %d: %s", resp.StatusCode, string(b))
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if lr.Token == "" {
		return "", ErrLoginFailed
	}
	return lr.Token, nil
}
