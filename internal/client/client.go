// Package client provides an HTTP client for the docchat server API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Client talks to a docchat server with basic-auth credentials.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// New creates a client. If baseURL is empty, uses the DOCCHAT_SERVER_URL
// env var or defaults to localhost:5000. Credentials fall back to the
// AUTH_USERNAME / AUTH_PASSWORD variables the server reads.
func New(baseURL, username, password string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("DOCCHAT_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	if username == "" {
		username = envOr("AUTH_USERNAME", "admin")
	}
	if password == "" {
		password = envOr("AUTH_PASSWORD", "changeme")
	}

	timeout := 5 * time.Minute // Long default: completion calls are slow.
	if t := os.Getenv("DOCCHAT_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ChatResult is the server's chat response.
type ChatResult struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Storage        string `json:"storage"`
}

// Chat sends one message in the given conversation.
func (c *Client) Chat(ctx context.Context, conversationID, message string) (*ChatResult, error) {
	var result ChatResult
	err := c.post(ctx, "/api/chat", map[string]string{
		"message":         message,
		"conversation_id": conversationID,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ResetResult is the server's reset response.
type ResetResult struct {
	Message string `json:"message"`
	Storage string `json:"storage"`
}

// Reset clears the given conversation.
func (c *Client) Reset(ctx context.Context, conversationID string) (*ResetResult, error) {
	var result ResetResult
	err := c.post(ctx, "/api/reset", map[string]string{
		"conversation_id": conversationID,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchHit is one document match.
type SearchHit struct {
	Title string `json:"title"`
	Chunk string `json:"chunk"`
}

// Search runs a raw document lookup against the server's index.
func (c *Client) Search(ctx context.Context, query string) ([]SearchHit, error) {
	var result struct {
		Results []SearchHit `json:"results"`
	}
	err := c.post(ctx, "/api/search", map[string]string{"query": query}, &result)
	if err != nil {
		return nil, err
	}
	return result.Results, nil
}

// Health is the server's health report.
type Health struct {
	Status     string `json:"status"`
	Redis      string `json:"redis"`
	Completion string `json:"completion"`
	Search     string `json:"search"`
}

// HealthCheck queries the unauthenticated health endpoint.
func (c *Client) HealthCheck(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var health Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &health, nil
}

// apiError is the server's error payload.
type apiError struct {
	Error string `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, payload, result any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error: %s", apiErr.Error)
		}
		return fmt.Errorf("server error: %s - %s", resp.Status, string(body))
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
