// Package tautulli is a client for the Tautulli v2 API, used for the Plex
// user listing and per-item watch history.
package tautulli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// User is one Plex account known to Tautulli.
type User struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Thumb    string `json:"thumb"`
	IsActive int    `json:"is_active"`
}

// HistoryRecord is one play record for a library item.
type HistoryRecord struct {
	UserID        int64   `json:"user_id"`
	User          string  `json:"user"`
	WatchedStatus float64 `json:"watched_status"`
	Date          int64   `json:"date"`
}

type apiEnvelope struct {
	Response struct {
		Result  string          `json:"result"`
		Message *string         `json:"message"`
		Data    json.RawMessage `json:"data"`
	} `json:"response"`
}

type historyData struct {
	Data []HistoryRecord `json:"data"`
}

// Client wraps direct Tautulli API HTTP calls.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Tautulli client.
func NewClient(baseURL, apiKey string, logger *logrus.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("tautulli URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("tautulli API key is required")
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// call invokes one Tautulli API command and unmarshals the data payload.
func (c *Client) call(ctx context.Context, cmd string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	params.Set("cmd", cmd)

	endpoint := c.baseURL + "/api/v2?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build tautulli request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tautulli request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tautulli returned status %d", resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode tautulli response: %w", err)
	}
	if envelope.Response.Result != "success" {
		msg := "unknown error"
		if envelope.Response.Message != nil {
			msg = *envelope.Response.Message
		}
		return fmt.Errorf("tautulli %s failed: %s", cmd, msg)
	}

	if err := json.Unmarshal(envelope.Response.Data, out); err != nil {
		return fmt.Errorf("failed to decode tautulli %s data: %w", cmd, err)
	}
	return nil
}

// GetUsers fetches the Plex account listing.
func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.call(ctx, "get_users", nil, &users); err != nil {
		return nil, err
	}

	c.logger.WithField("count", len(users)).Debug("Fetched Tautulli users")
	return users, nil
}

// GetHistory fetches per-user play records for one library item.
func (c *Client) GetHistory(ctx context.Context, ratingKey string) ([]HistoryRecord, error) {
	params := url.Values{}
	params.Set("rating_key", ratingKey)
	params.Set("length", strconv.Itoa(1000))

	var data historyData
	if err := c.call(ctx, "get_history", params, &data); err != nil {
		return nil, err
	}
	return data.Data, nil
}
