// Package radarr is a minimal client for the Radarr v3 API, covering the
// movie lookup and delete calls the deletion flow needs.
package radarr

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

// Movie is a Radarr movie record.
type Movie struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	TmdbID int64  `json:"tmdbId"`
}

// Client wraps direct Radarr API HTTP calls.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Radarr client.
func NewClient(baseURL, apiKey string, logger *logrus.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("radarr URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("radarr API key is required")
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

// LookupByTmdbID finds the Radarr movie matching a TMDB id. Returns
// (nil, nil) when Radarr does not track the movie.
func (c *Client) LookupByTmdbID(ctx context.Context, tmdbID int64) (*Movie, error) {
	endpoint := fmt.Sprintf("%s/api/v3/movie?tmdbId=%d", c.baseURL, tmdbID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build radarr request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("radarr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("radarr returned status %d", resp.StatusCode)
	}

	var movies []Movie
	if err := json.NewDecoder(resp.Body).Decode(&movies); err != nil {
		return nil, fmt.Errorf("failed to decode radarr response: %w", err)
	}

	if len(movies) == 0 {
		c.logger.WithField("tmdb_id", tmdbID).Debug("Movie not found in Radarr")
		return nil, nil
	}
	return &movies[0], nil
}

// DeleteMovie removes a movie from Radarr, optionally including its files
// on disk.
func (c *Client) DeleteMovie(ctx context.Context, movieID int64, deleteFiles bool) error {
	params := url.Values{}
	params.Set("deleteFiles", strconv.FormatBool(deleteFiles))
	params.Set("addImportExclusion", "false")
	endpoint := fmt.Sprintf("%s/api/v3/movie/%d?%s", c.baseURL, movieID, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build radarr request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("radarr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("radarr delete returned status %d", resp.StatusCode)
	}

	c.logger.WithFields(logrus.Fields{
		"movie_id":     movieID,
		"delete_files": deleteFiles,
	}).Info("Deleted movie from Radarr")
	return nil
}
