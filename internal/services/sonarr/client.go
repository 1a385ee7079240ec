// Package sonarr is a minimal client for the Sonarr v3 API, covering the
// series lookup and delete calls the deletion flow needs.
package sonarr

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

// Series is a Sonarr series record.
type Series struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	TvdbID      int64  `json:"tvdbId"`
	SeasonCount int    `json:"seasonCount"`
}

// Client wraps direct Sonarr API HTTP calls.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Sonarr client.
func NewClient(baseURL, apiKey string, logger *logrus.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("sonarr URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("sonarr API key is required")
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

// LookupByTvdbID finds the Sonarr series matching a TVDB id. Returns
// (nil, nil) when Sonarr does not track the series.
func (c *Client) LookupByTvdbID(ctx context.Context, tvdbID int64) (*Series, error) {
	endpoint := fmt.Sprintf("%s/api/v3/series?tvdbId=%d", c.baseURL, tvdbID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sonarr request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sonarr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sonarr returned status %d", resp.StatusCode)
	}

	var series []Series
	if err := json.NewDecoder(resp.Body).Decode(&series); err != nil {
		return nil, fmt.Errorf("failed to decode sonarr response: %w", err)
	}

	if len(series) == 0 {
		c.logger.WithField("tvdb_id", tvdbID).Debug("Series not found in Sonarr")
		return nil, nil
	}
	return &series[0], nil
}

// DeleteSeries removes a series from Sonarr, optionally including its files
// on disk.
func (c *Client) DeleteSeries(ctx context.Context, seriesID int64, deleteFiles bool) error {
	params := url.Values{}
	params.Set("deleteFiles", strconv.FormatBool(deleteFiles))
	params.Set("addImportListExclusion", "false")
	endpoint := fmt.Sprintf("%s/api/v3/series/%d?%s", c.baseURL, seriesID, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build sonarr request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sonarr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("sonarr delete returned status %d", resp.StatusCode)
	}

	c.logger.WithFields(logrus.Fields{
		"series_id":    seriesID,
		"delete_files": deleteFiles,
	}).Info("Deleted series from Sonarr")
	return nil
}
