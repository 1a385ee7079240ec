// Package overseerr is a client for the Overseerr API: the paginated
// request listing the sync reconciler mirrors, the per-title detail lookup,
// and the request deletion used by the deletion flow.
package overseerr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"shelflife/internal/models"
)

const pageSize = 100

// Request is one Overseerr media request.
type Request struct {
	ID          int64        `json:"id"`
	CreatedAt   time.Time    `json:"createdAt"`
	Media       Media        `json:"media"`
	Seasons     []Season     `json:"seasons"`
	RequestedBy *RequestedBy `json:"requestedBy"`
}

// Media is the media record attached to a request.
type Media struct {
	ID        int64   `json:"id"`
	MediaType string  `json:"mediaType"`
	TmdbID    *int64  `json:"tmdbId"`
	TvdbID    *int64  `json:"tvdbId"`
	RatingKey *string `json:"ratingKey"`
	Status    int     `json:"status"`
}

// Season is one requested season of a TV request.
type Season struct {
	SeasonNumber int `json:"seasonNumber"`
}

// RequestedBy identifies the requesting Plex account. Nil when the account
// no longer exists.
type RequestedBy struct {
	PlexID       int64  `json:"plexId"`
	PlexUsername string `json:"plexUsername"`
}

// MediaDetails is the per-title metadata from the movie/tv detail endpoint.
type MediaDetails struct {
	Title           string `json:"title"`
	Name            string `json:"name"`
	PosterPath      string `json:"posterPath"`
	Overview        string `json:"overview"`
	NumberOfSeasons int    `json:"numberOfSeasons"`
}

// DisplayTitle returns the title field appropriate to the media kind
// (movies use title, shows use name).
func (d *MediaDetails) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

type requestPage struct {
	PageInfo struct {
		Pages   int `json:"pages"`
		Results int `json:"results"`
	} `json:"pageInfo"`
	Results []Request `json:"results"`
}

// Client wraps direct Overseerr API HTTP calls.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Overseerr client.
func NewClient(baseURL, apiKey string, logger *logrus.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("overseerr URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("overseerr API key is required")
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

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build overseerr request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("overseerr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("overseerr returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode overseerr response: %w", err)
	}
	return nil
}

// GetAllRequests fetches every request, walking the paginated listing.
func (c *Client) GetAllRequests(ctx context.Context) ([]Request, error) {
	var all []Request

	for skip := 0; ; skip += pageSize {
		var page requestPage
		path := fmt.Sprintf("/api/v1/request?take=%d&skip=%d", pageSize, skip)
		if err := c.get(ctx, path, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Results...)
		if len(page.Results) < pageSize {
			break
		}
	}

	c.logger.WithField("count", len(all)).Debug("Fetched Overseerr requests")
	return all, nil
}

// GetMediaDetails fetches title metadata for a TMDB id, using the endpoint
// matching the media kind.
func (c *Client) GetMediaDetails(ctx context.Context, tmdbID int64, mediaType string) (*MediaDetails, error) {
	var path string
	switch mediaType {
	case models.MediaTypeMovie:
		path = fmt.Sprintf("/api/v1/movie/%d", tmdbID)
	case models.MediaTypeTV:
		path = fmt.Sprintf("/api/v1/tv/%d", tmdbID)
	default:
		return nil, fmt.Errorf("unsupported media type: %s", mediaType)
	}

	var details MediaDetails
	if err := c.get(ctx, path, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// DeleteMediaRequest removes a request from Overseerr.
func (c *Client) DeleteMediaRequest(ctx context.Context, requestID int64) error {
	path := fmt.Sprintf("/api/v1/request/%d", requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build overseerr request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("overseerr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("overseerr delete returned status %d", resp.StatusCode)
	}

	c.logger.WithField("request_id", requestID).Info("Deleted request from Overseerr")
	return nil
}

// StatusFromCode maps Overseerr's numeric media status to the local status
// enum.
func StatusFromCode(code int) string {
	switch code {
	case 2:
		return models.StatusPending
	case 3:
		return models.StatusProcessing
	case 4:
		return models.StatusPartial
	case 5:
		return models.StatusAvailable
	default:
		return models.StatusUnknown
	}
}
