package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrAuthExpired - the api rejected the bearer token; the caller is
// expected to refresh the token and retry exactly once.
var ErrAuthExpired = errors.New("strava rejected the access token")

// APIError - any other non-success response, surfaced verbatim.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("strava api error: status %d: %s", e.Status, e.Body)
}

type Client struct {
	baseURL    string
	perPage    int
	httpClient *http.Client
}

func NewClient(baseURL string, perPage int, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		perPage:    perPage,
		httpClient: httpClient,
	}
}

// GetActivities fetches all activities in (after, before), paging through
// the athlete activities endpoint until a short or empty page signals the
// end of data. Activities come back in api order (reverse-chronological).
func (c *Client) GetActivities(ctx context.Context, accessToken string, after, before time.Time) ([]Activity, error) {
	var all []Activity

	for page := 1; ; page++ {
		activities, err := c.getActivitiesPage(ctx, accessToken, after, before, page)
		if err != nil {
			return nil, err
		}

		all = append(all, activities...)
		log.Debugf("activities page %d: %d items", page, len(activities))

		if len(activities) < c.perPage {
			break
		}
	}

	return all, nil
}

func (c *Client) getActivitiesPage(ctx context.Context, accessToken string, after, before time.Time, page int) ([]Activity, error) {
	activitiesURL := fmt.Sprintf(
		"%s/athlete/activities?after=%d&before=%d&page=%d&per_page=%d",
		c.baseURL, after.Unix(), before.Unix(), page, c.perPage,
	)
	log.Debugf("calling strava api: %s", activitiesURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, activitiesURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read strava api response bytes: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrAuthExpired
	case resp.StatusCode != http.StatusOK:
		return nil, &APIError{Status: resp.StatusCode, Body: string(respBytes)}
	}

	var activities []Activity
	if err := json.Unmarshal(respBytes, &activities); err != nil {
		return nil, fmt.Errorf("unmarshal strava api response bytes: %w", err)
	}

	return activities, nil
}
