package strava_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/arorarohan/strava-data-analysis/internal/strava"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func makeActivities(count int, idOffset int64) []strava.Activity {
	activities := make([]strava.Activity, 0, count)
	for i := 0; i < count; i++ {
		activities = append(activities, strava.Activity{
			ID:         idOffset + int64(i),
			Type:       "Run",
			StartDate:  time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Hour),
			MovingTime: 1800,
		})
	}
	return activities
}

func TestClient_GetActivities_SinglePartialPage(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/athlete/activities", r.URL.Path)
		_ = json.NewEncoder(w).Encode(makeActivities(3, 100))
	}))
	defer server.Close()

	client := strava.NewClient(server.URL, 10, server.Client())
	defer server.Client().CloseIdleConnections()

	activities, err := client.GetActivities(
		context.Background(),
		"test-token",
		time.Now().AddDate(0, 0, -7), time.Now(),
	)
	require.NoError(t, err)
	assert.Len(t, activities, 3)
	assert.Equal(t, 1, requests)
}

func TestClient_GetActivities_ThreeFullPagesThenPartial(t *testing.T) {
	const perPage = 5
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		assert.NoError(t, err)
		assert.Equal(t, strconv.Itoa(perPage), r.URL.Query().Get("per_page"))

		switch {
		case page <= 3:
			_ = json.NewEncoder(w).Encode(makeActivities(perPage, int64(page)*1000))
		case page == 4:
			_ = json.NewEncoder(w).Encode(makeActivities(2, 4000))
		default:
			t.Errorf("unexpected page request: %d", page)
		}
	}))
	defer server.Close()

	client := strava.NewClient(server.URL, perPage, server.Client())
	defer server.Client().CloseIdleConnections()

	activities, err := client.GetActivities(
		context.Background(),
		"test-token",
		time.Now().AddDate(0, 0, -60), time.Now(),
	)
	require.NoError(t, err)
	require.Len(t, activities, 3*perPage+2)

	// pages concatenated in request order
	assert.Equal(t, int64(1000), activities[0].ID)
	assert.Equal(t, int64(2000), activities[perPage].ID)
	assert.Equal(t, int64(3000), activities[2*perPage].ID)
	assert.Equal(t, int64(4000), activities[3*perPage].ID)
}

func TestClient_GetActivities_EmptyPageStops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := strava.NewClient(server.URL, 10, server.Client())
	defer server.Client().CloseIdleConnections()

	activities, err := client.GetActivities(
		context.Background(),
		"test-token",
		time.Now().AddDate(0, 0, -7), time.Now(),
	)
	require.NoError(t, err)
	assert.Empty(t, activities)
}

func TestClient_GetActivities_DateRangeParams(t *testing.T) {
	after := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	before := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, strconv.FormatInt(after.Unix(), 10), r.URL.Query().Get("after"))
		assert.Equal(t, strconv.FormatInt(before.Unix(), 10), r.URL.Query().Get("before"))
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := strava.NewClient(server.URL, 10, server.Client())
	defer server.Client().CloseIdleConnections()

	_, err := client.GetActivities(context.Background(), "test-token", after, before)
	require.NoError(t, err)
}

func TestClient_GetActivities_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Authorization Error"}`)
	}))
	defer server.Close()

	client := strava.NewClient(server.URL, 10, server.Client())
	defer server.Client().CloseIdleConnections()

	_, err := client.GetActivities(
		context.Background(),
		"stale-token",
		time.Now().AddDate(0, 0, -7), time.Now(),
	)
	require.ErrorIs(t, err, strava.ErrAuthExpired)
}

func TestClient_GetActivities_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message":"Rate Limit Exceeded"}`)
	}))
	defer server.Close()

	client := strava.NewClient(server.URL, 10, server.Client())
	defer server.Client().CloseIdleConnections()

	_, err := client.GetActivities(
		context.Background(),
		"test-token",
		time.Now().AddDate(0, 0, -7), time.Now(),
	)

	var apiErr *strava.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Contains(t, apiErr.Body, "Rate Limit Exceeded")
}
