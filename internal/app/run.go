package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arorarohan/strava-data-analysis/internal/auth"
	"github.com/arorarohan/strava-data-analysis/internal/config"
	"github.com/arorarohan/strava-data-analysis/internal/report"
	"github.com/arorarohan/strava-data-analysis/internal/strava"
	"github.com/arorarohan/strava-data-analysis/internal/weekly"

	log "github.com/sirupsen/logrus"
)

type RunParams struct {
	Config *config.Config
	Weeks  int
	Out    io.Writer
	// Now overridable for tests; leave nil to use time.Now
	Now func() time.Time
}

// Run executes the whole reporting pipeline: ensure a usable token,
// fetch the activities of the trailing weeks, filter and aggregate them,
// and render the weekly report. Synchronous and sequential, every error
// is terminal for the run.
func Run(ctx context.Context, params RunParams) error {
	cfg := params.Config
	now := params.Now
	if now == nil {
		now = time.Now
	}

	store := auth.NewFileStore(cfg.CredentialsPath)
	authorizer := auth.NewAuthorizer(auth.NewAuthorizerParams{
		Store:        store,
		AuthBaseURL:  cfg.AuthBaseURL,
		RedirectPort: cfg.RedirectPort,
		Timeout:      time.Duration(cfg.AuthTimeoutSeconds) * time.Second,
		Now:          now,
	})

	creds, err := authorizer.EnsureToken(ctx)
	if err != nil {
		return fmt.Errorf("ensure token: %w", err)
	}

	// the window covers the trailing weeks, current week included
	windowEnd := now().UTC()
	windowStart := weekly.WeekStart(windowEnd).AddDate(0, 0, -7*(params.Weeks-1))
	fmt.Fprintf(params.Out, "Fetching activities from %s to %s\n",
		windowStart.Format("2006-01-02"), windowEnd.Format("2006-01-02"))

	client := strava.NewClient(cfg.APIBaseURL, cfg.PerPage, &http.Client{Timeout: 30 * time.Second})

	activities, err := client.GetActivities(ctx, creds.AccessToken, windowStart, windowEnd)
	if errors.Is(err, strava.ErrAuthExpired) {
		// one refresh-and-retry cycle, never a second one
		log.Warnln("access token rejected, refreshing and retrying once")
		creds, err = authorizer.Refresh(ctx, creds)
		if err != nil {
			return fmt.Errorf("refresh token: %w", err)
		}
		activities, err = client.GetActivities(ctx, creds.AccessToken, windowStart, windowEnd)
	}
	if err != nil {
		return fmt.Errorf("fetch activities: %w", err)
	}

	included := 0
	for _, activity := range activities {
		if weekly.Included(activity.Type) {
			included++
		}
	}
	fmt.Fprintf(params.Out, "Found %d total activities\n", len(activities))
	fmt.Fprintf(params.Out, "After filtering: %d activities\n", included)

	buckets := weekly.Aggregate(activities, windowStart, windowEnd)

	renderer := report.NewRenderer(cfg.ChartPath, params.Out)
	if err := renderer.Render(buckets); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	return nil
}
