package weekly

import (
	"time"

	"github.com/arorarohan/strava-data-analysis/internal/strava"

	log "github.com/sirupsen/logrus"
)

// Bucket holds the total moving time of one calendar week (Monday start).
type Bucket struct {
	WeekStart       time.Time
	TotalMovingTime time.Duration
}

func (b Bucket) Hours() float64 {
	return b.TotalMovingTime.Hours()
}

// WeekStart returns the Monday 00:00 UTC of the week containing ts.
// An activity exactly on the boundary belongs to the week it opens.
func WeekStart(ts time.Time) time.Time {
	ts = ts.UTC()
	daysSinceMonday := (int(ts.Weekday()) + 6) % 7
	midnight := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -daysSinceMonday)
}

// Aggregate buckets the included activities within [windowStart, windowEnd]
// into calendar weeks. One bucket per week touching the window, in ascending
// order, contiguous, zero-filled - weeks without activities stay in.
func Aggregate(activities []strava.Activity, windowStart, windowEnd time.Time) []Bucket {
	firstWeek := WeekStart(windowStart)
	lastWeek := WeekStart(windowEnd)

	var buckets []Bucket
	week2index := make(map[time.Time]int)
	for week := firstWeek; !week.After(lastWeek); week = week.AddDate(0, 0, 7) {
		week2index[week] = len(buckets)
		buckets = append(buckets, Bucket{WeekStart: week})
	}

	for _, activity := range activities {
		if !Included(activity.Type) {
			log.Debugf("skipping excluded activity %d [%s]", activity.ID, activity.Type)
			continue
		}

		startDate := activity.StartDate.UTC()
		if startDate.Before(windowStart) || startDate.After(windowEnd) {
			log.Debugf("skipping activity %d outside the window: %s", activity.ID, startDate)
			continue
		}

		index := week2index[WeekStart(startDate)]
		buckets[index].TotalMovingTime += activity.MovingDuration()
	}

	return buckets
}
