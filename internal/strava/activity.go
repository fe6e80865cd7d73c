package strava

import "time"

// Activity is the summary representation returned by the
// athlete activities endpoint, reduced to the fields this tool uses.
// https://developers.strava.com/docs/reference/#api-Activities-getLoggedInAthleteActivities
type Activity struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	StartDate  time.Time `json:"start_date"`
	MovingTime int       `json:"moving_time"` // seconds
}

func (a Activity) MovingDuration() time.Duration {
	return time.Duration(a.MovingTime) * time.Second
}
