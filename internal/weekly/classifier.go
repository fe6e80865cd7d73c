package weekly

import "strings"

// strength training entries are tracked separately and would skew
// the moving time totals, so they are excluded from the report
var excludedActivityTypes = map[string]struct{}{
	"weighttraining":   {},
	"workout":          {},
	"strengthtraining": {},
}

// Included reports whether an activity type counts towards the weekly
// moving time. Pure function, the comparison is case-insensitive.
func Included(activityType string) bool {
	_, excluded := excludedActivityTypes[strings.ToLower(activityType)]
	return !excluded
}
