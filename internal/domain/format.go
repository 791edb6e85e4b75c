package domain

import (
	"fmt"
	"time"
)

// ParseTimestamp parses an ISO-8601 string as the platform sends it
// (RFC 3339, a literal Z suffix meaning UTC). The bool reports success.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatTimestamp renders a timestamp for display. Missing values become
// "N/A"; values that do not parse come back unchanged.
func FormatTimestamp(s string) string {
	if s == "" {
		return "N/A"
	}
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	return t.Format("2006-01-02 15:04:05")
}

// TimeAgo buckets the distance between a timestamp and now into a coarse
// human-readable label, switching units with floor division as soon as a
// threshold is reached (exactly one hour reads "1 hours ago").
func TimeAgo(s string, now time.Time) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return "N/A"
	}

	secs := int64(now.Sub(t).Seconds())
	switch {
	case secs < 60:
		return "Just now"
	case secs < 3600:
		return fmt.Sprintf("%d minutes ago", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%d hours ago", secs/3600)
	default:
		return fmt.Sprintf("%d days ago", secs/86400)
	}
}
