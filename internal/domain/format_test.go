package domain

import (
	"testing"
	"time"
)

func TestTimeAgo_Buckets(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		in   string
		want string
	}{
		{"2024-01-02T00:00:00Z", "Just now"},
		{"2024-01-01T23:59:30Z", "30 minutes ago"},
		{"2024-01-01T23:00:00Z", "1 hours ago"},
		{"2024-01-01T20:00:00Z", "4 hours ago"},
		{"2023-12-31T00:00:00Z", "2 days ago"},
		{"2024-01-01T00:00:00Z", "1 days ago"},
		{"not-a-date", "N/A"},
		{"", "N/A"},
	}

	for _, c := range cases {
		if got := TimeAgo(c.in, now); got != c.want {
			t.Errorf("TimeAgo(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTimeAgo_ExactHourBoundary(t *testing.T) {
	now := time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC)
	if got := TimeAgo("2024-01-02T00:00:00Z", now); got != "1 hours ago" {
		t.Errorf("exactly 3600s should be hours, got %q", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := FormatTimestamp("2024-01-02T15:04:05Z"); got != "2024-01-02 15:04:05" {
		t.Errorf("unexpected format: %q", got)
	}
	if got := FormatTimestamp("not-a-date"); got != "not-a-date" {
		t.Errorf("unparseable input must come back unchanged, got %q", got)
	}
	if got := FormatTimestamp(""); got != "N/A" {
		t.Errorf("empty input must be N/A, got %q", got)
	}
}

func TestParseTimestamp_OffsetForm(t *testing.T) {
	got, ok := ParseTimestamp("2024-01-02T15:04:05+02:00")
	if !ok {
		t.Fatal("offset timestamp should parse")
	}
	if !got.Equal(time.Date(2024, 1, 2, 13, 4, 5, 0, time.UTC)) {
		t.Errorf("wrong instant: %v", got)
	}
}
