package clock

import (
	"fmt"
	"strings"
	"time"
)

// ParseProviderTime parses a calendar provider timestamp into UTC.
// Accepted forms: RFC 3339 with offset, a trailing "Z" as "+00:00",
// date-only values (midnight UTC of that day), and naive timestamps,
// which are promoted to UTC.
func ParseProviderTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	if strings.HasSuffix(value, "Z") {
		value = strings.TrimSuffix(value, "Z") + "+00:00"
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported timestamp %q", value)
}

// FormatProviderTime is the inverse of ParseProviderTime for timestamped
// values; round-tripping is identity to the minute.
func FormatProviderTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
