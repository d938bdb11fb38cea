package models

import (
	"strings"
	"time"
)

// TimestampLayout is the naive local ISO-8601 layout used in persisted documents.
const TimestampLayout = "2006-01-02T15:04:05.000000"

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// FormatTimestamp renders t in the persisted layout.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// ParseTimestamp accepts naive ISO-8601 timestamps (read as local time, with an
// optional trailing "Z" ignored) and RFC 3339 timestamps with an offset.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	naive := strings.TrimSuffix(s, "Z")

	var err error
	for _, layout := range naiveLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, naive, time.Local); err == nil {
			return t, nil
		}
	}
	if t, rfcErr := time.Parse(time.RFC3339Nano, s); rfcErr == nil {
		return t, nil
	}
	return time.Time{}, err
}
