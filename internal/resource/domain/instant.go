package domain

import (
	"strconv"
	"strings"
	"time"
)

// Layouts without a zone offset are interpreted in the caller's local zone.
var instantLayouts = []struct {
	layout string
	local  bool
}{
	{layout: time.RFC3339, local: false},
	{layout: "2006-01-02T15:04:05", local: true},
	{layout: "2006-01-02 15:04:05", local: true},
	{layout: "2006-01-02", local: true},
}

// ParseInstant accepts a UTC epoch-second integer or an ISO-8601 string and
// normalizes it to a UTC instant.
func ParseInstant(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, ErrInvalidInstant
	}

	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}

	for _, l := range instantLayouts {
		if l.local {
			if t, err := time.ParseInLocation(l.layout, v, time.Local); err == nil {
				return t.UTC(), nil
			}
			continue
		}
		if t, err := time.Parse(l.layout, v); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, ErrInvalidInstant
}
