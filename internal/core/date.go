package core

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate accepts a calendar day (YYYY-MM-DD, taken as midnight UTC) or a
// full RFC 3339 timestamp, which is converted to UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t.UTC(), nil
}
