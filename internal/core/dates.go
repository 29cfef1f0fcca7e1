package core

import (
	"fmt"
	"strings"
	"time"
)

const clientDateLayout = "2006-01-02"

// ParseClientDate converts a client-supplied ISO-8601 string into a
// timestamp. Both full RFC 3339 timestamps and plain YYYY-MM-DD dates are
// accepted; anything else is an error the caller reports as a field-level
// validation failure, never a panic.
func ParseClientDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(clientDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected an ISO-8601 date", s)
	}
	return t, nil
}
