package pap

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamp is a PAP delivery timestamp: year, month, day, hour,
// minute and second, each field optional with progressively finer
// granularity ("2024", "2024-01-01T10:30", ...). Comparison against
// the current UTC time walks the present fields most-significant
// first and requires strict inequality; a timestamp whose present
// fields all equal the current time clears neither the before nor the
// after test.
type Timestamp struct {
	fields []int
	raw    string
}

var fieldRanges = [6][2]int{
	{1970, 9999}, // year
	{1, 12},      // month
	{1, 31},      // day
	{0, 23},      // hour
	{0, 59},      // minute
	{0, 59},      // second
}

// ParseTimestamp parses a PAP timestamp. The trailing Z and the
// -, T and : separators are accepted in the positions the format
// defines them; at least the year must be present.
func ParseTimestamp(value string) (*Timestamp, error) {
	raw := value
	value = strings.TrimSuffix(value, "Z")
	if value == "" {
		return nil, fmt.Errorf("empty timestamp")
	}

	datePart, timePart, hasTime := strings.Cut(value, "T")
	parts := strings.Split(datePart, "-")
	if hasTime {
		if timePart == "" {
			return nil, fmt.Errorf("timestamp %q: empty time part", raw)
		}
		parts = append(parts, strings.Split(timePart, ":")...)
	}
	if len(parts) > 6 {
		return nil, fmt.Errorf("timestamp %q: too many fields", raw)
	}
	if !hasTime && len(parts) > 3 {
		return nil, fmt.Errorf("timestamp %q: time fields without T separator", raw)
	}

	fields := make([]int, 0, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("timestamp %q: field %d is not a number", raw, i+1)
		}
		if n < fieldRanges[i][0] || n > fieldRanges[i][1] {
			return nil, fmt.Errorf("timestamp %q: field %d out of range", raw, i+1)
		}
		fields = append(fields, n)
	}

	return &Timestamp{fields: fields, raw: raw}, nil
}

func (t *Timestamp) String() string {
	return t.raw
}

func nowFields(now time.Time) [6]int {
	now = now.UTC()
	return [6]int{
		now.Year(),
		int(now.Month()),
		now.Day(),
		now.Hour(),
		now.Minute(),
		now.Second(),
	}
}

// StrictlyAfter reports whether the timestamp lies strictly after now.
// Used for the deliver-before test: a deadline not strictly in the
// future has expired.
func (t *Timestamp) StrictlyAfter(now time.Time) bool {
	current := nowFields(now)
	for i, field := range t.fields {
		if field > current[i] {
			return true
		}
		if field < current[i] {
			return false
		}
	}
	return false
}

// StrictlyBefore reports whether the timestamp lies strictly before
// now. Used for the deliver-after test: a start time not strictly in
// the past makes delivery premature.
func (t *Timestamp) StrictlyBefore(now time.Time) bool {
	current := nowFields(now)
	for i, field := range t.fields {
		if field < current[i] {
			return true
		}
		if field > current[i] {
			return false
		}
	}
	return false
}

// FormatTime renders a time in the reply-time format, ISO-8601 UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
