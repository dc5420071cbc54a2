package pap

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	valid := []string{
		"2024",
		"2024-06",
		"2024-06-15",
		"2024-06-15T10",
		"2024-06-15T10:30",
		"2024-06-15T10:30:45",
		"2024-06-15T10:30:45Z",
	}
	for _, value := range valid {
		if _, err := ParseTimestamp(value); err != nil {
			t.Errorf("ParseTimestamp(%q): unexpected error %v", value, err)
		}
	}

	invalid := []string{
		"",
		"Z",
		"2024-13",
		"2024-06-32",
		"2024-06-15T24",
		"2024-06-15T10:60",
		"2024-06-15-10",
		"2024-06-15T10:30:45:00",
		"not-a-year",
	}
	for _, value := range invalid {
		if _, err := ParseTimestamp(value); err == nil {
			t.Errorf("ParseTimestamp(%q): expected error, got none", value)
		}
	}
}

func TestDeadlineRequiresStrictInequality(t *testing.T) {
	deadline, err := ParseTimestamp("2024-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}

	exactly := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if deadline.StrictlyAfter(exactly) {
		t.Error("a deadline equalling now must count as expired")
	}

	justBefore := time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)
	if !deadline.StrictlyAfter(justBefore) {
		t.Error("a deadline one second ahead must not count as expired")
	}
}

func TestStartTimeRequiresStrictInequality(t *testing.T) {
	start, err := ParseTimestamp("2024-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}

	exactly := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if start.StrictlyBefore(exactly) {
		t.Error("a start time equalling now is still premature")
	}

	justAfter := time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)
	if !start.StrictlyBefore(justAfter) {
		t.Error("a start time one second behind now must be satisfied")
	}
}

func TestPartialTimestampComparison(t *testing.T) {
	yearOnly, err := ParseTimestamp("2024")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}

	during := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	if yearOnly.StrictlyAfter(during) || yearOnly.StrictlyBefore(during) {
		t.Error("a year-only timestamp within that year satisfies neither strict test")
	}

	later := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !yearOnly.StrictlyBefore(later) {
		t.Error("2024 lies strictly before a 2025 instant")
	}
}

func TestFormatTime(t *testing.T) {
	moment := time.Date(2024, 6, 15, 10, 30, 45, 0, time.FixedZone("CEST", 2*3600))
	if got := FormatTime(moment); got != "2024-06-15T08:30:45Z" {
		t.Errorf("FormatTime: expected 2024-06-15T08:30:45Z, got %s", got)
	}
}
