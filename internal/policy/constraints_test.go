package policy

import (
	"testing"
	"time"

	"github.com/open-wap/go-push-gateway/internal/pap"
)

func mustParse(t *testing.T, value string) *pap.Timestamp {
	t.Helper()
	ts, err := pap.ParseTimestamp(value)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q): %v", value, err)
	}
	return ts
}

func TestDeliveryTimeConstraints(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := DeliveryTimeConstraints(nil, nil, now); got != NoConstraints {
		t.Errorf("no bounds: expected no constraints, got %v", got)
	}

	before := mustParse(t, "2024-01-01T00:00:00Z")
	if got := DeliveryTimeConstraints(before, nil, now); got != TimeExpired {
		t.Errorf("deadline equalling now: expected expired, got %v", got)
	}

	before = mustParse(t, "2024-01-01T00:00:01Z")
	if got := DeliveryTimeConstraints(before, nil, now); got != NoConstraints {
		t.Errorf("deadline in the future: expected no constraints, got %v", got)
	}

	after := mustParse(t, "2024-01-01T00:00:00Z")
	if got := DeliveryTimeConstraints(nil, after, now); got != TimeTooEarly {
		t.Errorf("start time equalling now: expected too early, got %v", got)
	}

	after = mustParse(t, "2023-12-31T23:59:59Z")
	if got := DeliveryTimeConstraints(nil, after, now); got != NoConstraints {
		t.Errorf("start time in the past: expected no constraints, got %v", got)
	}

	// An expired deadline wins over a premature start.
	before = mustParse(t, "2023-12-31")
	after = mustParse(t, "2024-06-01")
	if got := DeliveryTimeConstraints(before, after, now); got != TimeExpired {
		t.Errorf("expired deadline with premature start: expected expired, got %v", got)
	}
}
