package policy

import (
	"time"

	"github.com/open-wap/go-push-gateway/internal/pap"
)

// TimeConstraint is the verdict on a push's delivery window.
type TimeConstraint int

const (
	TimeExpired TimeConstraint = iota
	TimeTooEarly
	NoConstraints
)

func (t TimeConstraint) String() string {
	switch t {
	case TimeExpired:
		return "expired"
	case TimeTooEarly:
		return "too early"
	}
	return "no constraints"
}

// DeliveryTimeConstraints checks the deliver-before deadline first,
// then the deliver-after start time, against now in UTC. Either bound
// may be absent. Both comparisons require strict inequality: a
// deadline equalling now has expired, a start time equalling now is
// still premature.
func DeliveryTimeConstraints(before, after *pap.Timestamp, now time.Time) TimeConstraint {
	if before != nil && !before.StrictlyAfter(now) {
		return TimeExpired
	}
	if after != nil && !after.StrictlyBefore(now) {
		return TimeTooEarly
	}
	return NoConstraints
}
