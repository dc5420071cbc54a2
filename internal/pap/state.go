package pap

import "fmt"

// State is the message-state attribute of a push. It only moves
// forward: pending is the sole non-terminal state, and no transition
// leaves a terminal state.
type State int

const (
	StateUnknown State = iota
	StatePending
	StateDelivered
	StateAborted
	StateExpired
	StateUndeliverable
)

var stateNames = map[State]string{
	StateUnknown:       "unknown",
	StatePending:       "pending",
	StateDelivered:     "delivered",
	StateAborted:       "aborted",
	StateExpired:       "expired",
	StateUndeliverable: "undeliverable",
}

func (s State) String() string {
	return stateNames[s]
}

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	switch s {
	case StateDelivered, StateAborted, StateExpired, StateUndeliverable:
		return true
	}
	return false
}

// DeliveryMethod is the delivery-method attribute of a push
// submission.
type DeliveryMethod int

const (
	MethodNotSpecified DeliveryMethod = iota
	MethodUnconfirmed
	MethodConfirmed
	MethodPreferConfirmed
)

var deliveryMethodNames = map[DeliveryMethod]string{
	MethodNotSpecified:    "notspecified",
	MethodUnconfirmed:     "unconfirmed",
	MethodConfirmed:       "confirmed",
	MethodPreferConfirmed: "preferconfirmed",
}

func (m DeliveryMethod) String() string {
	return deliveryMethodNames[m]
}

// ParseDeliveryMethod maps the textual attribute value to its method.
// An empty value means not specified.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	switch value {
	case "", "notspecified":
		return MethodNotSpecified, nil
	case "unconfirmed":
		return MethodUnconfirmed, nil
	case "confirmed":
		return MethodConfirmed, nil
	case "preferconfirmed":
		return MethodPreferConfirmed, nil
	}
	return MethodNotSpecified, fmt.Errorf("unknown delivery method %q", value)
}
