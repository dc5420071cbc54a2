package pap

import "testing"

func TestCodeDescriptions(t *testing.T) {
	tests := []struct {
		code     Code
		expected string
	}{
		{CodeAcceptedForProcessing, "The request has been accepted for processing"},
		{CodeDuplicatePushID, "Push id supplied was not unique"},
		{CodeTransformationFailure, "Gateway was unable to perform a transformation of the message"},
	}
	for _, test := range tests {
		if got := test.code.Describe(); got != test.expected {
			t.Errorf("Describe(%d): expected %q, got %q", test.code, test.expected, got)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	if StatePending.Terminal() {
		t.Error("pending is not a terminal state")
	}
	for _, state := range []State{StateDelivered, StateAborted, StateExpired, StateUndeliverable} {
		if !state.Terminal() {
			t.Errorf("%s must be terminal", state)
		}
	}
}

func TestParseDeliveryMethod(t *testing.T) {
	if method, err := ParseDeliveryMethod(""); err != nil || method != MethodNotSpecified {
		t.Errorf("empty value: expected notspecified, got %v, %v", method, err)
	}
	if method, err := ParseDeliveryMethod("preferconfirmed"); err != nil || method != MethodPreferConfirmed {
		t.Errorf("preferconfirmed: got %v, %v", method, err)
	}
	if _, err := ParseDeliveryMethod("whenever"); err == nil {
		t.Error("unknown method: expected error, got none")
	}
}

func TestEscapeFragment(t *testing.T) {
	if got := EscapeFragment(`<push id="a&b">`); got != "push id=ab" {
		t.Errorf("EscapeFragment: got %q", got)
	}
}
