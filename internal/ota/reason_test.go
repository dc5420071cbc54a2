package ota

import (
	"testing"

	"github.com/open-wap/go-push-gateway/internal/pap"
)

func TestAbortReasonToPAP(t *testing.T) {
	tests := []struct {
		reason   AbortReason
		expected pap.Code
	}{
		{AbortUserReq, pap.CodeAbortUserReq},
		{AbortUserRfs, pap.CodeAbortUserRfs},
		{AbortUserPnd, pap.CodeAbortUserPnd},
		{AbortUserDcr, pap.CodeAbortUserDcr},
		{AbortUserDcu, pap.CodeAbortUserDcu},
	}
	for _, test := range tests {
		if got := test.reason.ToPAP(); got != test.expected {
			t.Errorf("ToPAP(%s): expected %d, got %d", test.reason, test.expected, got)
		}
	}
}

func TestUnknownAbortReason(t *testing.T) {
	unknown := AbortReason(0x42)
	if unknown.Valid() {
		t.Error("0x42 is not a known abort reason")
	}
	if got := unknown.ToPAP(); got != pap.CodeClientAborted {
		t.Errorf("ToPAP(unknown): expected %d, got %d", pap.CodeClientAborted, got)
	}
}
