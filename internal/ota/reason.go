package ota

import "github.com/open-wap/go-push-gateway/internal/pap"

// AbortReason is a device-protocol abort reason code.
type AbortReason int

const (
	AbortUserReq AbortReason = 0xEA + iota // user requested abort
	AbortUserRfs                           // push refused, do not retry
	AbortUserPnd                           // cannot deliver to destination
	AbortUserDcr                           // discarded, resource shortage
	AbortUserDcu                           // content type not processable
)

var abortReasonNames = map[AbortReason]string{
	AbortUserReq: "USERREQ",
	AbortUserRfs: "USERRFS",
	AbortUserPnd: "USERPND",
	AbortUserDcr: "USERDCR",
	AbortUserDcu: "USERDCU",
}

func (r AbortReason) String() string {
	if name, ok := abortReasonNames[r]; ok {
		return name
	}
	return "unknown abort reason"
}

// Valid reports whether the reason is one the device protocol defines.
func (r AbortReason) Valid() bool {
	_, ok := abortReasonNames[r]
	return ok
}

// ToPAP translates the abort reason into the corresponding PAP client
// abort code. The two enumerations run in parallel, so the mapping is
// a fixed offset.
func (r AbortReason) ToPAP() pap.Code {
	if !r.Valid() {
		return pap.CodeClientAborted
	}
	return pap.CodeAbortUserReq + pap.Code(r-AbortUserReq)
}
