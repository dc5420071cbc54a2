package ota

import "net/http"

// Event is any event crossing the device-protocol boundary, in either
// direction.
type Event interface {
	otaEvent()
}

// Dispatcher accepts events for asynchronous handling. The gateway
// controller holds one for the OTA direction; the OTA driver holds
// one per session service it forwards to.
type Dispatcher interface {
	Dispatch(e Event)
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(e Event)

func (f DispatchFunc) Dispatch(e Event) { f(e) }

/*
 * Requests from the gateway controller to the OTA layer.
 */

// SessionRequest asks the client to establish a push session. It goes
// out connectionless, to the client's registered push port.
type SessionRequest struct {
	Tuple   AddrTuple
	Headers http.Header
	PushID  int64
}

// PushRequest is a connection-oriented unconfirmed push.
type PushRequest struct {
	SessionHandle int
	Headers       http.Header
	Body          []byte
	Authenticated bool
	Trusted       bool
	Last          bool
}

// ConfirmedPushRequest is a connection-oriented confirmed push. The
// server push id comes back in the later confirmation or abort.
type ConfirmedPushRequest struct {
	ServerPushID  int64
	SessionHandle int
	Headers       http.Header
	Body          []byte
	Authenticated bool
	Trusted       bool
	Last          bool
}

// UnitPushRequest is a connectionless push, either over the default IP
// bearer or over SMS when the submission pinned the short-message
// bearer (in which case the username and password ride along).
type UnitPushRequest struct {
	Tuple   AddrTuple
	PushID  int64
	Headers http.Header
	Body    []byte

	Authenticated bool
	Trusted       bool
	Last          bool

	BearerRequired  bool
	Bearer          string
	NetworkRequired bool
	Network         string
	Username        string
	Password        string
}

// PushAbortRequest asks the OTA layer to abort an in-flight confirmed
// push.
type PushAbortRequest struct {
	Tuple         AddrTuple
	PushID        int64
	SessionHandle int
	Reason        AbortReason
}

func (SessionRequest) otaEvent()       {}
func (PushRequest) otaEvent()          {}
func (ConfirmedPushRequest) otaEvent() {}
func (UnitPushRequest) otaEvent()      {}
func (PushAbortRequest) otaEvent()     {}

/*
 * Indications from the OTA layer to the gateway controller.
 */

// ConnectInd reports an established push session.
type ConnectInd struct {
	SessionID             int
	Tuple                 AddrTuple
	RequestedCapabilities []string
}

// DisconnectInd reports a closed session.
type DisconnectInd struct {
	SessionHandle int
}

// PushConfirmInd confirms delivery of a confirmed push.
type PushConfirmInd struct {
	SessionHandle int
	ServerPushID  int64
}

// PushAbortInd reports a client-side abort of a confirmed push.
type PushAbortInd struct {
	SessionHandle int
	PushID        int64
	Reason        AbortReason
}

func (ConnectInd) otaEvent()     {}
func (DisconnectInd) otaEvent()  {}
func (PushConfirmInd) otaEvent() {}
func (PushAbortInd) otaEvent()   {}

/*
 * The application-layer boundary.
 */

// ConnectResponse tells the application layer which capabilities were
// negotiated for a new session.
type ConnectResponse struct {
	SessionID             int
	NegotiatedCapabilities []string
}

func (ConnectResponse) otaEvent() {}
