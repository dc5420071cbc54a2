// Package gateway is the push proxy core: it owns the session and
// push state machines and runs the single controller goroutine that
// is the only writer over them.
package gateway

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/open-wap/go-push-gateway/internal/logger"
	"github.com/open-wap/go-push-gateway/internal/ota"
	"github.com/open-wap/go-push-gateway/internal/pap"
	"github.com/open-wap/go-push-gateway/internal/policy"
)

// NoSessionID marks a session machine whose device side has not yet
// assigned a session id.
const NoSessionID = -1

var pushIDCounter atomic.Int64

func nextPushID() int64 {
	return pushIDCounter.Add(1)
}

// SessionMachine tracks one device session. All fields are owned by
// the controller goroutine after construction.
type SessionMachine struct {
	SessionID       int
	PiClientAddress string
	Tuple           ota.AddrTuple
	AssumedCaps     []string
	ClientCaps      []string
	PreferConfirmed bool
	Pushes          []*PushMachine
}

var errNoClientAddress = errors.New("session machine requires a client address")

// NewSessionMachine builds a machine for a client address over the
// given tuple. The device-side session id is unset until a connect
// indication arrives.
func NewSessionMachine(clientAddress string, tuple ota.AddrTuple, caps []string) (*SessionMachine, error) {
	if clientAddress == "" {
		return nil, errNoClientAddress
	}
	return &SessionMachine{
		SessionID:       NoSessionID,
		PiClientAddress: clientAddress,
		Tuple:           tuple,
		AssumedCaps:     caps,
		PreferConfirmed: true,
	}, nil
}

// PushMachine tracks one push message from acceptance to a terminal
// state.
type PushMachine struct {
	PushID         int64
	PiPushID       string
	SessionID      int
	Tuple          ota.AddrTuple
	DeliveryMethod pap.DeliveryMethod
	Priority       string
	DeliverAfter   *pap.Timestamp
	DeliverBefore  *pap.Timestamp
	Headers        http.Header
	Data           []byte
	Bearer         policy.BearerSpec
	Trusted        bool
	Authenticated  bool
	Username       string
	Password       string
	ProgressNotes  bool
	NotifyTo       string
	URL            string

	State     pap.State
	Code      pap.Code
	Desc      string
	EventTime string
}

var errNoPushID = errors.New("push machine requires a message id")

// NewPushMachine accepts a submission into a pending machine. The
// submission's headers and body are taken over, not copied; the
// caller must not touch them afterwards.
func NewPushMachine(sub *pap.Submission, tuple ota.AddrTuple, url string) (*PushMachine, error) {
	if sub.PiPushID == "" {
		return nil, errNoPushID
	}
	m := &PushMachine{
		PushID:         nextPushID(),
		PiPushID:       sub.PiPushID,
		SessionID:      NoSessionID,
		Tuple:          tuple,
		DeliveryMethod: sub.DeliveryMethod,
		Priority:       sub.Priority,
		DeliverAfter:   sub.DeliverAfter,
		DeliverBefore:  sub.DeliverBefore,
		Headers:        sub.PushHeaders,
		Data:           sub.PushData,
		Bearer: policy.BearerSpec{
			NetworkRequired: sub.NetworkRequired,
			Network:         sub.Network,
			BearerRequired:  sub.BearerRequired,
			Bearer:          sub.Bearer,
		},
		Trusted:       true,
		Authenticated: true,
		Username:      sub.Username,
		Password:      sub.Password,
		ProgressNotes: sub.ProgressNotesRequested,
		NotifyTo:      sub.NotifyRequestedTo,
		URL:           url,
		State:         pap.StatePending,
	}
	return m, nil
}

// Transition moves the machine into a new state, recording the result
// code and event time. Terminal states absorb: once reached, further
// transitions are ignored.
func (m *PushMachine) Transition(state pap.State, code pap.Code) bool {
	if m.State.Terminal() {
		logger.DebugF("[push %s] Already in state %s, ignoring %s", m.PiPushID, m.State, state)
		return false
	}
	m.State = state
	m.Code = code
	m.Desc = code.Describe()
	m.EventTime = pap.FormatTime(time.Now().UTC())
	logger.InfoF("[push %s] Entered state %s (%d %s)", m.PiPushID, state, code, m.Desc)
	return true
}

// Confirmed reports whether the machine needs a device confirmation,
// resolving a preferconfirmed method against the session preference.
func (m *PushMachine) Confirmed(sessionPrefers bool) bool {
	switch m.DeliveryMethod {
	case pap.MethodConfirmed:
		return true
	case pap.MethodPreferConfirmed:
		return sessionPrefers
	default:
		return false
	}
}
