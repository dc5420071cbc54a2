package ota

import (
	"context"
	"net/http"

	"github.com/open-wap/go-push-gateway/internal/event"
	"github.com/open-wap/go-push-gateway/internal/logger"
)

const (
	siaContentType   = "application/vnd.wap.sia"
	siaApplicationID = "1" // assigned code for push.sia
)

// ContactPoint is where the client should contact the gateway when
// answering a session request.
type ContactPoint struct {
	Address string
	Port    int
}

// SIAContent is the session-initiation payload of a session-request
// push: the gateway's contact point plus the application ids the
// session is being opened for.
type SIAContent struct {
	ContactPoint   ContactPoint
	ApplicationIDs []string
}

// UnitSessionPush is the connectionless push the driver emits to carry
// a session request to the client's registered push port.
type UnitSessionPush struct {
	Tuple   AddrTuple
	PushID  int64
	Headers http.Header
	SIA     SIAContent
}

func (UnitSessionPush) otaEvent() {}

// Driver is the OTA-side event loop. It consumes push requests from
// its own queue and forwards them to the connection-oriented and
// connectionless session services. Wire-level header encoding is the
// services' concern, not the driver's.
type Driver struct {
	queue     *event.Queue[Event]
	wsp       Dispatcher
	wspUnit   Dispatcher
	bearerbox *BearerboxAddress
	port      int
}

func NewDriver(wsp, wspUnit Dispatcher, bearerbox *BearerboxAddress, contactPort int) *Driver {
	d := &Driver{
		queue:     event.NewQueue[Event](),
		wsp:       wsp,
		wspUnit:   wspUnit,
		bearerbox: bearerbox,
		port:      contactPort,
	}
	d.queue.AddProducer()
	return d
}

// Dispatch hands an event to the driver's queue. Safe for concurrent
// producers.
func (d *Driver) Dispatch(e Event) {
	d.queue.Produce(e)
}

// Shutdown stops production; Run drains what is queued and returns.
func (d *Driver) Shutdown() {
	d.queue.RemoveProducer()
}

type DriverCloseCallback struct {
	driver *Driver
}

func NewDriverCloseCallback(d *Driver) *DriverCloseCallback {
	return &DriverCloseCallback{driver: d}
}

func (dc *DriverCloseCallback) Invoke(context.Context) error {
	logger.InfoF("Closing OTA driver")
	dc.driver.Shutdown()
	return nil
}

// Run consumes the driver queue until end-of-stream.
func (d *Driver) Run() {
	for {
		e, ok := d.queue.Consume()
		if !ok {
			logger.Debug("OTA driver queue drained, stopping")
			return
		}
		d.handleEvent(e)
	}
}

func (d *Driver) handleEvent(e Event) {
	switch e := e.(type) {
	case SessionRequest:
		d.makeSessionRequest(e)
	case PushRequest:
		logger.DebugF("[push session %d] Forwarding push request", e.SessionHandle)
		d.wsp.Dispatch(e)
	case ConfirmedPushRequest:
		logger.DebugF("[push %d] Forwarding confirmed push request", e.ServerPushID)
		d.wsp.Dispatch(e)
	case UnitPushRequest:
		logger.DebugF("[push %d] Forwarding unit push request", e.PushID)
		d.wspUnit.Dispatch(e)
	case PushAbortRequest:
		logger.DebugF("[push %d] Forwarding push abort, reason %s", e.PushID, e.Reason)
		d.wsp.Dispatch(e)
	default:
		logger.WarnF("OTA driver received an unhandled event %T", e)
	}
}

// makeSessionRequest completes the session-request headers and wraps
// the request into a connectionless push carrying the gateway's
// contact point. Content type and application id must be present on a
// session request; absent ones get the session-initiation defaults.
func (d *Driver) makeSessionRequest(req SessionRequest) {
	headers := req.Headers
	if headers == nil {
		headers = make(http.Header)
	}
	if headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", siaContentType)
	}
	if headers.Get("X-WAP-Application-Id") == "" {
		headers.Set("X-WAP-Application-Id", siaApplicationID)
	}

	push := UnitSessionPush{
		Tuple:   req.Tuple,
		PushID:  req.PushID,
		Headers: headers,
		SIA: SIAContent{
			ContactPoint: ContactPoint{
				Address: d.bearerbox.Get(),
				Port:    d.port,
			},
			ApplicationIDs: headers.Values("X-WAP-Application-Id"),
		},
	}
	logger.DebugF("[push %d] Session request to %s:%d", req.PushID,
		push.Tuple.RemoteAddress, push.Tuple.RemotePort)
	d.wspUnit.Dispatch(push)
}
