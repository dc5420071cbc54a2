package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/open-wap/go-push-gateway/internal/event"
	"github.com/open-wap/go-push-gateway/internal/logger"
	"github.com/open-wap/go-push-gateway/internal/ota"
	"github.com/open-wap/go-push-gateway/internal/pap"
	"github.com/open-wap/go-push-gateway/internal/policy"
	"github.com/open-wap/go-push-gateway/internal/store"
	"github.com/open-wap/go-push-gateway/internal/transform"
)

// Responder carries push responses back to the submission intake.
type Responder interface {
	Respond(resp *pap.Response)
}

// SubmissionEvent is a validated push request entering the controller
// queue, together with the request URL it arrived on.
type SubmissionEvent struct {
	Sub *pap.Submission
	URL string
}

// Controller is the event-driven gateway core. It is the sole
// consumer of its queue and the only goroutine that touches the
// registry, so push and session state transitions never interleave.
type Controller struct {
	queue      *event.Queue[any]
	registry   *Registry
	ota        ota.Dispatcher
	appl       ota.Dispatcher
	responder  Responder
	results    store.ResultStore
	senderName string
}

func NewController(otaLayer, appl ota.Dispatcher, responder Responder, results store.ResultStore) *Controller {
	c := &Controller{
		queue:      event.NewQueue[any](),
		registry:   NewRegistry(),
		ota:        otaLayer,
		appl:       appl,
		responder:  responder,
		results:    results,
		senderName: fmt.Sprintf("push-gateway/%.8s", uuid.NewString()),
	}
	c.queue.AddProducer()
	return c
}

// Submit enqueues a push submission. Safe for concurrent producers.
func (c *Controller) Submit(sub *pap.Submission, url string) {
	c.queue.Produce(SubmissionEvent{Sub: sub, URL: url})
}

// Dispatch enqueues an indication from the device-protocol layer.
func (c *Controller) Dispatch(e ota.Event) {
	c.queue.Produce(e)
}

// Shutdown stops production; Run drains what is queued and returns.
// Pushes still in the registry at that point are discarded without a
// final report.
func (c *Controller) Shutdown() {
	c.queue.RemoveProducer()
}

// Registry exposes the controller's registry. Outside tests, nothing
// but the controller goroutine may mutate through it.
func (c *Controller) Registry() *Registry {
	return c.registry
}

type ControllerCloseCallback struct {
	controller *Controller
}

func NewControllerCloseCallback(c *Controller) *ControllerCloseCallback {
	return &ControllerCloseCallback{controller: c}
}

func (cc *ControllerCloseCallback) Invoke(context.Context) error {
	logger.InfoF("Closing gateway controller")
	cc.controller.Shutdown()
	return nil
}

// Run consumes the controller queue until end-of-stream. Every event
// is processed to completion before the next is dequeued.
func (c *Controller) Run() {
	for {
		e, ok := c.queue.Consume()
		if !ok {
			logger.Debug("[gateway] Controller queue drained, stopping")
			return
		}
		c.handleEvent(e)
	}
}

func (c *Controller) handleEvent(e any) {
	switch e := e.(type) {
	case SubmissionEvent:
		c.handleSubmission(e)
	case ota.ConnectInd:
		c.handleConnect(e)
	case ota.DisconnectInd:
		c.handleDisconnect(e)
	case ota.PushConfirmInd:
		c.handleConfirm(e)
	case ota.PushAbortInd:
		c.handleAbort(e)
	default:
		logger.WarnF("[gateway] Unhandled event %T", e)
	}
}

// handleSubmission runs the push handling pipeline: transform, session
// resolution, registration with duplicate detection, bearer and time
// policy, then delivery or session establishment.
func (c *Controller) handleSubmission(ev SubmissionEvent) {
	sub := ev.Sub
	logger.InfoF("[push %s] Handling submission for %s", sub.PiPushID, sub.AddressValue)

	session := c.registry.SessionByClientAddress(sub.AddressValue)

	// Connectionless delivery is acceptable only for a method that
	// needs no confirmation and only when no session serves the
	// client already.
	connectionless := session == nil &&
		(sub.DeliveryMethod == pap.MethodUnconfirmed || sub.DeliveryMethod == pap.MethodNotSpecified)

	result, transformErr := transform.Message(sub, connectionless)
	var tuple ota.AddrTuple
	if result != nil {
		tuple = result.Tuple
	}

	sessionCreated := false
	if session == nil && !connectionless {
		var err error
		session, err = NewSessionMachine(sub.AddressValue, tuple, sub.PiCapabilities)
		if err != nil {
			logger.FatalF("[push %s] %s", sub.PiPushID, err)
			c.respond(sub.PiPushID, ev.URL, pap.CodeInternalServerError)
			return
		}
		c.registry.AddSession(session)
		sessionCreated = true
	}

	// Duplicate detection happens at registration, before any state
	// mutation on the original push.
	if c.registry.PiIDInScope(session, sub.PiPushID) {
		logger.WarnF("[push %s] Duplicate push id, rejecting", sub.PiPushID)
		if sessionCreated {
			c.registry.RemoveSession(session)
		}
		c.respond(sub.PiPushID, ev.URL, pap.CodeDuplicatePushID)
		return
	}

	pm, err := NewPushMachine(sub, tuple, ev.URL)
	if err != nil {
		logger.FatalF("[push %s] %s", sub.PiPushID, err)
		if sessionCreated {
			c.registry.RemoveSession(session)
		}
		c.respond(sub.PiPushID, ev.URL, pap.CodeInternalServerError)
		return
	}
	if connectionless {
		c.registry.AddUnitPush(pm)
	} else {
		pm.SessionID = session.SessionID
		session.Pushes = append(session.Pushes, pm)
	}

	if transformErr != nil {
		code := pap.CodeTransformationFailure
		if errors.Is(transformErr, transform.ErrNoHeaders) {
			code = pap.CodeAddressError
		}
		c.drop(pm, pap.StateUndeliverable, code)
		return
	}

	spec, supported := policy.SelectBearerNetwork(pm.Bearer)
	if !supported {
		logger.WarnF("[push %s] Bearer %s over %s not supported", pm.PiPushID, pm.Bearer.Bearer, pm.Bearer.Network)
		c.drop(pm, pap.StateUndeliverable, pap.CodeRequiredBearerNotAvailable)
		return
	}
	pm.Bearer = spec

	switch policy.DeliveryTimeConstraints(pm.DeliverBefore, pm.DeliverAfter, time.Now().UTC()) {
	case policy.TimeExpired:
		logger.WarnF("[push %s] Deadline expired before delivery", pm.PiPushID)
		c.drop(pm, pap.StateExpired, pap.CodeForbidden)
		return
	case policy.TimeTooEarly:
		// The push stays queued with pending status. There is no
		// re-check until a decision-relevant event enters the queue.
		logger.InfoF("[push %s] Too early, queued until its window opens", pm.PiPushID)
		c.respond(pm.PiPushID, pm.URL, pap.CodeAcceptedForProcessing)
		return
	}

	// No synchronous error can happen past this point; anything later
	// is reported asynchronously.
	c.respond(pm.PiPushID, pm.URL, pap.CodeAcceptedForProcessing)

	if connectionless {
		c.deliverUnitPush(pm)
		return
	}
	if session.SessionID != NoSessionID {
		c.deliverOverSession(session, pm, true)
		return
	}
	if sessionCreated {
		c.requestSession(session, pm)
	}
	// A session request is already in flight for this client; the
	// push waits for the connect indication.
}

// deliverUnitPush sends a connectionless push and retires its machine.
// Unconfirmed pushes do not await confirmation.
func (c *Controller) deliverUnitPush(pm *PushMachine) {
	c.ota.Dispatch(ota.UnitPushRequest{
		Tuple:           pm.Tuple,
		PushID:          pm.PushID,
		Headers:         pm.Headers,
		Body:            pm.Data,
		Authenticated:   pm.Authenticated,
		Trusted:         pm.Trusted,
		Last:            true,
		BearerRequired:  pm.Bearer.BearerRequired,
		Bearer:          pm.Bearer.Bearer,
		NetworkRequired: pm.Bearer.NetworkRequired,
		Network:         pm.Bearer.Network,
		Username:        pm.Username,
		Password:        pm.Password,
	})
	pm.Transition(pap.StateDelivered, pap.CodeOK)
	c.recordResult(pm)
	c.registry.RemovePush(pm)
}

// deliverOverSession sends one queued push over an established
// session. Unconfirmed pushes retire immediately; confirmed ones stay
// pending until the client confirms or aborts.
func (c *Controller) deliverOverSession(session *SessionMachine, pm *PushMachine, last bool) {
	if pm.Confirmed(session.PreferConfirmed) {
		c.ota.Dispatch(ota.ConfirmedPushRequest{
			ServerPushID:  pm.PushID,
			SessionHandle: session.SessionID,
			Headers:       pm.Headers,
			Body:          pm.Data,
			Authenticated: pm.Authenticated,
			Trusted:       pm.Trusted,
			Last:          last,
		})
		logger.DebugF("[push %s] Confirmed push sent over session %d", pm.PiPushID, session.SessionID)
		return
	}
	c.ota.Dispatch(ota.PushRequest{
		SessionHandle: session.SessionID,
		Headers:       pm.Headers,
		Body:          pm.Data,
		Authenticated: pm.Authenticated,
		Trusted:       pm.Trusted,
		Last:          last,
	})
	pm.Transition(pap.StateDelivered, pap.CodeOK)
	c.recordResult(pm)
	c.registry.RemovePush(pm)
}

// requestSession asks the device to establish a push session. The
// request itself travels connectionless, to the client's registered
// push port.
func (c *Controller) requestSession(session *SessionMachine, pm *PushMachine) {
	headers := make(http.Header)
	if id := pm.Headers.Get("X-WAP-Application-Id"); id != "" {
		headers.Set("X-WAP-Application-Id", id)
	}
	c.ota.Dispatch(ota.SessionRequest{
		Tuple:   session.Tuple.WithRemotePort(ota.ConnectionlessPushPort),
		Headers: headers,
		PushID:  pm.PushID,
	})
	logger.InfoF("[push %s] Session requested for %s", pm.PiPushID, session.PiClientAddress)
}

// handleConnect stores the device-assigned session id and
// capabilities, answers the application layer, and flushes the pushes
// queued while the session was being established. A capability
// mismatch voids the queued batch but keeps the session.
func (c *Controller) handleConnect(ind ota.ConnectInd) {
	session := c.registry.SessionByRemote(ind.Tuple)
	if session == nil {
		logger.InfoF("[session %d] Connect from unknown client %s, adopting", ind.SessionID, ind.Tuple.RemoteAddress)
		session = &SessionMachine{
			SessionID:       NoSessionID,
			PiClientAddress: ind.Tuple.RemoteAddress,
			Tuple:           ind.Tuple,
			PreferConfirmed: true,
		}
		c.registry.AddSession(session)
	}
	session.SessionID = ind.SessionID
	session.Tuple = ind.Tuple
	session.ClientCaps = ind.RequestedCapabilities
	for _, pm := range session.Pushes {
		pm.SessionID = ind.SessionID
	}

	c.appl.Dispatch(ota.ConnectResponse{
		SessionID:              ind.SessionID,
		NegotiatedCapabilities: ind.RequestedCapabilities,
	})

	if !capabilitiesCompatible(session.AssumedCaps, session.ClientCaps) {
		logger.WarnF("[session %d] Client capabilities below assumed, voiding queued pushes", session.SessionID)
		for _, pm := range append([]*PushMachine(nil), session.Pushes...) {
			pm.Transition(pap.StateAborted, pap.CodeCapabilitiesMismatch)
			c.recordResult(pm)
			c.respond(pm.PiPushID, pm.URL, pap.CodeCapabilitiesMismatch)
			c.registry.RemovePush(pm)
		}
		return
	}

	c.deliverPendingPushes(session)
}

// deliverPendingPushes flushes a session's queue after connect,
// re-evaluating each push's delivery window on the way out.
func (c *Controller) deliverPendingPushes(session *SessionMachine) {
	queued := append([]*PushMachine(nil), session.Pushes...)
	now := time.Now().UTC()
	for i, pm := range queued {
		switch policy.DeliveryTimeConstraints(pm.DeliverBefore, pm.DeliverAfter, now) {
		case policy.TimeExpired:
			logger.WarnF("[push %s] Expired while awaiting session", pm.PiPushID)
			c.drop(pm, pap.StateExpired, pap.CodeForbidden)
		case policy.TimeTooEarly:
			logger.DebugF("[push %s] Still too early, stays queued", pm.PiPushID)
		default:
			c.deliverOverSession(session, pm, i == len(queued)-1)
		}
	}
}

// handleDisconnect tears down a session and aborts everything still
// queued under it.
func (c *Controller) handleDisconnect(ind ota.DisconnectInd) {
	session := c.registry.SessionByID(ind.SessionHandle)
	if session == nil {
		logger.WarnF("[session %d] Disconnect for unknown session", ind.SessionHandle)
		return
	}
	logger.InfoF("[session %d] Client disconnected, %d push(es) aborted", session.SessionID, len(session.Pushes))
	for _, pm := range append([]*PushMachine(nil), session.Pushes...) {
		pm.Transition(pap.StateAborted, pap.CodeClientAborted)
		c.recordResult(pm)
		c.respond(pm.PiPushID, pm.URL, pap.CodeClientAborted)
	}
	c.registry.RemoveSession(session)
}

// handleConfirm retires a confirmed push once the client acknowledges
// it. The session stays.
func (c *Controller) handleConfirm(ind ota.PushConfirmInd) {
	session := c.registry.SessionByID(ind.SessionHandle)
	if session == nil {
		logger.WarnF("[session %d] Confirmation for unknown session", ind.SessionHandle)
		return
	}
	pm := c.registry.PushInSession(session, ind.ServerPushID)
	if pm == nil {
		logger.WarnF("[session %d] Confirmation for unknown push %d", ind.SessionHandle, ind.ServerPushID)
		return
	}
	pm.Transition(pap.StateDelivered, pap.CodeOK)
	c.recordResult(pm)
	c.registry.RemovePush(pm)
}

// handleAbort records a client abort and tears the whole session
// down, voiding the remaining queued pushes with the same translated
// reason.
func (c *Controller) handleAbort(ind ota.PushAbortInd) {
	session := c.registry.SessionByID(ind.SessionHandle)
	if session == nil {
		logger.WarnF("[session %d] Abort for unknown session", ind.SessionHandle)
		return
	}
	code := ind.Reason.ToPAP()
	logger.InfoF("[session %d] Client aborted push %d, reason %s", ind.SessionHandle, ind.PushID, ind.Reason)
	for _, pm := range append([]*PushMachine(nil), session.Pushes...) {
		pm.Transition(pap.StateAborted, code)
		c.recordResult(pm)
		c.respond(pm.PiPushID, pm.URL, code)
	}
	c.registry.RemoveSession(session)
}

// drop moves a push into a terminal state, reports it, and removes it
// from its registry, reclaiming a pushless session on the way.
func (c *Controller) drop(pm *PushMachine, state pap.State, code pap.Code) {
	pm.Transition(state, code)
	c.recordResult(pm)
	c.respond(pm.PiPushID, pm.URL, code)
	c.registry.RemovePush(pm)
}

func (c *Controller) respond(piPushID, url string, code pap.Code) {
	resp := pap.NewResponse(piPushID, c.senderName, code)
	resp.SenderAddress = url
	c.responder.Respond(resp)
}

// recordResult persists a push's terminal delivery status so it can
// be queried after the machine is gone.
func (c *Controller) recordResult(pm *PushMachine) {
	if c.results == nil || !pm.State.Terminal() {
		return
	}
	result := store.DeliveryResult{
		PushID:    pm.PushID,
		PiPushID:  pm.PiPushID,
		Address:   pm.Tuple.RemoteAddress,
		State:     pm.State.String(),
		Code:      int(pm.Code),
		Desc:      pm.Desc,
		EventTime: pm.EventTime,
	}
	if err := c.results.Save(context.Background(), result); err != nil {
		logger.ErrorF("[push %s] Cannot record delivery result: %s", pm.PiPushID, err)
	}
}

// capabilitiesCompatible reports whether every capability the
// initiator assumed is present among the ones the client requested.
// An initiator that assumed nothing is always satisfied.
func capabilitiesCompatible(assumed, requested []string) bool {
	for _, want := range assumed {
		found := false
		for _, have := range requested {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
