package gateway

import (
	"testing"

	"github.com/open-wap/go-push-gateway/internal/ota"
	"github.com/open-wap/go-push-gateway/internal/pap"
)

func newTestPush(t *testing.T, piPushID string, method pap.DeliveryMethod) *PushMachine {
	t.Helper()
	sub, err := pap.NewSubmission(piPushID, "1.2.3.4", method)
	if err != nil {
		t.Fatalf("NewSubmission: %v", err)
	}
	tuple := ota.NewAddrTuple("1.2.3.4", ota.ConnectedCliPort, ota.ConnectedServPort)
	pm, err := NewPushMachine(sub, tuple, "/cgi-bin/wap-push.cgi")
	if err != nil {
		t.Fatalf("NewPushMachine: %v", err)
	}
	return pm
}

func TestPiIDScope(t *testing.T) {
	r := NewRegistry()
	tuple := ota.NewAddrTuple("1.2.3.4", ota.ConnectedCliPort, ota.ConnectedServPort)
	session, err := NewSessionMachine("1.2.3.4", tuple, nil)
	if err != nil {
		t.Fatalf("NewSessionMachine: %v", err)
	}
	r.AddSession(session)
	session.Pushes = append(session.Pushes, newTestPush(t, "p1", pap.MethodConfirmed))
	r.AddUnitPush(newTestPush(t, "p2", pap.MethodUnconfirmed))

	if !r.PiIDInScope(session, "p1") {
		t.Error("p1 is queued under the session")
	}
	if !r.PiIDInScope(session, "p2") {
		t.Error("p2 is a live unit push, in scope for every submission")
	}
	if !r.PiIDInScope(nil, "p2") {
		t.Error("unit pushes are in scope without a session")
	}
	if r.PiIDInScope(nil, "p1") {
		t.Error("a session-scoped id is out of scope for a sessionless submission")
	}
	if r.PiIDInScope(session, "p3") {
		t.Error("p3 was never registered")
	}
}

func TestPushlessSessionReclamation(t *testing.T) {
	r := NewRegistry()
	tuple := ota.NewAddrTuple("1.2.3.4", ota.ConnectedCliPort, ota.ConnectedServPort)
	session, _ := NewSessionMachine("1.2.3.4", tuple, nil)
	r.AddSession(session)
	pm := newTestPush(t, "p1", pap.MethodConfirmed)
	session.Pushes = append(session.Pushes, pm)

	r.RemovePush(pm)
	if r.SessionByClientAddress("1.2.3.4") != nil {
		t.Error("a session that never got a session id must go with its last push")
	}
}

func TestEstablishedSessionSurvivesLastPush(t *testing.T) {
	r := NewRegistry()
	tuple := ota.NewAddrTuple("1.2.3.4", ota.ConnectedCliPort, ota.ConnectedServPort)
	session, _ := NewSessionMachine("1.2.3.4", tuple, nil)
	session.SessionID = 7
	r.AddSession(session)
	pm := newTestPush(t, "p1", pap.MethodConfirmed)
	session.Pushes = append(session.Pushes, pm)

	r.RemovePush(pm)
	if r.SessionByID(7) == nil {
		t.Error("a session with an assigned id outlives its pushes")
	}
}

func TestSessionLookups(t *testing.T) {
	r := NewRegistry()
	tuple := ota.NewAddrTuple("10.0.0.1", ota.ConnectedCliPort, ota.ConnectedServPort)
	session, _ := NewSessionMachine("10.0.0.1", tuple, nil)
	r.AddSession(session)

	if r.SessionByClientAddress("10.0.0.1") != session {
		t.Error("lookup by client address failed")
	}
	if r.SessionByRemote(tuple) != session {
		t.Error("lookup by remote tuple failed")
	}
	if r.SessionByID(NoSessionID) != nil {
		t.Error("an unset session id must never match")
	}

	r.RemoveSession(session)
	if r.SessionByClientAddress("10.0.0.1") != nil {
		t.Error("removed session still findable")
	}
}

func TestTerminalStateAbsorbs(t *testing.T) {
	pm := newTestPush(t, "p1", pap.MethodUnconfirmed)
	if !pm.Transition(pap.StateDelivered, pap.CodeOK) {
		t.Fatal("pending to delivered must be allowed")
	}
	if pm.Transition(pap.StateAborted, pap.CodeClientAborted) {
		t.Error("no transition may leave a terminal state")
	}
	if pm.State != pap.StateDelivered || pm.Code != pap.CodeOK {
		t.Errorf("terminal status must stay intact, got %s (%d)", pm.State, pm.Code)
	}
}
