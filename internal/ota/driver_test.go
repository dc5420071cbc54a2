package ota

import (
	"net/http"
	"testing"
)

type recordingService struct {
	events chan Event
}

func newRecordingService() *recordingService {
	return &recordingService{events: make(chan Event, 8)}
}

func (s *recordingService) Dispatch(e Event) {
	s.events <- e
}

func TestDriverForwardsPushRequests(t *testing.T) {
	wsp := newRecordingService()
	wspUnit := newRecordingService()
	bearerbox := NewBearerboxAddress()
	bearerbox.Set("10.0.0.9")

	driver := NewDriver(wsp, wspUnit, bearerbox, ConnectionlessServPort)
	go driver.Run()
	defer driver.Shutdown()

	driver.Dispatch(ConfirmedPushRequest{ServerPushID: 1, SessionHandle: 3})
	if _, ok := (<-wsp.events).(ConfirmedPushRequest); !ok {
		t.Error("confirmed push requests go to the connection-oriented service")
	}

	driver.Dispatch(UnitPushRequest{PushID: 2})
	if _, ok := (<-wspUnit.events).(UnitPushRequest); !ok {
		t.Error("unit push requests go to the connectionless service")
	}
}

func TestDriverCompletesSessionRequest(t *testing.T) {
	wsp := newRecordingService()
	wspUnit := newRecordingService()
	bearerbox := NewBearerboxAddress()
	bearerbox.Set("10.0.0.9")

	driver := NewDriver(wsp, wspUnit, bearerbox, ConnectionlessServPort)
	go driver.Run()
	defer driver.Shutdown()

	tuple := NewAddrTuple("1.2.3.4", ConnectionlessPushPort, ConnectionlessServPort)
	driver.Dispatch(SessionRequest{Tuple: tuple, PushID: 7, Headers: make(http.Header)})

	push, ok := (<-wspUnit.events).(UnitSessionPush)
	if !ok {
		t.Fatal("session requests leave as connectionless pushes")
	}
	if push.Headers.Get("Content-Type") != "application/vnd.wap.sia" {
		t.Errorf("missing session-initiation content type, got %q", push.Headers.Get("Content-Type"))
	}
	if push.Headers.Get("X-WAP-Application-Id") != "1" {
		t.Errorf("missing session-initiation application id, got %q", push.Headers.Get("X-WAP-Application-Id"))
	}
	if push.SIA.ContactPoint.Address != "10.0.0.9" || push.SIA.ContactPoint.Port != ConnectionlessServPort {
		t.Errorf("contact point %s:%d", push.SIA.ContactPoint.Address, push.SIA.ContactPoint.Port)
	}
}

func TestBearerboxAddress(t *testing.T) {
	bearerbox := NewBearerboxAddress()
	bearerbox.Set("192.0.2.10")
	if got := bearerbox.Get(); got != "192.0.2.10" {
		t.Errorf("a routable address passes through unchanged, got %q", got)
	}

	// Loopback resolution depends on the host's interfaces; it must
	// at least leave a usable address behind.
	bearerbox.Set("127.0.0.1")
	if bearerbox.Get() == "" {
		t.Fatal("the contact address must never be empty after Set")
	}
}
