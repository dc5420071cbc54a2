package transform

import (
	"errors"
	"net/http"
	"testing"

	"github.com/open-wap/go-push-gateway/internal/ota"
	"github.com/open-wap/go-push-gateway/internal/pap"
)

func newTestSubmission(t *testing.T) *pap.Submission {
	t.Helper()
	sub, err := pap.NewSubmission("p1", "1.2.3.4", pap.MethodUnconfirmed)
	if err != nil {
		t.Fatalf("NewSubmission: %v", err)
	}
	sub.PushHeaders.Set("Content-Type", "text/plain")
	sub.PushData = []byte("hello")
	return sub
}

func TestMessageWithoutHeaders(t *testing.T) {
	sub, _ := pap.NewSubmission("p1", "1.2.3.4", pap.MethodUnconfirmed)
	result, err := Message(sub, true)
	if !errors.Is(err, ErrNoHeaders) {
		t.Fatalf("expected ErrNoHeaders, got %v", err)
	}
	if result != nil {
		t.Error("no headers means no address tuple can be resolved")
	}
}

func TestMessageWithoutContentType(t *testing.T) {
	sub := newTestSubmission(t)
	sub.PushHeaders.Del("Content-Type")
	sub.PushHeaders.Set("X-WAP-Application-Id", "4")

	result, err := Message(sub, true)
	if !errors.Is(err, ErrNoContentType) {
		t.Fatalf("expected ErrNoContentType, got %v", err)
	}
	if result == nil || result.Tuple.RemoteAddress != "1.2.3.4" {
		t.Error("a missing content type still resolves the address tuple")
	}
}

func TestMessagePortSelection(t *testing.T) {
	sub := newTestSubmission(t)
	result, err := Message(sub, true)
	if err != nil {
		t.Fatalf("Message: %v", err)
	}
	if result.Tuple.RemotePort != ota.ConnectionlessPushPort || result.Tuple.LocalPort != ota.ConnectionlessServPort {
		t.Errorf("connectionless ports: got %d/%d", result.Tuple.RemotePort, result.Tuple.LocalPort)
	}

	sub = newTestSubmission(t)
	result, err = Message(sub, false)
	if err != nil {
		t.Fatalf("Message: %v", err)
	}
	if result.Tuple.RemotePort != ota.ConnectedCliPort || result.Tuple.LocalPort != ota.ConnectedServPort {
		t.Errorf("connected ports: got %d/%d", result.Tuple.RemotePort, result.Tuple.LocalPort)
	}
}

func TestDefaultApplicationIDRemoved(t *testing.T) {
	sub := newTestSubmission(t)
	sub.PushHeaders.Set("X-WAP-Application-Id", "http://wap.wireless.com/wml.ua")

	if _, err := Message(sub, true); err != nil {
		t.Fatalf("Message: %v", err)
	}
	if got := sub.PushHeaders.Get("X-WAP-Application-Id"); got != "" {
		t.Errorf("default application id must be removed, got %q", got)
	}
}

func TestNonDefaultApplicationIDKept(t *testing.T) {
	sub := newTestSubmission(t)
	sub.PushHeaders.Set("X-WAP-Application-Id", "http://wap.wireless.com/push.mms")

	if _, err := Message(sub, true); err != nil {
		t.Fatalf("Message: %v", err)
	}
	if got := sub.PushHeaders.Get("X-WAP-Application-Id"); got != "4" {
		t.Errorf("expected coded application id 4, got %q", got)
	}
}

func TestNoTransformDirectivePassesThrough(t *testing.T) {
	RegisterConverter("text/x-marker", "application/x-marker-binary", func(c *Content) ([]byte, error) {
		return []byte{0x01}, nil
	})

	sub := newTestSubmission(t)
	sub.PushHeaders.Set("Content-Type", "text/x-marker")
	sub.PushHeaders.Set("Cache-Control", "no-transform")

	result, err := Message(sub, true)
	if err != nil {
		t.Fatalf("Message: %v", err)
	}
	if result.ContentType != "text/x-marker" {
		t.Errorf("no-transform must keep the content type, got %s", result.ContentType)
	}
	if string(sub.PushData) != "hello" {
		t.Error("no-transform must keep the body unmodified")
	}
}

func TestConverterRewritesContent(t *testing.T) {
	RegisterConverter("text/x-compile", "application/x-compiled", func(c *Content) ([]byte, error) {
		return []byte{0xCA, 0xFE}, nil
	})

	sub := newTestSubmission(t)
	sub.PushHeaders.Set("Content-Type", "text/x-compile; charset=utf-8")

	result, err := Message(sub, true)
	if err != nil {
		t.Fatalf("Message: %v", err)
	}
	if result.ContentType != "application/x-compiled" {
		t.Errorf("expected converted type, got %s", result.ContentType)
	}
	if len(sub.PushData) != 2 || sub.PushData[0] != 0xCA {
		t.Errorf("expected converted body, got %v", sub.PushData)
	}
	if got := sub.PushHeaders.Get("Content-Type"); got != "application/x-compiled" {
		t.Errorf("headers must describe the converted body, got %q", got)
	}
	if got := sub.PushHeaders.Get("Content-Length"); got != "2" {
		t.Errorf("expected content length 2, got %q", got)
	}
}

func TestConverterFailure(t *testing.T) {
	RegisterConverter("text/x-broken", "application/x-never", func(c *Content) ([]byte, error) {
		return nil, errors.New("cannot compile")
	})

	sub := newTestSubmission(t)
	sub.PushHeaders.Set("Content-Type", "text/x-broken")

	result, err := Message(sub, true)
	if !errors.Is(err, ErrNotConvertible) {
		t.Fatalf("expected ErrNotConvertible, got %v", err)
	}
	if result == nil || result.Tuple.RemoteAddress != "1.2.3.4" {
		t.Error("a conversion failure still resolves the address tuple")
	}
}

func TestTransformable(t *testing.T) {
	headers := make(http.Header)
	if !Transformable(headers) {
		t.Error("no cache directives means transformable")
	}
	headers.Add("Cache-Control", "max-age=60")
	headers.Add("Cache-Control", "no-transform")
	if Transformable(headers) {
		t.Error("a no-transform directive blocks transcoding")
	}
}
