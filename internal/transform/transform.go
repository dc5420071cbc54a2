// Package transform normalizes a push submission for delivery: header
// rewriting, transport port selection and content conversion. All of
// it is computed synchronously in the controller's turn.
package transform

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/open-wap/go-push-gateway/internal/logger"
	"github.com/open-wap/go-push-gateway/internal/ota"
	"github.com/open-wap/go-push-gateway/internal/pap"
)

var (
	// ErrNoHeaders means the submission carried no push headers at
	// all; no address tuple can be resolved for it.
	ErrNoHeaders = errors.New("push submission carries no headers")
	// ErrNoContentType means the headers lack the mandatory
	// content-type declaration.
	ErrNoContentType = errors.New("push headers carry no content type")
	// ErrNotConvertible means a registered converter rejected the
	// content.
	ErrNotConvertible = errors.New("push content does not convert")
)

// Result is what the pipeline resolved: the transport tuple to deliver
// over and the (possibly rewritten) content type.
type Result struct {
	Tuple       ota.AddrTuple
	ContentType string
}

// defaultApplicationID is the assigned code of the default markup
// agent (wml.ua); a header naming it is redundant and removed.
const defaultApplicationID = "2"

var winaApplicationIDs = map[string]string{
	"*":        "0",
	"push.sia": "1",
	"wml.ua":   "2",
	"push.mms": "4",
}

// Message runs the transform pipeline over a submission, mutating its
// headers and data in place. The returned error distinguishes a
// missing-header failure (no tuple resolved) from a conversion
// failure (tuple resolved, content undeliverable).
func Message(sub *pap.Submission, connectionless bool) (*Result, error) {
	if len(sub.PushHeaders) == 0 {
		logger.WarnF("[push %s] No push headers, cannot accept", sub.PiPushID)
		return nil, ErrNoHeaders
	}

	checkApplicationIDHeader(sub.PushHeaders)

	var cliPort, servPort int
	if connectionless {
		cliPort = ota.ConnectionlessPushPort
		servPort = ota.ConnectionlessServPort
	} else {
		cliPort = ota.ConnectedCliPort
		servPort = ota.ConnectedServPort
	}
	tuple := ota.NewAddrTuple(sub.AddressValue, cliPort, servPort)

	contentType, charset := splitContentType(sub.PushHeaders.Get("Content-Type"))
	if contentType == "" {
		logger.WarnF("[push %s] No content type declared", sub.PiPushID)
		return &Result{Tuple: tuple}, ErrNoContentType
	}

	// A no-transform cache directive passes the message through
	// unmodified; that still counts as a transform success.
	if !Transformable(sub.PushHeaders) || sub.PushData == nil {
		logger.DebugF("[push %s] Content passed through untransformed", sub.PiPushID)
		return &Result{Tuple: tuple, ContentType: contentType}, nil
	}

	content := Content{Body: sub.PushData, Type: contentType, Charset: charset}
	if !ConvertContent(&content) {
		logger.WarnF("[push %s] Push content erroneous, cannot accept", sub.PiPushID)
		return &Result{Tuple: tuple}, ErrNotConvertible
	}

	sub.PushData = content.Body
	markTransformation(sub.PushHeaders, content)

	logger.DebugF("[push %s] Content and headers valid, type %s", sub.PiPushID, content.Type)
	return &Result{Tuple: tuple, ContentType: content.Type}, nil
}

// Transformable reports whether a no-transform cache directive is
// absent from the headers.
func Transformable(headers http.Header) bool {
	for _, directive := range headers.Values("Cache-Control") {
		if strings.TrimSpace(directive) == "no-transform" {
			return false
		}
	}
	return true
}

// checkApplicationIDHeader normalizes X-WAP-Application-Id: an id
// resolving to the default markup agent adds nothing and is removed,
// anything else is kept in its coded form.
func checkApplicationIDHeader(headers http.Header) {
	value := headers.Get("X-WAP-Application-Id")
	if value == "" {
		return
	}

	normalized := parseApplicationID(value)
	headers.Del("X-WAP-Application-Id")
	if normalized != defaultApplicationID {
		headers.Set("X-WAP-Application-Id", normalized)
	}
}

// parseApplicationID reduces a header value to an assigned application
// code: an app-encoding parameter wins, then a known absolute URI,
// and anything unrecognized defaults to the markup agent.
func parseApplicationID(value string) string {
	if _, coded, found := strings.Cut(value, ";app-encoding="); found {
		return strings.TrimSpace(coded)
	}
	if _, err := strconv.Atoi(value); err == nil {
		return value
	}
	for uri, code := range winaApplicationIDs {
		if strings.Contains(strings.ToLower(value), uri) {
			return code
		}
	}
	return defaultApplicationID
}

func splitContentType(header string) (contentType, charset string) {
	contentType, params, _ := strings.Cut(header, ";")
	contentType = strings.TrimSpace(contentType)
	for _, param := range strings.Split(params, ";") {
		name, value, found := strings.Cut(strings.TrimSpace(param), "=")
		if found && strings.EqualFold(name, "charset") {
			charset = strings.Trim(value, `"`)
		}
	}
	return contentType, charset
}

// markTransformation rewrites the content headers after a conversion
// so the delivered message describes its own body.
func markTransformation(headers http.Header, content Content) {
	headers.Set("Content-Type", content.Type)
	headers.Set("Content-Length", strconv.Itoa(len(content.Body)))
}
