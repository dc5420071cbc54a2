// Package server is the submission intake: an HTTP front that turns
// push requests into submission events and waits for the controller's
// asynchronous push response before answering the client.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/open-wap/go-push-gateway/internal/logger"
	"github.com/open-wap/go-push-gateway/internal/pap"
	"github.com/open-wap/go-push-gateway/internal/store"
)

// PushPath is the one path push submissions are accepted on; anything
// else is answered 404.
const PushPath = "/cgi-bin/wap-push.cgi"

// StatusPath answers delivery-result queries from the result store.
const StatusPath = "/cgi-bin/wap-push-status.cgi"

const responseTimeout = 30 * time.Second

// Submitter accepts validated submissions for asynchronous handling.
type Submitter interface {
	Submit(sub *pap.Submission, url string)
}

// submissionRequest is the wire form of a push request. It stands in
// for the MIME multipart and PAP XML parsing, which another component
// owns; the fields mirror the push-message control entity.
type submissionRequest struct {
	PiPushID       string              `json:"push_id"`
	AddressValue   string              `json:"address_value"`
	DeliveryMethod string              `json:"delivery_method,omitempty"`
	Priority       string              `json:"priority,omitempty"`
	DeliverAfter   string              `json:"deliver_after_timestamp,omitempty"`
	DeliverBefore  string              `json:"deliver_before_timestamp,omitempty"`
	PushHeaders    map[string][]string `json:"push_headers"`
	PushData       string              `json:"push_data,omitempty"`

	NetworkRequired bool   `json:"network_required,omitempty"`
	Network         string `json:"network,omitempty"`
	BearerRequired  bool   `json:"bearer_required,omitempty"`
	Bearer          string `json:"bearer,omitempty"`

	ProgressNotesRequested bool   `json:"progress_notes_requested,omitempty"`
	NotifyRequestedTo      string `json:"ppg_notify_requested_to,omitempty"`

	PiCapabilities []string `json:"pi_capabilities,omitempty"`
}

// Intake owns the HTTP front and the map of submissions still waiting
// for their push response.
type Intake struct {
	submitter Submitter
	results   store.ResultStore
	pending   sync.Map
}

func NewIntake(submitter Submitter, results store.ResultStore) *Intake {
	return &Intake{submitter: submitter, results: results}
}

// SetSubmitter wires the controller in after construction; the intake
// and the controller reference each other, so one side has to be
// connected late.
func (in *Intake) SetSubmitter(submitter Submitter) {
	in.submitter = submitter
}

// Respond delivers a push response to the HTTP client still blocked
// on its submission. Responses for submissions nobody waits on are
// dropped.
func (in *Intake) Respond(resp *pap.Response) {
	waiter, ok := in.pending.LoadAndDelete(resp.PiPushID)
	if !ok {
		logger.DebugF("[push %s] No pending submitter for response, dropping", resp.PiPushID)
		return
	}
	waiter.(chan *pap.Response) <- resp
}

func (in *Intake) handlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		logger.WarnF("[intake] %s on %s rejected", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.WarnF("[intake] Cannot read submission body: %v", err)
		writeBadMessage(w, "")
		return
	}

	var req submissionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		logger.WarnF("[intake] Undecodable submission: %v", err)
		writeBadMessage(w, string(body))
		return
	}

	sub, err := buildSubmission(&req, r)
	if err != nil {
		logger.WarnF("[intake] Invalid submission: %v", err)
		writeBadMessage(w, string(body))
		return
	}

	waiter := make(chan *pap.Response, 1)
	if _, loaded := in.pending.LoadOrStore(sub.PiPushID, waiter); loaded {
		logger.WarnF("[push %s] Already being submitted, rejecting", sub.PiPushID)
		writeResponse(w, pap.NewResponse(sub.PiPushID, "push-gateway", pap.CodeDuplicatePushID))
		return
	}

	// Correlation id ties intake log lines to controller ones when the
	// same provider push id is reused across requests.
	logger.InfoF("[push %s] Submission %.8s accepted from %s", sub.PiPushID, uuid.NewString(), r.RemoteAddr)
	in.submitter.Submit(sub, r.URL.String())

	select {
	case resp := <-waiter:
		writeResponse(w, resp)
	case <-time.After(responseTimeout):
		in.pending.Delete(sub.PiPushID)
		logger.ErrorF("[push %s] No push response within %v", sub.PiPushID, responseTimeout)
		writeResponse(w, pap.NewResponse(sub.PiPushID, "push-gateway", pap.CodeServiceFailure))
	}
}

func (in *Intake) handleStatus(w http.ResponseWriter, r *http.Request) {
	piPushID := r.URL.Query().Get("push_id")
	result, err := in.results.Get(r.Context(), piPushID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrEmptyPushID) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		logger.ErrorF("[push %s] Status query failed: %v", piPushID, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.WarnF("[push %s] Cannot write status response: %v", piPushID, err)
	}
}

// buildSubmission validates the wire form into a submission. The
// username and password ride in as query variables, the way the
// short-message service expects to receive them.
func buildSubmission(req *submissionRequest, r *http.Request) (*pap.Submission, error) {
	method, err := pap.ParseDeliveryMethod(req.DeliveryMethod)
	if err != nil {
		return nil, err
	}
	sub, err := pap.NewSubmission(req.PiPushID, req.AddressValue, method)
	if err != nil {
		return nil, err
	}
	if req.Priority != "" {
		sub.Priority = req.Priority
	}
	if req.DeliverAfter != "" {
		if sub.DeliverAfter, err = pap.ParseTimestamp(req.DeliverAfter); err != nil {
			return nil, err
		}
	}
	if req.DeliverBefore != "" {
		if sub.DeliverBefore, err = pap.ParseTimestamp(req.DeliverBefore); err != nil {
			return nil, err
		}
	}
	for name, values := range req.PushHeaders {
		for _, value := range values {
			sub.PushHeaders.Add(name, value)
		}
	}
	if req.PushData != "" {
		sub.PushData = []byte(req.PushData)
	}
	sub.NetworkRequired = req.NetworkRequired
	sub.Network = req.Network
	sub.BearerRequired = req.BearerRequired
	sub.Bearer = req.Bearer
	sub.ProgressNotesRequested = req.ProgressNotesRequested
	sub.NotifyRequestedTo = req.NotifyRequestedTo
	sub.PiCapabilities = req.PiCapabilities

	query := r.URL.Query()
	sub.Username = query.Get("username")
	sub.Password = query.Get("password")
	return sub, nil
}

// writeResponse renders a push response. Every PAP-level reply rides
// HTTP 202, the ones reporting an error included.
func writeResponse(w http.ResponseWriter, resp *pap.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.WarnF("[push %s] Cannot write push response: %v", resp.PiPushID, err)
	}
}

func writeBadMessage(w http.ResponseWriter, fragment string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(pap.NewBadMessage(fragment)); err != nil {
		logger.WarnF("[intake] Cannot write bad-message response: %v", err)
	}
}

// Handler builds the intake mux. Unknown paths get a plain 404.
func (in *Intake) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(PushPath, in.handlePush)
	mux.HandleFunc(StatusPath, in.handleStatus)
	return mux
}

type IntakeCloseCallback struct {
	server *http.Server
}

func (ic *IntakeCloseCallback) Invoke(ctx context.Context) error {
	logger.InfoF("Closing submission intake")
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ic.server.Shutdown(ctx)
}

// StartServer runs the intake HTTP front. It blocks until the
// listener fails or is shut down through the cleaner.
func (in *Intake) StartServer(port int) (*IntakeCloseCallback, func() error) {
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(port),
		Handler: in.Handler(),
	}
	callback := &IntakeCloseCallback{server: srv}
	run := func() error {
		logger.InfoF("Submission intake listening on %s", srv.Addr)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
	return callback, run
}
