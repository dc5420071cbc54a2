package pap

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Submission is one validated push request from the submission intake,
// the structured form of a PAP push-message control entity plus its
// content entity.
type Submission struct {
	PiPushID       string
	AddressValue   string
	DeliveryMethod DeliveryMethod
	Priority       string
	DeliverAfter   *Timestamp
	DeliverBefore  *Timestamp
	PushHeaders    http.Header
	PushData       []byte

	NetworkRequired bool
	Network         string
	BearerRequired  bool
	Bearer          string

	ProgressNotesRequested bool
	NotifyRequestedTo      string

	Username string
	Password string

	// PiCapabilities are the capabilities the initiator assumes the
	// client to have; empty means the initiator knows the client.
	PiCapabilities []string
}

var ErrNoPushID = errors.New("push submission carries no push id")

// NewSubmission builds a fully populated submission. A push id and a
// client address are mandatory; nothing partially initialized escapes
// this constructor.
func NewSubmission(piPushID, addressValue string, method DeliveryMethod) (*Submission, error) {
	if piPushID == "" {
		return nil, ErrNoPushID
	}
	if addressValue == "" {
		return nil, fmt.Errorf("push %s: no address value", piPushID)
	}
	return &Submission{
		PiPushID:       piPushID,
		AddressValue:   addressValue,
		DeliveryMethod: method,
		Priority:       "medium",
		PushHeaders:    make(http.Header),
	}, nil
}

// Response is the structured push-response document sent back to the
// initiator. Every PAP-level response rides HTTP status 202,
// including the ones that report an error.
type Response struct {
	PiPushID      string `json:"push_id"`
	SenderName    string `json:"sender_name"`
	SenderAddress string `json:"sender_address,omitempty"`
	ReplyTime     string `json:"reply_time"`
	Code          Code   `json:"code"`
	Desc          string `json:"desc"`
}

// NewResponse builds a push response stamped with the current reply
// time.
func NewResponse(piPushID, senderName string, code Code) *Response {
	return &Response{
		PiPushID:   piPushID,
		SenderName: senderName,
		ReplyTime:  FormatTime(time.Now()),
		Code:       code,
		Desc:       code.Describe(),
	}
}

// BadMessage is the badmessage-response sent when a submission is
// rejected before any push state exists.
type BadMessage struct {
	Code     Code   `json:"code"`
	Desc     string `json:"desc"`
	Fragment string `json:"bad_message_fragment,omitempty"`
}

func NewBadMessage(fragment string) *BadMessage {
	return &BadMessage{
		Code:     CodeBadRequest,
		Desc:     CodeBadRequest.Describe(),
		Fragment: EscapeFragment(fragment),
	}
}

// EscapeFragment strips the characters not allowed in an attribute
// value from a message fragment.
func EscapeFragment(fragment string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '<', '>', '&':
			return -1
		}
		return r
	}, fragment)
}
