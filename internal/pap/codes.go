// Package pap holds the submitter-facing vocabulary of the push proxy:
// submission and response records, result codes, message states and the
// PAP timestamp format.
package pap

// Code is a PAP result code, reported to the push initiator in
// push-response and result-notification documents.
type Code int

const (
	CodeOK                         Code = 1000
	CodeAcceptedForProcessing      Code = 1001
	CodeBadRequest                 Code = 2000
	CodeForbidden                  Code = 2001
	CodeAddressError               Code = 2002
	CodeCapabilitiesMismatch       Code = 2005
	CodeDuplicatePushID            Code = 2007
	CodeInternalServerError        Code = 3000
	CodeTransformationFailure      Code = 3006
	CodeRequiredBearerNotAvailable Code = 3010
	CodeServiceFailure             Code = 4000
	CodeClientAborted              Code = 5000

	// Client abort codes mapped from the device protocol's abort
	// reasons, one per reason.
	CodeAbortUserReq Code = 5026
	CodeAbortUserRfs Code = 5027
	CodeAbortUserPnd Code = 5028
	CodeAbortUserDcr Code = 5029
	CodeAbortUserDcu Code = 5030
)

var codeDescriptions = map[Code]string{
	CodeOK:                         "The request succeeded",
	CodeAcceptedForProcessing:      "The request has been accepted for processing",
	CodeBadRequest:                 "Not understood due to malformed syntax",
	CodeForbidden:                  "Request was refused",
	CodeAddressError:               "The client specified not recognised",
	CodeCapabilitiesMismatch:       "Capabilities assumed by the initiator were not acceptable for the client specified",
	CodeDuplicatePushID:            "Push id supplied was not unique",
	CodeInternalServerError:        "Server could not fulfill the request due to an internal error",
	CodeTransformationFailure:      "Gateway was unable to perform a transformation of the message",
	CodeRequiredBearerNotAvailable: "Required bearer not available",
	CodeServiceFailure:             "The service failed. The client may re-attempt the operation",
	CodeClientAborted:              "The client aborted the operation. No reason given",
	CodeAbortUserReq:               "Client requested abort",
	CodeAbortUserRfs:               "Client refused push message. Do not try again",
	CodeAbortUserPnd:               "Push message cannot be delivered to intended destination",
	CodeAbortUserDcr:               "Push message discarded due to resource shortage",
	CodeAbortUserDcu:               "Content type of the push message cannot be processed",
}

// Describe gives the human readable description of a result code.
func (c Code) Describe() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown PAP code"
}
