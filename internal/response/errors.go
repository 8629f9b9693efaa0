// Package response classifies and parses the three heterogeneous reply
// encodings a GlobalProtect gateway can send in response to an HTTP-layer
// request: well-formed XML, the legacy "challenge script" blob, or a raw
// error body.
package response

import (
	"errors"
	"fmt"
)

// Sentinel errors for the integer-result remapping in spec.md §4.2.
var (
	ErrInvalidCredentials = errors.New("response: invalid credentials")
	ErrInvalidClientCert  = errors.New("response: invalid client certificate")
	ErrEmptyResponse      = errors.New("response: empty response from server")
	ErrMalformedResponse  = errors.New("response: malformed response")
	ErrNoSuchGateway      = errors.New("response: GlobalProtect gateway/portal does not exist")
	ErrAuthCookieInvalid  = errors.New("response: invalid authentication cookie")
)

// ServerError wraps an arbitrary <error> message that didn't match one of
// the well-known sentinel strings.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("response: server error: %s", e.Message)
}

// ChallengeRequired signals that the gateway wants additional user input
// (e.g. a one-time passcode) before the negotiation can proceed.
type ChallengeRequired struct {
	Prompt   string
	InputStr string
}

func (e *ChallengeRequired) Error() string {
	return fmt.Sprintf("response: challenge required: %s", e.Prompt)
}

// Result-sentinel integer codes recognised before body inspection, mirroring
// the C source's -EACCES/-EBADMSG special-casing in gpst_xml_or_error.
const (
	ResultInvalidCredentials = -13 // -EACCES
	ResultInvalidClientCert  = -74 // -EBADMSG
)
