// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"errors"
	"fmt"
)

// SyntaxError reports a malformed datagram: short buffers, length fields
// that disagree with the actual data, or trailing bytes after the payload
// chain. It is fatal to the message being parsed, never to the socket.
type SyntaxError struct {
	Reason string
}

func (e *SyntaxError) Error() string {
	return "invalid syntax: " + e.Reason
}

func syntaxErrorf(format string, a ...interface{}) *SyntaxError {
	return &SyntaxError{Reason: fmt.Sprintf(format, a...)}
}

// IsSyntaxError reports whether any error in err's chain is a SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// UnsupportedCriticalPayloadError is returned when the payload chain
// contains one or more payloads with the critical bit set whose type codes
// this implementation does not recognize. RFC 7296, Section 2.5 requires
// rejecting the whole message and signaling the offending types back to
// the peer, so the codes are carried in the error.
type UnsupportedCriticalPayloadError struct {
	PayloadTypes []IKEPayloadType
}

func (e *UnsupportedCriticalPayloadError) Error() string {
	return fmt.Sprintf("unsupported critical payload types: %v", e.PayloadTypes)
}

// ErrUnprotectedPayloads is returned by the protected decode path when a
// message of a protected exchange does not start with an SK payload.
var ErrUnprotectedPayloads = errors.New("message contains unprotected payloads")
