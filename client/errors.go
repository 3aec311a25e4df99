package client

import (
	"errors"
	"fmt"
)

// ErrUnknownMessage is returned when a caller names a message that does not
// appear in the catalog built from the handshake's message table.
var ErrUnknownMessage = errors.New("client: unknown message name")

// ErrBadHandshake is returned when the remote's sockclnt_create_reply
// table entry did not have the "<name>_<crc>" shape the handshake expects.
var ErrBadHandshake = errors.New("client: malformed message table entry from handshake")

// CrcMismatchError is returned the first time a message type is used whose
// compile-time CRC differs from the catalog entry downloaded at handshake
// time. Kept as its own type, distinct from MsgIDMismatchError; the two
// failure modes have different remedies (regenerate the schema vs. fix the
// dispatch).
type CrcMismatchError struct {
	Name     string
	Expected string
	Got      string
}

func (e *CrcMismatchError) Error() string {
	return fmt.Sprintf("client: message %s: CRC mismatch: have %s, catalog has %s", e.Name, e.Expected, e.Got)
}

// RemoteFailureError is returned when a reply's retval field is non-zero.
// Text is looked up in the error-code table parsed by
// schema.ParseErrorCodes, or left empty if the code is unknown.
type RemoteFailureError struct {
	Code int32
	Text string
}

func (e *RemoteFailureError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("client: remote failure, retval=%d", e.Code)
	}
	return fmt.Sprintf("client: remote failure, retval=%d (%s)", e.Code, e.Text)
}
