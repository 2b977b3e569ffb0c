package wsclient

import "fmt"

// Error kinds a Client or Connection can return. ConnectionError is
// the general case; TimeoutError and EOFConnectionError specialize it
// by embedding it, so for a timeout errors.As succeeds with both a
// *TimeoutError target and a *ConnectionError target.

// BadURIError is raised when a WebSocket address is not parseable or
// its scheme is not "ws"/"wss". Raised at construction or lazy connect.
type BadURIError struct {
	URI string
	Err error
}

func (e *BadURIError) Error() string {
	return fmt.Sprintf("wsclient: bad uri %q: %v", e.URI, e.Err)
}

func (e *BadURIError) Unwrap() error { return e.Err }

// BadOpcodeError is raised when a caller supplies an unrecognized
// opcode to Send. An unknown opcode value read from the wire surfaces
// as a ConnectionError wrapping ErrInvalidOpcode instead.
type BadOpcodeError struct {
	Opcode Opcode
}

func (e *BadOpcodeError) Error() string {
	return fmt.Sprintf("wsclient: bad opcode %#x", uint8(e.Opcode))
}

// ConnectionError is the generic transport or handshake failure. It
// carries a structured data bag describing the stream and the
// underlying cause.
type ConnectionError struct {
	// Op names the operation that failed, e.g. "dial", "handshake",
	// "read", "write", "close".
	Op string
	// Remote is the peer address, when known.
	Remote string
	// Err is the underlying cause.
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Remote != "" {
		return fmt.Sprintf("wsclient: %s %s: %v", e.Op, e.Remote, e.Err)
	}
	return fmt.Sprintf("wsclient: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError specializes ConnectionError (code TIMED_OUT): a
// transport operation exceeded its deadline.
type TimeoutError struct {
	ConnectionError
}

// Code returns the taxonomy code for this error kind.
func (e *TimeoutError) Code() string { return "TIMED_OUT" }

// As lets errors.As match a *ConnectionError target.
func (e *TimeoutError) As(target any) bool {
	if t, ok := target.(**ConnectionError); ok {
		*t = &e.ConnectionError
		return true
	}
	return false
}

// EOFConnectionError specializes ConnectionError (code EOF): the peer
// closed the underlying stream unexpectedly.
type EOFConnectionError struct {
	ConnectionError
}

// Code returns the taxonomy code for this error kind.
func (e *EOFConnectionError) Code() string { return "EOF" }

// As lets errors.As match a *ConnectionError target.
func (e *EOFConnectionError) As(target any) bool {
	if t, ok := target.(**ConnectionError); ok {
		*t = &e.ConnectionError
		return true
	}
	return false
}

func newConnectionError(op, remote string, err error) error {
	return &ConnectionError{Op: op, Remote: remote, Err: err}
}

func newTimeoutError(op, remote string, err error) error {
	return &TimeoutError{ConnectionError{Op: op, Remote: remote, Err: err}}
}

func newEOFError(op, remote string, err error) error {
	return &EOFConnectionError{ConnectionError{Op: op, Remote: remote, Err: err}}
}
