package wsclient

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// continuationBuffer accumulates a fragmented data message in
// progress. It exists only between the first non-final data frame and
// the final continuation frame that completes it.
type continuationBuffer struct {
	initialOpcode Opcode
	payload       []byte
	frameCount    int
}

// Connection owns a Transport and layers message push/pull over the
// frame codec: continuation reassembly, control-frame auto-response,
// and the close handshake.
type Connection struct {
	transport   Transport
	opts        Options
	readBuffer  *continuationBuffer
	isClosing   bool
	closeStatus *CloseCode
	logger      Logger
}

// NewConnection wraps transport with the Connection state machine.
func NewConnection(transport Transport, opts Options) *Connection {
	logger := opts.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	return &Connection{transport: transport, opts: opts, logger: logger}
}

// IsClosing reports whether the local side has sent Close and is
// waiting for the peer's Close.
func (c *Connection) IsClosing() bool { return c.isClosing }

// CloseStatus returns the status code carried by a received Close
// frame, if one has arrived.
func (c *Connection) CloseStatus() (CloseCode, bool) {
	if c.closeStatus == nil {
		return 0, false
	}
	return *c.closeStatus, true
}

// SetFragmentSize updates the maximum payload bytes per outgoing frame.
func (c *Connection) SetFragmentSize(n int) { c.opts.FragmentSize = n }

// FragmentSize returns the maximum payload bytes per outgoing frame.
func (c *Connection) FragmentSize() int { return c.opts.FragmentSize }

// PushMessage splits msg into frames and writes each one, logging a
// single structured line describing the message.
func (c *Connection) PushMessage(msg Message, masked bool) error {
	frames := msg.ToFrames(masked, c.opts.FragmentSize)
	for _, f := range frames {
		if err := WriteFrame(c.transport, f); err != nil {
			return newConnectionError("write", c.remoteString(), err)
		}
	}
	c.logger.Debug("wsclient: message sent",
		"opcode", msg.Opcode().String(),
		"length", msg.Len(),
		"frames", len(frames),
	)
	return nil
}

// PullMessage blocks on the transport until a complete Message is
// available: either a single control frame, a single-frame data
// message, or the reassembly of a fragmented data message with
// control frames transparently answered in between.
func (c *Connection) PullMessage() (Message, error) {
	for {
		frame, err := ReadFrame(c.transport)
		if err != nil {
			c.isClosing = false
			c.readBuffer = nil
			return Message{}, c.translateReadError(err)
		}

		if err := c.autoRespond(frame); err != nil {
			return Message{}, err
		}

		if frame.Opcode == OpcodeClose {
			c.readBuffer = nil
			return NewMessage(OpcodeClose, frame.Payload), nil
		}

		if frame.Opcode.IsControl() {
			if c.readBuffer == nil {
				return NewMessage(frame.Opcode, frame.Payload), nil
			}
			// Ping/Pong interleaved mid-fragmentation: already
			// answered by autoRespond, reassembly continues
			// untouched.
			continue
		}

		if frame.Opcode == OpcodeContinuation {
			if c.readBuffer == nil {
				return Message{}, newConnectionError("read", c.remoteString(), errors.New("continuation frame without a preceding data frame"))
			}
			c.readBuffer.payload = append(c.readBuffer.payload, frame.Payload...)
			c.readBuffer.frameCount++
			if !frame.Final {
				continue
			}
			msg := NewMessage(c.readBuffer.initialOpcode, c.readBuffer.payload)
			c.readBuffer = nil
			if msg.Opcode() == OpcodeText && !utf8.Valid(msg.Payload()) {
				return Message{}, newConnectionError("read", c.remoteString(), ErrInvalidUTF8)
			}
			return msg, nil
		}

		// Text or Binary.
		if !frame.Final {
			c.readBuffer = &continuationBuffer{
				initialOpcode: frame.Opcode,
				payload:       append([]byte{}, frame.Payload...),
				frameCount:    1,
			}
			continue
		}
		if frame.Opcode == OpcodeText && !utf8.Valid(frame.Payload) {
			return Message{}, newConnectionError("read", c.remoteString(), ErrInvalidUTF8)
		}
		return NewMessage(frame.Opcode, frame.Payload), nil
	}
}

// autoRespond answers Ping and Close frames transparently. The frame
// is never swallowed here — PullMessage still returns it (or folds it
// into reassembly) after autoRespond runs.
func (c *Connection) autoRespond(f Frame) error {
	switch f.Opcode {
	case OpcodePing:
		pong := NewPongMessage(f.Payload)
		if err := c.PushMessage(pong, f.Masked); err != nil {
			return err
		}
	case OpcodeClose:
		var status CloseCode
		if len(f.Payload) >= 2 {
			status = CloseCode(binary.BigEndian.Uint16(f.Payload[:2]))
		}
		c.closeStatus = &status
		if !status.IsValid() {
			c.logger.Warn("wsclient: received out-of-range close code", "code", uint16(status))
		}

		var reasonErr error
		if len(f.Payload) > 2 && !utf8.Valid(f.Payload[2:]) {
			reasonErr = newConnectionError("read", c.remoteString(), ErrInvalidUTF8)
		}

		if !c.isClosing {
			reason := "Close acknowledged"
			if len(f.Payload) >= 2 {
				reason = fmt.Sprintf("Close acknowledged: %d", status)
			}
			echo := NewCloseMessage(status, reason)
			if err := c.PushMessage(echo, true); err != nil {
				return err
			}
		} else {
			c.isClosing = false
		}
		if err := c.transport.Close(); err != nil {
			return newConnectionError("close", c.remoteString(), err)
		}
		if reasonErr != nil {
			return reasonErr
		}
	case OpcodePong, OpcodeText, OpcodeBinary, OpcodeContinuation:
		// No auto-response.
	}
	return nil
}

// Close performs the local half of the closing handshake: send a
// Close frame, then block pulling messages until the peer's Close
// arrives (RFC 6455 Section 7.1.2).
func (c *Connection) Close(status CloseCode, message string) error {
	msg := NewCloseMessage(status, message)
	if err := c.PushMessage(msg, true); err != nil {
		return err
	}
	c.isClosing = true

	for {
		m, err := c.PullMessage()
		if err != nil {
			return err
		}
		if m.Opcode() == OpcodeClose {
			return nil
		}
	}
}

// Disconnect releases the transport unconditionally. Safe to call
// more than once.
func (c *Connection) Disconnect() error {
	c.isClosing = false
	c.readBuffer = nil
	return c.transport.Close()
}

func (c *Connection) remoteString() string {
	if c.transport == nil {
		return ""
	}
	if addr := c.transport.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

func (c *Connection) translateReadError(err error) error {
	if errors.Is(err, io.EOF) {
		return newEOFError("read", c.remoteString(), err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newTimeoutError("read", c.remoteString(), err)
	}
	// Any wire-level protocol violation — including an unknown opcode
	// — is fatal for this pull and surfaces as a Connection error
	// rather than BadOpcodeError, which is reserved for a caller
	// supplying an unrecognized opcode on the send path.
	return newConnectionError("read", c.remoteString(), err)
}
