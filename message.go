package wsclient

import "time"

// Message is the logical unit delivered to and accepted from the
// application, possibly spanning multiple frames via continuation
// (RFC 6455 Section 5.4). Its opcode is always a data or control
// opcode — never Continuation.
type Message struct {
	opcode    Opcode
	payload   []byte
	timestamp time.Time
}

// NewMessage builds a Message of the given opcode with payload p.
// opcode must not be OpcodeContinuation; callers needing validation
// use the Client façade's Send, which rejects unknown opcodes before
// calling this.
func NewMessage(opcode Opcode, p []byte) Message {
	return Message{opcode: opcode, payload: p, timestamp: time.Now()}
}

// NewTextMessage builds a Text message from a UTF-8 string.
func NewTextMessage(s string) Message { return NewMessage(OpcodeText, []byte(s)) }

// NewBinaryMessage builds a Binary message.
func NewBinaryMessage(b []byte) Message { return NewMessage(OpcodeBinary, b) }

// NewPingMessage builds a Ping control message. p must be <= 125 bytes.
func NewPingMessage(p []byte) Message { return NewMessage(OpcodePing, p) }

// NewPongMessage builds a Pong control message. p must be <= 125 bytes.
func NewPongMessage(p []byte) Message { return NewMessage(OpcodePong, p) }

// NewCloseMessage builds a Close control message whose payload is the
// 16-bit big-endian status followed by a free-form reason string.
func NewCloseMessage(status CloseCode, reason string) Message {
	p := make([]byte, 2+len(reason))
	p[0] = byte(status >> 8)
	p[1] = byte(status)
	copy(p[2:], reason)
	return NewMessage(OpcodeClose, p)
}

// Opcode returns the message's opcode.
func (m Message) Opcode() Opcode { return m.opcode }

// Payload returns the message's payload bytes.
func (m Message) Payload() []byte { return m.payload }

// Len returns the payload length in bytes.
func (m Message) Len() int { return len(m.payload) }

// Timestamp returns when the Message was constructed.
func (m Message) Timestamp() time.Time { return m.timestamp }

// HasContent reports whether the payload is non-empty.
func (m Message) HasContent() bool { return len(m.payload) > 0 }

// SetPayload replaces the payload, returning the updated Message.
func (m Message) SetPayload(p []byte) Message {
	m.payload = p
	return m
}

// String returns the payload interpreted as UTF-8 text, regardless of
// opcode — a convenience for callers that already know they have a
// Text or Close message.
func (m Message) String() string { return string(m.payload) }

// ToFrames splits the message into the frame sequence a Connection
// writes to the wire, per the fragmentation rules of RFC 6455
// Section 5.4.
//
// An empty payload always yields exactly one frame. Otherwise the
// payload is split into chunks of at most fragmentSize bytes; every
// chunk but the first is opcode Continuation, and only the last frame
// carries Final=true.
func (m Message) ToFrames(masked bool, fragmentSize int) []Frame {
	if fragmentSize < 1 {
		fragmentSize = 1
	}
	if len(m.payload) == 0 {
		return []Frame{{Final: true, Opcode: m.opcode, Masked: masked}}
	}

	var frames []Frame
	for offset := 0; offset < len(m.payload); offset += fragmentSize {
		end := offset + fragmentSize
		if end > len(m.payload) {
			end = len(m.payload)
		}
		frames = append(frames, Frame{
			Final:   false,
			Opcode:  OpcodeContinuation,
			Masked:  masked,
			Payload: m.payload[offset:end],
		})
	}
	frames[0].Opcode = m.opcode
	frames[len(frames)-1].Final = true
	return frames
}
