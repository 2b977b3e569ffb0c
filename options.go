package wsclient

import (
	"crypto/tls"
	"time"
)

// DefaultFragmentSize is the default maximum payload bytes per
// outgoing frame.
const DefaultFragmentSize = 4096

// DefaultTimeout is the default per-read/write timeout.
const DefaultTimeout = 5 * time.Second

// Options configures a Client.
type Options struct {
	// Timeout is the per-read/write timeout. Default DefaultTimeout.
	Timeout time.Duration
	// FragmentSize is the maximum payload bytes per outgoing frame.
	// Default DefaultFragmentSize.
	FragmentSize int
	// Headers are extra or override request headers sent during the
	// handshake; they override the defaults case-sensitively.
	Headers map[string]string
	// TLSConfig preconfigures the transport context for wss://
	// connections. Ignored for ws://.
	TLSConfig *tls.Config
	// Persistent makes Connect reuse the transport this Client has
	// already handshaked on, without dialing or handshaking again.
	Persistent bool
	// Filter lists the opcodes Receive surfaces to the caller.
	// Default {Text, Binary}.
	Filter []Opcode
	// ReturnMessage, if true, makes Receive return a Message instead
	// of raw payload bytes.
	ReturnMessage bool
	// Origin sets the deprecated "origin" header when non-empty.
	Origin string
	// Logger receives structured log lines from Client and Connection.
	// Default NopLogger.
	Logger Logger
}

// defaultOptions returns the Client's built-in defaults.
func defaultOptions() Options {
	return Options{
		Timeout:      DefaultTimeout,
		FragmentSize: DefaultFragmentSize,
		Filter:       []Opcode{OpcodeText, OpcodeBinary},
		Logger:       NopLogger{},
	}
}

// merge replaces every field in o with the non-zero fields of other
// — except Headers, which is shallow-merged key by key so callers can
// add one header without re-specifying all of them.
func (o Options) merge(other Options) Options {
	if other.Timeout != 0 {
		o.Timeout = other.Timeout
	}
	if other.FragmentSize != 0 {
		o.FragmentSize = other.FragmentSize
	}
	if other.TLSConfig != nil {
		o.TLSConfig = other.TLSConfig
	}
	if other.Persistent {
		o.Persistent = other.Persistent
	}
	if other.Filter != nil {
		o.Filter = other.Filter
	}
	if other.ReturnMessage {
		o.ReturnMessage = other.ReturnMessage
	}
	if other.Origin != "" {
		o.Origin = other.Origin
	}
	if other.Logger != nil {
		o.Logger = other.Logger
	}
	if other.Headers != nil {
		if o.Headers == nil {
			o.Headers = make(map[string]string, len(other.Headers))
		}
		for k, v := range other.Headers {
			o.Headers[k] = v
		}
	}
	return o
}

func (o Options) filters(op Opcode) bool {
	for _, f := range o.Filter {
		if f == op {
			return true
		}
	}
	return false
}
