package wsclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jmsbrone/gowsclient/internal/handshake"
)

// Client is the user-facing façade: it owns a target URI and a set of
// Options, connects lazily on the first Send or Receive, and delegates
// everything else to a Connection. A Client is owned by exactly one
// caller at a time — there is no internal locking.
type Client struct {
	rawURI string
	uri    *url.URL
	opts   Options

	transport Transport
	conn      *Connection

	lastOpcode    Opcode
	hasLastOpcode bool

	closeStatus    CloseCode
	hasCloseStatus bool
}

// NewClient parses uri (scheme must be "ws" or "wss") and applies opts
// in order, later entries overriding earlier ones. The connection
// itself is not opened until Send or Receive is called.
func NewClient(uri string, opts ...Options) (*Client, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, &BadURIError{URI: uri, Err: err}
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return nil, &BadURIError{URI: uri, Err: fmt.Errorf("unsupported scheme %q", parsed.Scheme)}
	}

	merged := defaultOptions()
	for _, o := range opts {
		merged = merged.merge(o)
	}

	return &Client{rawURI: uri, uri: parsed, opts: merged}, nil
}

// SetOptions replaces the Client's option set via a whole-map merge;
// it must not be called while a frame is in flight.
func (c *Client) SetOptions(o Options) { c.opts = c.opts.merge(o) }

// SetTimeout updates the per-operation timeout, propagating to the
// live Connection's transport if one exists.
func (c *Client) SetTimeout(d time.Duration) {
	c.opts.Timeout = d
	if c.transport != nil {
		c.transport.SetDeadline(time.Now().Add(d))
	}
}

// SetFragmentSize updates the maximum payload bytes per outgoing frame.
func (c *Client) SetFragmentSize(n int) {
	c.opts.FragmentSize = n
	if c.conn != nil {
		c.conn.SetFragmentSize(n)
	}
}

// GetFragmentSize returns the maximum payload bytes per outgoing frame.
func (c *Client) GetFragmentSize() int { return c.opts.FragmentSize }

// IsConnected reports whether a live Connection exists.
func (c *Client) IsConnected() bool { return c.conn != nil }

// GetName returns the local socket address, once connected.
func (c *Client) GetName() string {
	if c.transport == nil {
		return ""
	}
	if addr := c.transport.LocalAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// GetRemoteName returns the peer socket address, once connected.
func (c *Client) GetRemoteName() string {
	if c.transport == nil {
		return ""
	}
	if addr := c.transport.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// GetCloseStatus returns the status code of a received Close frame,
// if one has arrived. The status remains readable after Close
// completes and discards the underlying Connection.
func (c *Client) GetCloseStatus() (CloseCode, bool) {
	if c.conn != nil {
		if status, ok := c.conn.CloseStatus(); ok {
			return status, true
		}
	}
	return c.closeStatus, c.hasCloseStatus
}

// GetLastOpcode returns the opcode of the last message Receive
// surfaced to the caller.
func (c *Client) GetLastOpcode() (Opcode, bool) { return c.lastOpcode, c.hasLastOpcode }

// Connect performs the lazy handshake immediately rather than waiting
// for the first Send/Receive. It is idempotent once a Connection
// exists.
func (c *Client) Connect() error { return c.ConnectContext(context.Background()) }

// ConnectContext is Connect with a caller-supplied context governing
// the dial and, for wss, the TLS handshake. The WebSocket Upgrade
// exchange is bounded by the transport timeout, not by ctx.
func (c *Client) ConnectContext(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	return c.connect(ctx)
}

func (c *Client) connect(ctx context.Context) error {
	if c.opts.Persistent && c.transport != nil && c.transport.AlreadyHandshaked() {
		c.conn = NewConnection(c.transport, c.opts)
		return nil
	}

	network, addr, tlsConfig, err := c.dialTarget()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeoutOrDefault())
	defer cancel()

	transport, err := dialTransport(ctx, network, addr, c.timeoutOrDefault(), tlsConfig, c.opts.Persistent)
	if err != nil {
		return newConnectionError("dial", addr, err)
	}

	if err := c.handshake(transport); err != nil {
		transport.Close()
		return err
	}

	transport.MarkHandshaked()
	c.transport = transport
	c.conn = NewConnection(transport, c.opts)
	return nil
}

// dialTarget derives the transport network/address and the TLS
// configuration to dial from the target URI.
func (c *Client) dialTarget() (network, addr string, tlsConfig *tls.Config, err error) {
	host := c.uri.Hostname()
	port := c.uri.Port()
	switch c.uri.Scheme {
	case "ws":
		if port == "" {
			port = "80"
		}
		return "tcp", net.JoinHostPort(host, port), nil, nil
	case "wss":
		if port == "" {
			port = "443"
		}
		tlsConfig = c.opts.TLSConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{ServerName: host}
		}
		return "tcp", net.JoinHostPort(host, port), tlsConfig, nil
	default:
		return "", "", nil, &BadURIError{URI: c.rawURI, Err: fmt.Errorf("unsupported scheme %q", c.uri.Scheme)}
	}
}

// requestTarget builds the HTTP request-target path: the original
// path, prefixed with "/" if empty or non-absolute, preserving the
// original query.
func (c *Client) requestTarget() string {
	path := c.uri.EscapedPath()
	if path == "" || !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if c.uri.RawQuery != "" {
		path += "?" + c.uri.RawQuery
	}
	return path
}

func (c *Client) handshake(t *netTransport) error {
	key, err := handshake.NewKey()
	if err != nil {
		return newConnectionError("handshake", c.GetRemoteName(), err)
	}

	var userinfo string
	if c.uri.User != nil {
		userinfo = c.uri.User.String()
	}

	req := handshake.BuildRequest(handshake.Request{
		RequestTarget: c.requestTarget(),
		Authority:     c.uri.Host,
		Key:           key,
		Userinfo:      userinfo,
		Origin:        c.opts.Origin,
		Extra:         c.opts.Headers,
	})
	if _, err := t.Write(req); err != nil {
		return newConnectionError("handshake", c.GetRemoteName(), err)
	}

	head, err := handshake.ReadResponseHead(t)
	if err != nil {
		return newConnectionError("handshake", c.GetRemoteName(), err)
	}
	if _, ok := handshake.StatusLine(head); !ok {
		return newConnectionError("handshake", c.GetRemoteName(), fmt.Errorf("server did not return 101 Switching Protocols"))
	}
	if err := handshake.Validate(head, key); err != nil {
		return newConnectionError("handshake", c.GetRemoteName(), err)
	}
	return nil
}

func (c *Client) timeoutOrDefault() time.Duration {
	if c.opts.Timeout > 0 {
		return c.opts.Timeout
	}
	return DefaultTimeout
}

// Send constructs a Message of the given opcode and pushes it,
// connecting lazily first. Unknown opcodes are rejected before any
// bytes are written.
func (c *Client) Send(payload []byte, opcode Opcode, masked bool) error {
	if !opcode.IsValid() || opcode == OpcodeContinuation {
		return &BadOpcodeError{Opcode: opcode}
	}
	if err := c.Connect(); err != nil {
		return err
	}
	return c.conn.PushMessage(NewMessage(opcode, payload), masked)
}

// Text sends a single Text message.
func (c *Client) Text(s string) error { return c.Send([]byte(s), OpcodeText, true) }

// Binary sends a single Binary message.
func (c *Client) Binary(b []byte) error { return c.Send(b, OpcodeBinary, true) }

// Ping sends a Ping control message carrying p (default empty).
func (c *Client) Ping(p []byte) error { return c.Send(p, OpcodePing, true) }

// Pong sends a Pong control message carrying p (default empty).
func (c *Client) Pong(p []byte) error { return c.Send(p, OpcodePong, true) }

// Receive connects lazily, then loops pulling messages until one
// matches the configured Filter or a Close arrives. It returns
// (Message, nil), ([]byte, nil), or (nil, nil) for a filtered-out
// Close, depending on Options.ReturnMessage.
func (c *Client) Receive() (any, error) {
	if err := c.Connect(); err != nil {
		return nil, err
	}
	for {
		msg, err := c.conn.PullMessage()
		if err != nil {
			return nil, err
		}

		if msg.Opcode() == OpcodeClose {
			c.hasLastOpcode = false
			if c.opts.ReturnMessage {
				return msg, nil
			}
			return nil, nil
		}

		if !c.opts.filters(msg.Opcode()) {
			continue
		}
		c.lastOpcode = msg.Opcode()
		c.hasLastOpcode = true
		if c.opts.ReturnMessage {
			return msg, nil
		}
		return msg.Payload(), nil
	}
}

// Close performs the closing handshake with the given status and
// message. CloseDefault uses (1000, "ttfn").
func (c *Client) Close(status CloseCode, message string) error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close(status, message)
	if peerStatus, ok := c.conn.CloseStatus(); ok {
		c.closeStatus = peerStatus
		c.hasCloseStatus = true
	}
	c.conn = nil
	return err
}

// CloseDefault closes with the default status (1000) and message
// ("ttfn").
func (c *Client) CloseDefault() error { return c.Close(CloseNormal, "ttfn") }

// Disconnect releases the transport without performing a close
// handshake.
func (c *Client) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Disconnect()
	c.conn = nil
	c.transport = nil
	return err
}
