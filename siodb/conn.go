// Package siodb is a pure-Go client driver for the Siodb database server: a
// varint-framed protobuf wire protocol over plain TCP, TLS, or a Unix domain
// socket, with RSA-SHA512 challenge/response authentication. It wires
// together dsn, transport, wire, protocol, auth, resultset, and value.
package siodb

import (
	"crypto/tls"
	"io"
	"log"
	"os"

	"github.com/siodb/siodb-go/auth"
	"github.com/siodb/siodb-go/dsn"
	"github.com/siodb/siodb-go/protocol"
	"github.com/siodb/siodb-go/resultset"
	"github.com/siodb/siodb-go/transport"
	"github.com/siodb/siodb-go/value"
	"github.com/siodb/siodb-go/wire"
)

const (
	frameCommand        = 1
	frameServerResponse = 2

	// commandRequestID is the fixed request_id every Command carries. The
	// reference driver never increments it; it is a constant, not a
	// per-connection sequence number.
	commandRequestID = 1
)

// Conn is a single Siodb session: one transport, one framing codec, at most
// one live result set. Not safe for concurrent use; callers must serialize
// access (see the driver's concurrency model).
type Conn struct {
	stream transport.Stream
	codec  *wire.Codec
	logger *log.Logger

	rs *resultset.ResultSet
}

// Option configures a Conn at Open time.
type Option func(*options)

type options struct {
	logOutput io.Writer
	tlsConfig *tls.Config
}

// WithLogger directs trace output (when the URI's trace option is set) to w
// instead of the default os.Stderr.
func WithLogger(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithTLSConfig overrides the default insecure TLS configuration used for
// the siodbs scheme. Most callers should not need this; see the driver's
// design notes on why insecure TLS is the default.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) { o.tlsConfig = cfg }
}

// Open parses uri, dials the selected transport, and runs the
// authentication handshake. On success the returned Conn is in the Ready
// state.
func Open(uri string, opts ...Option) (*Conn, error) {
	d, err := dsn.Parse(uri)
	if err != nil {
		return nil, wrapErr(KindConfig, "siodb: open", err)
	}

	o := &options{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	logWriter := io.Discard
	if d.Trace {
		logWriter = o.logOutput
	}
	logger := log.New(logWriter, "siodb: ", log.LstdFlags|log.Lmicroseconds)

	stream, err := dial(d, o.tlsConfig)
	if err != nil {
		return nil, wrapErr(KindTransport, "siodb: open", err)
	}

	codec := wire.New(stream, stream)
	if err := auth.Handshake(codec, d.User, d.IdentityFile, logger); err != nil {
		_ = transport.Shutdown(stream)
		return nil, wrapErr(KindAuth, "siodb: open", err)
	}

	return &Conn{stream: stream, codec: codec, logger: logger}, nil
}

func dial(d *dsn.DSN, tlsOverride *tls.Config) (transport.Stream, error) {
	switch d.Scheme {
	case dsn.SchemeTCP:
		return transport.DialTCP(d.Host, d.Port)
	case dsn.SchemeTLS:
		return transport.DialTLS(d.Host, d.Port, tlsOverride)
	case dsn.SchemeSocket:
		return transport.DialUnix(d.SocketPath)
	default:
		return nil, newErr(KindConfig, "siodb: unsupported scheme %q", d.Scheme)
	}
}

// Execute submits sql for execution. If a prior result set is still
// streaming, it fails with KindMisuse (I2) instead of submitting.
func (c *Conn) Execute(sql string) error {
	if c.rs != nil && c.rs.State() == resultset.Streaming {
		return newErr(KindMisuse, "siodb: execute: prior result set is still streaming")
	}

	c.logger.Printf("execute: request_id=%d sql=%q", commandRequestID, sql)
	cmd := &protocol.Command{RequestID: commandRequestID, Text: sql}
	if err := c.codec.WriteFrame(frameCommand, cmd); err != nil {
		return wrapErr(KindTransport, "siodb: execute: write command", err)
	}

	resp := &protocol.ServerResponse{}
	if err := c.codec.ReadFrame(frameServerResponse, resp); err != nil {
		return wrapErr(KindProtocol, "siodb: execute: read response", err)
	}
	c.logger.Printf("execute: response request_id=%d columns=%d messages=%d",
		resp.RequestID, len(resp.ColumnDescription), len(resp.Message))

	if len(resp.Message) > 0 {
		c.rs = nil
		return newErr(KindServer, "siodb: execute: %s", concatMessages(resp.Message))
	}

	c.rs = resultset.New(c.codec, resp, c.logger)
	return nil
}

func concatMessages(messages []protocol.StatusMessage) string {
	text := ""
	for _, m := range messages {
		text += m.Text
	}
	return text
}

// Query is an alias for Execute; rows are pulled afterward via Next/Scan.
func (c *Conn) Query(sql string) error { return c.Execute(sql) }

// QueryRow executes sql, fetches at most one row, drains any remaining
// rows, and returns the row (nil if the result set produced no rows).
func (c *Conn) QueryRow(sql string) (resultset.Row, error) {
	if err := c.Execute(sql); err != nil {
		return nil, err
	}

	var row resultset.Row
	ok, err := c.Next()
	if err != nil {
		return nil, err
	}
	if ok {
		row = c.Scan()
	}
	for {
		more, err := c.Next()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	return row, nil
}

// Next advances to the next row of the current result set, returning false
// once the stream is exhausted. Calling Next without a streaming result set
// is a no-op that returns false.
func (c *Conn) Next() (bool, error) {
	if c.rs == nil || c.rs.State() != resultset.Streaming {
		return false, nil
	}
	ok, err := c.rs.Next()
	if err != nil {
		return false, wrapErr(KindProtocol, "siodb: next", err)
	}
	return ok, nil
}

// Scan returns the most recently decoded row. Its result is undefined
// before Next has returned true at least once.
func (c *Conn) Scan() resultset.Row {
	if c.rs == nil {
		return nil
	}
	return c.rs.Row()
}

// RowCount reports how many rows have been decoded from the current result
// set so far.
func (c *Conn) RowCount() uint64 {
	if c.rs == nil {
		return 0
	}
	return c.rs.RowCount()
}

// AffectedRowCount reports the most recent ServerResponse's affected-row
// count, or 0 if none was reported.
func (c *Conn) AffectedRowCount() uint64 {
	if c.rs == nil {
		return 0
	}
	return c.rs.AffectedRowCount()
}

// Close performs a bidirectional transport shutdown. The Conn is unusable
// afterward.
func (c *Conn) Close() error {
	if err := transport.Shutdown(c.stream); err != nil {
		return wrapErr(KindTransport, "siodb: close", err)
	}
	return nil
}

// Value re-exports the value package's tagged union so callers need only
// import this package for the common case.
type Value = value.Value
