// Package wire implements the Siodb frame format: a varint message-type tag
// followed by a varint body length followed by that many bytes of a
// hand-marshaled message body (see the protocol package).
package wire

import (
	"bufio"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is anything the codec can write or read: a type that knows how to
// turn itself into, and parse itself from, a flat byte slice.
type Message interface {
	Marshal() []byte
}

// Unmarshaler is implemented by the pointer receiver of a Message so
// ReadFrame can decode into a fresh instance.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// maxFrameBody bounds how large a single frame body may be, guarding against
// a corrupt or hostile length prefix driving an unbounded allocation.
const maxFrameBody = 64 << 20 // 64 MiB

// Codec reads and writes length-delimited frames over a buffered stream.
type Codec struct {
	r *bufio.Reader
	w *bufio.Writer
}

// New wraps r and w with buffered framing. The caller retains responsibility for
// closing the underlying stream.
func New(r io.Reader, w io.Writer) *Codec {
	return &Codec{r: bufio.NewReader(r), w: bufio.NewWriter(w)}
}

// WriteFrame writes type, the marshaled size of msg, and msg's bytes, then
// flushes the underlying buffer so client and server never fall out of sync
// on a partially written frame.
func (c *Codec) WriteFrame(msgType uint64, msg Message) error {
	body := msg.Marshal()

	var header []byte
	header = protowire.AppendVarint(header, msgType)
	header = protowire.AppendVarint(header, uint64(len(body)))

	if _, err := c.w.Write(header); err != nil {
		return fmt.Errorf("wire: write frame header: %w", err)
	}
	if _, err := c.w.Write(body); err != nil {
		return fmt.Errorf("wire: write frame body: %w", err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("wire: flush: %w", err)
	}
	return nil
}

// ReadFrame reads one frame's varint type tag and fails if it does not match
// expectedType, then reads the varint length and that many bytes into dst.
func (c *Codec) ReadFrame(expectedType uint64, dst Unmarshaler) error {
	gotType, err := c.readVarint()
	if err != nil {
		return fmt.Errorf("wire: read frame type: %w", err)
	}
	if gotType != expectedType {
		return fmt.Errorf("wire: protocol: unexpected message type %d, expected %d", gotType, expectedType)
	}

	length, err := c.readVarint()
	if err != nil {
		return fmt.Errorf("wire: read frame length: %w", err)
	}
	if length > maxFrameBody {
		return fmt.Errorf("wire: protocol: frame body of %d bytes exceeds limit", length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return fmt.Errorf("wire: read frame body: %w", err)
	}

	if err := dst.Unmarshal(body); err != nil {
		return fmt.Errorf("wire: protocol: decode frame body: %w", err)
	}
	return nil
}

// ReadRowLength reads the varint row-length prefix that precedes each row in
// a streaming result set; it is not wrapped in a typed frame.
func (c *Codec) ReadRowLength() (uint64, error) {
	return c.readVarint()
}

// ReadFull reads exactly n raw bytes, used by the row decoder for the null
// bitmap and fixed-width column values.
func (c *Codec) ReadFull(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadByte reads a single raw byte from the stream.
func (c *Codec) ReadByte() (byte, error) {
	return c.r.ReadByte()
}

// ReadVarint reads one protobuf varint from the stream, used by the row
// decoder for INT32/UINT32/INT64/UINT64 columns and TEXT/BINARY lengths.
func (c *Codec) ReadVarint() (uint64, error) {
	return c.readVarint()
}

func (c *Codec) readVarint() (uint64, error) {
	var (
		value uint64
		shift uint
	)
	for {
		b, err := c.r.ReadByte()
		if err != nil {
			return 0, err
		}
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, fmt.Errorf("wire: protocol: varint overflow")
		}
	}
}
