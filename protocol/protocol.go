// Package protocol holds the Go representation of the Siodb client/server
// IDL: the handful of messages exchanged during the authentication handshake
// and the command/response cycle. The driver does not ship the upstream
// .proto file (it is treated as an external schema — see the top-level
// design notes), so these types carry their own minimal wire
// marshal/unmarshal built directly on protowire, the same low-level varint
// and tag primitives protoc-generated code itself calls.
package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ColumnDataType identifies the wire encoding of a column's values.
type ColumnDataType int32

const (
	ColumnDataTypeUnknown   ColumnDataType = 0
	ColumnDataTypeInt8      ColumnDataType = 1
	ColumnDataTypeUint8     ColumnDataType = 2
	ColumnDataTypeInt16     ColumnDataType = 3
	ColumnDataTypeUint16    ColumnDataType = 4
	ColumnDataTypeInt32     ColumnDataType = 5
	ColumnDataTypeUint32    ColumnDataType = 6
	ColumnDataTypeInt64     ColumnDataType = 7
	ColumnDataTypeUint64    ColumnDataType = 8
	ColumnDataTypeFloat     ColumnDataType = 9
	ColumnDataTypeDouble    ColumnDataType = 10
	ColumnDataTypeText      ColumnDataType = 11
	ColumnDataTypeBinary    ColumnDataType = 12
	ColumnDataTypeTimestamp ColumnDataType = 13
)

func (t ColumnDataType) String() string {
	switch t {
	case ColumnDataTypeInt8:
		return "INT8"
	case ColumnDataTypeUint8:
		return "UINT8"
	case ColumnDataTypeInt16:
		return "INT16"
	case ColumnDataTypeUint16:
		return "UINT16"
	case ColumnDataTypeInt32:
		return "INT32"
	case ColumnDataTypeUint32:
		return "UINT32"
	case ColumnDataTypeInt64:
		return "INT64"
	case ColumnDataTypeUint64:
		return "UINT64"
	case ColumnDataTypeFloat:
		return "FLOAT"
	case ColumnDataTypeDouble:
		return "DOUBLE"
	case ColumnDataTypeText:
		return "TEXT"
	case ColumnDataTypeBinary:
		return "BINARY"
	case ColumnDataTypeTimestamp:
		return "TIMESTAMP"
	}
	return fmt.Sprintf("UnknownColumnDataType(%d)", int32(t))
}

// BeginSessionRequest is sent by the client to start a session (frame tag 5).
type BeginSessionRequest struct {
	UserName string
}

func (m *BeginSessionRequest) Marshal() []byte {
	var b []byte
	if m.UserName != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.UserName)
	}
	return b
}

func (m *BeginSessionRequest) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num == 1 && typ == protowire.BytesType {
			s, _ := protowire.ConsumeString(v)
			m.UserName = s
		}
		return nil
	})
}

// BeginSessionResponse is the server's reply to BeginSessionRequest (tag 6).
type BeginSessionResponse struct {
	SessionStarted bool
	Challenge      []byte
}

func (m *BeginSessionResponse) Marshal() []byte {
	var b []byte
	if m.SessionStarted {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, boolVarint(m.SessionStarted))
	}
	if len(m.Challenge) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Challenge)
	}
	return b
}

func (m *BeginSessionResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch {
		case num == 1 && typ == protowire.VarintType:
			n, _ := protowire.ConsumeVarint(v)
			m.SessionStarted = n != 0
		case num == 2 && typ == protowire.BytesType:
			bs, _ := protowire.ConsumeBytes(v)
			m.Challenge = append([]byte(nil), bs...)
		}
		return nil
	})
}

// ClientAuthenticationRequest carries the signed challenge (tag 7).
type ClientAuthenticationRequest struct {
	Signature []byte
}

func (m *ClientAuthenticationRequest) Marshal() []byte {
	var b []byte
	if len(m.Signature) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Signature)
	}
	return b
}

func (m *ClientAuthenticationRequest) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num == 1 && typ == protowire.BytesType {
			bs, _ := protowire.ConsumeBytes(v)
			m.Signature = append([]byte(nil), bs...)
		}
		return nil
	})
}

// ClientAuthenticationResponse concludes the handshake (tag 8).
type ClientAuthenticationResponse struct {
	Authenticated bool
}

func (m *ClientAuthenticationResponse) Marshal() []byte {
	var b []byte
	if m.Authenticated {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, boolVarint(m.Authenticated))
	}
	return b
}

func (m *ClientAuthenticationResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num == 1 && typ == protowire.VarintType {
			n, _ := protowire.ConsumeVarint(v)
			m.Authenticated = n != 0
		}
		return nil
	})
}

// Command carries one SQL statement to execute (tag 1).
type Command struct {
	RequestID uint64
	Text      string
}

func (m *Command) Marshal() []byte {
	var b []byte
	if m.RequestID != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, m.RequestID)
	}
	if m.Text != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, m.Text)
	}
	return b
}

func (m *Command) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch {
		case num == 1 && typ == protowire.VarintType:
			n, _ := protowire.ConsumeVarint(v)
			m.RequestID = n
		case num == 2 && typ == protowire.BytesType:
			s, _ := protowire.ConsumeString(v)
			m.Text = s
		}
		return nil
	})
}

// StatusMessage is one entry in ServerResponse.Message: a server-side log or
// error line. Siodb concatenates these verbatim to build error text.
type StatusMessage struct {
	StatusCode int32
	Text       string
}

// ColumnDescription describes one column of a streaming result set.
type ColumnDescription struct {
	Name     string
	DataType ColumnDataType
	IsNull   bool
}

// ServerResponse answers a Command (tag 2).
type ServerResponse struct {
	RequestID           uint64
	Message             []StatusMessage
	HasAffectedRowCount bool
	AffectedRowCount    uint64
	ColumnDescription   []ColumnDescription
}

func (m *ServerResponse) Marshal() []byte {
	var b []byte
	if m.RequestID != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, m.RequestID)
	}
	for _, msg := range m.Message {
		var mb []byte
		if msg.StatusCode != 0 {
			mb = protowire.AppendTag(mb, 1, protowire.VarintType)
			mb = protowire.AppendVarint(mb, uint64(uint32(msg.StatusCode)))
		}
		if msg.Text != "" {
			mb = protowire.AppendTag(mb, 2, protowire.BytesType)
			mb = protowire.AppendString(mb, msg.Text)
		}
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, mb)
	}
	if m.HasAffectedRowCount {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, boolVarint(m.HasAffectedRowCount))
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, m.AffectedRowCount)
	}
	for _, col := range m.ColumnDescription {
		var cb []byte
		if col.Name != "" {
			cb = protowire.AppendTag(cb, 1, protowire.BytesType)
			cb = protowire.AppendString(cb, col.Name)
		}
		if col.DataType != 0 {
			cb = protowire.AppendTag(cb, 2, protowire.VarintType)
			cb = protowire.AppendVarint(cb, uint64(uint32(col.DataType)))
		}
		if col.IsNull {
			cb = protowire.AppendTag(cb, 3, protowire.VarintType)
			cb = protowire.AppendVarint(cb, boolVarint(col.IsNull))
		}
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendBytes(b, cb)
	}
	return b
}

func (m *ServerResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch {
		case num == 1 && typ == protowire.VarintType:
			n, _ := protowire.ConsumeVarint(v)
			m.RequestID = n
		case num == 2 && typ == protowire.BytesType:
			mb, _ := protowire.ConsumeBytes(v)
			var msg StatusMessage
			err := forEachField(mb, func(fnum protowire.Number, ftyp protowire.Type, fv []byte) error {
				switch {
				case fnum == 1 && ftyp == protowire.VarintType:
					n, _ := protowire.ConsumeVarint(fv)
					msg.StatusCode = int32(uint32(n))
				case fnum == 2 && ftyp == protowire.BytesType:
					s, _ := protowire.ConsumeString(fv)
					msg.Text = s
				}
				return nil
			})
			if err != nil {
				return err
			}
			m.Message = append(m.Message, msg)
		case num == 3 && typ == protowire.VarintType:
			n, _ := protowire.ConsumeVarint(v)
			m.AffectedRowCount = n
		case num == 4 && typ == protowire.VarintType:
			n, _ := protowire.ConsumeVarint(v)
			m.HasAffectedRowCount = n != 0
		case num == 5 && typ == protowire.BytesType:
			cb, _ := protowire.ConsumeBytes(v)
			var col ColumnDescription
			err := forEachField(cb, func(fnum protowire.Number, ftyp protowire.Type, fv []byte) error {
				switch {
				case fnum == 1 && ftyp == protowire.BytesType:
					s, _ := protowire.ConsumeString(fv)
					col.Name = s
				case fnum == 2 && ftyp == protowire.VarintType:
					n, _ := protowire.ConsumeVarint(fv)
					col.DataType = ColumnDataType(int32(uint32(n)))
				case fnum == 3 && ftyp == protowire.VarintType:
					n, _ := protowire.ConsumeVarint(fv)
					col.IsNull = n != 0
				}
				return nil
			})
			if err != nil {
				return err
			}
			m.ColumnDescription = append(m.ColumnDescription, col)
		}
		return nil
	})
}

func boolVarint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// forEachField walks the top-level fields of a protobuf message body,
// invoking fn with the raw (still wire-encoded) value for each. Unknown
// field numbers are skipped rather than rejected, matching protobuf's
// forward-compatibility contract.
func forEachField(b []byte, fn func(num protowire.Number, typ protowire.Type, raw []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("protocol: invalid field tag")
		}
		b = b[n:]

		var raw []byte
		var consumed int
		switch typ {
		case protowire.VarintType:
			_, consumed = protowire.ConsumeVarint(b)
			if consumed < 0 {
				return fmt.Errorf("protocol: invalid varint field")
			}
			raw = b[:consumed]
		case protowire.Fixed32Type:
			consumed = 4
			if len(b) < 4 {
				return fmt.Errorf("protocol: truncated fixed32 field")
			}
			raw = b[:4]
		case protowire.Fixed64Type:
			consumed = 8
			if len(b) < 8 {
				return fmt.Errorf("protocol: truncated fixed64 field")
			}
			raw = b[:8]
		case protowire.BytesType:
			_, n2 := protowire.ConsumeVarint(b)
			if n2 < 0 {
				return fmt.Errorf("protocol: invalid bytes length")
			}
			_, consumed = protowire.ConsumeBytes(b)
			if consumed < 0 {
				return fmt.Errorf("protocol: truncated bytes field")
			}
			raw = b[:consumed]
		default:
			return fmt.Errorf("protocol: unsupported wire type %v for field %d", typ, num)
		}

		if err := fn(num, typ, raw); err != nil {
			return err
		}
		b = b[consumed:]
	}
	return nil
}
