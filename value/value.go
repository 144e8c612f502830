// Package value implements the tagged union of scalar types the row decoder
// produces, matching the closed set of column data types Siodb supports.
package value

import (
	"fmt"
	"time"
)

// Kind identifies which field of a Value is populated.
type Kind int

const (
	KindInt8 Kind = iota
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat
	KindDouble
	KindText
	KindBinary
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindInt8:
		return "Int8"
	case KindUint8:
		return "Uint8"
	case KindInt16:
		return "Int16"
	case KindUint16:
		return "Uint16"
	case KindInt32:
		return "Int32"
	case KindUint32:
		return "Uint32"
	case KindInt64:
		return "Int64"
	case KindUint64:
		return "Uint64"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindText:
		return "Text"
	case KindBinary:
		return "Binary"
	case KindTimestamp:
		return "Timestamp"
	}
	return fmt.Sprintf("UnknownKind(%d)", int(k))
}

// Value is a single decoded, non-NULL cell. A Row slot is either a *Value or
// nil (NULL); see the resultset package.
type Value struct {
	kind      Kind
	i64       int64
	u64       uint64
	f32       float32
	f64       float64
	text      string
	binary    []byte
	timestamp time.Time
}

func Int8(v int8) Value            { return Value{kind: KindInt8, i64: int64(v)} }
func Uint8(v uint8) Value          { return Value{kind: KindUint8, u64: uint64(v)} }
func Int16(v int16) Value          { return Value{kind: KindInt16, i64: int64(v)} }
func Uint16(v uint16) Value        { return Value{kind: KindUint16, u64: uint64(v)} }
func Int32(v int32) Value          { return Value{kind: KindInt32, i64: int64(v)} }
func Uint32(v uint32) Value        { return Value{kind: KindUint32, u64: uint64(v)} }
func Int64(v int64) Value          { return Value{kind: KindInt64, i64: v} }
func Uint64(v uint64) Value        { return Value{kind: KindUint64, u64: v} }
func Float(v float32) Value        { return Value{kind: KindFloat, f32: v} }
func Double(v float64) Value       { return Value{kind: KindDouble, f64: v} }
func Text(v string) Value          { return Value{kind: KindText, text: v} }
func Binary(v []byte) Value        { return Value{kind: KindBinary, binary: v} }
func Timestamp(v time.Time) Value  { return Value{kind: KindTimestamp, timestamp: v} }

// Kind reports which accessor is valid for this Value.
func (v Value) Kind() Kind { return v.kind }

func (v Value) AsInt8() int8           { return int8(v.i64) }
func (v Value) AsUint8() uint8         { return uint8(v.u64) }
func (v Value) AsInt16() int16         { return int16(v.i64) }
func (v Value) AsUint16() uint16       { return uint16(v.u64) }
func (v Value) AsInt32() int32         { return int32(v.i64) }
func (v Value) AsUint32() uint32       { return uint32(v.u64) }
func (v Value) AsInt64() int64         { return v.i64 }
func (v Value) AsUint64() uint64       { return v.u64 }
func (v Value) AsFloat() float32       { return v.f32 }
func (v Value) AsDouble() float64      { return v.f64 }
func (v Value) AsText() string         { return v.text }
func (v Value) AsBinary() []byte       { return v.binary }
func (v Value) AsTimestamp() time.Time { return v.timestamp }

// Equal reports structural equality, matching the original driver's
// derive(Clone)/pattern-match semantics for comparing decoded values in
// tests.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return v.i64 == o.i64
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return v.u64 == o.u64
	case KindFloat:
		return v.f32 == o.f32
	case KindDouble:
		return v.f64 == o.f64
	case KindText:
		return v.text == o.text
	case KindBinary:
		return string(v.binary) == string(o.binary)
	case KindTimestamp:
		return v.timestamp.Equal(o.timestamp)
	}
	return false
}

// String renders the value the way the example program displays it: decimal
// for numerics, the text verbatim, a placeholder token for opaque binary,
// and RFC3339 nanosecond UTC for timestamps. It is deterministic but is not
// part of the wire protocol.
func (v Value) String() string {
	switch v.kind {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return fmt.Sprintf("%d", v.i64)
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return fmt.Sprintf("%d", v.u64)
	case KindFloat:
		return fmt.Sprintf("%g", v.f32)
	case KindDouble:
		return fmt.Sprintf("%g", v.f64)
	case KindText:
		return v.text
	case KindBinary:
		return "Binary string"
	case KindTimestamp:
		return v.timestamp.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("<unknown value kind %d>", int(v.kind))
}
