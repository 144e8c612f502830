package resultset

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/siodb/siodb-go/protocol"
	"github.com/siodb/siodb-go/value"
	"github.com/siodb/siodb-go/wire"
)

// Row is one decoded row: a nil slot is NULL, a non-nil slot holds a Value.
type Row []*value.Value

// readRow reads one row from codec according to columns and bitmapSize. It
// returns (nil, false, nil) on the zero-length row sentinel that ends the
// stream.
func readRow(codec *wire.Codec, columns []protocol.ColumnDescription, nullBitmapPresent bool, bitmapSize int) (Row, bool, error) {
	rowLength, err := codec.ReadRowLength()
	if err != nil {
		return nil, false, fmt.Errorf("resultset: read row length: %w", err)
	}
	if rowLength == 0 {
		return nil, false, nil
	}

	var bitmap []byte
	if nullBitmapPresent {
		bitmap, err = codec.ReadFull(bitmapSize)
		if err != nil {
			return nil, false, fmt.Errorf("resultset: read null bitmap: %w", err)
		}
	}

	row := make(Row, len(columns))
	for i, col := range columns {
		if nullBitmapPresent && isNull(bitmap, i) {
			row[i] = nil
			continue
		}
		v, err := readCell(codec, col.DataType)
		if err != nil {
			return nil, false, fmt.Errorf("resultset: decode column %q: %w", col.Name, err)
		}
		row[i] = &v
	}
	return row, true, nil
}

func isNull(bitmap []byte, column int) bool {
	byteIdx := column / 8
	bitIdx := uint(column % 8)
	return bitmap[byteIdx]&(1<<bitIdx) != 0
}

func readCell(codec *wire.Codec, dataType protocol.ColumnDataType) (value.Value, error) {
	switch dataType {
	case protocol.ColumnDataTypeInt8:
		b, err := codec.ReadByte()
		if err != nil {
			return value.Value{}, err
		}
		return value.Int8(int8(b)), nil

	case protocol.ColumnDataTypeUint8:
		b, err := codec.ReadByte()
		if err != nil {
			return value.Value{}, err
		}
		return value.Uint8(b), nil

	case protocol.ColumnDataTypeInt16:
		raw, err := codec.ReadFull(2)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int16(int16(binary.LittleEndian.Uint16(raw))), nil

	case protocol.ColumnDataTypeUint16:
		raw, err := codec.ReadFull(2)
		if err != nil {
			return value.Value{}, err
		}
		return value.Uint16(binary.LittleEndian.Uint16(raw)), nil

	case protocol.ColumnDataTypeInt32:
		n, err := codec.ReadVarint()
		if err != nil {
			return value.Value{}, err
		}
		return value.Int32(int32(uint32(n))), nil

	case protocol.ColumnDataTypeUint32:
		n, err := codec.ReadVarint()
		if err != nil {
			return value.Value{}, err
		}
		return value.Uint32(uint32(n)), nil

	case protocol.ColumnDataTypeInt64:
		n, err := codec.ReadVarint()
		if err != nil {
			return value.Value{}, err
		}
		return value.Int64(int64(n)), nil

	case protocol.ColumnDataTypeUint64:
		n, err := codec.ReadVarint()
		if err != nil {
			return value.Value{}, err
		}
		return value.Uint64(n), nil

	case protocol.ColumnDataTypeFloat:
		raw, err := codec.ReadFull(4)
		if err != nil {
			return value.Value{}, err
		}
		bits := binary.LittleEndian.Uint32(raw)
		return value.Float(math.Float32frombits(bits)), nil

	case protocol.ColumnDataTypeDouble:
		raw, err := codec.ReadFull(8)
		if err != nil {
			return value.Value{}, err
		}
		bits := binary.LittleEndian.Uint64(raw)
		return value.Double(math.Float64frombits(bits)), nil

	case protocol.ColumnDataTypeText:
		n, err := codec.ReadVarint()
		if err != nil {
			return value.Value{}, err
		}
		raw, err := codec.ReadFull(int(n))
		if err != nil {
			return value.Value{}, err
		}
		if !utf8.Valid(raw) {
			return value.Value{}, fmt.Errorf("resultset: invalid UTF-8 in TEXT column")
		}
		return value.Text(string(raw)), nil

	case protocol.ColumnDataTypeBinary:
		n, err := codec.ReadVarint()
		if err != nil {
			return value.Value{}, err
		}
		raw, err := codec.ReadFull(int(n))
		if err != nil {
			return value.Value{}, err
		}
		return value.Binary(append([]byte(nil), raw...)), nil

	case protocol.ColumnDataTypeTimestamp:
		dateRaw, err := codec.ReadFull(4)
		if err != nil {
			return value.Value{}, err
		}
		var d [4]byte
		copy(d[:], dateRaw)
		hasTimePart := d[0]&0b0000_0001 != 0

		var t [6]byte
		if hasTimePart {
			timeRaw, err := codec.ReadFull(6)
			if err != nil {
				return value.Value{}, err
			}
			copy(t[:], timeRaw)
		}
		return value.Timestamp(decodeTimestamp(d, t, hasTimePart)), nil

	default:
		return value.Value{}, fmt.Errorf("resultset: unknown column data type %v", dataType)
	}
}
