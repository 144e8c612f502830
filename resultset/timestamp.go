package resultset

import "time"

// decodeDate unpacks the 4-byte date field shared by every TIMESTAMP column.
// The arithmetic is ported byte-for-byte from original_source/src/siodb/mod.rs
// rather than re-derived from prose, since that source is the one thing the
// reference server's actual byte layout is tested against.
func decodeDate(d [4]byte) (hasTimePart bool, dayOfMonth, month uint8, year int32) {
	hasTimePart = d[0]&0b0000_0001 != 0
	dayOfMonth = (((d[0] & 0b1111_0000) >> 4) + ((d[1] & 0b0000_0001) << 4)) + 1
	month = ((d[1] & 0b0001_1110) >> 1) + 1

	b1 := (d[3] & 0b1110_0000) >> 5
	b2 := ((d[2] & 0b1110_0000) >> 5) + ((d[3] & 0b0001_1111) << 3)
	b3 := ((d[1] & 0b1110_0000) >> 5) + ((d[2] & 0b0001_1111) << 3)

	year19 := int32(b1)<<16 | int32(b2)<<8 | int32(b3)
	// Sign-extend the 19-bit field: bit 18 is the sign bit. See DESIGN.md for
	// why this departs from the reference implementation's own arithmetic,
	// which never produces a negative value.
	if year19&(1<<18) != 0 {
		year19 -= 1 << 19
	}
	year = year19
	return
}

// decodeTime unpacks the 6-byte time field that follows the date field when
// hasTimePart is set.
func decodeTime(t [6]byte) (hours, minutes, seconds uint8, nanos uint32) {
	n0 := (t[3] & 0b0111_1110) >> 1
	n1 := ((t[2] & 0b1111_1110) >> 1) + ((t[3] & 0b0000_0001) << 7)
	n2 := ((t[1] & 0b1111_1110) >> 1) + ((t[2] & 0b0000_0001) << 7)
	n3 := ((t[0] & 0b1111_1110) >> 1) + ((t[1] & 0b0000_0001) << 7)
	nanos = uint32(n3) | uint32(n2)<<8 | uint32(n1)<<16 | uint32(n0)<<24

	seconds = ((t[3] & 0b1000_0000) >> 7) + ((t[4] & 0b0001_1111) << 1)
	minutes = ((t[4] & 0b1110_0000) >> 5) + ((t[5] & 0b0000_0111) << 3)
	hours = (t[5] & 0b1111_1000) >> 3
	return
}

// decodeTimestamp combines the date and optional time fields into a single
// UTC instant.
func decodeTimestamp(d [4]byte, t [6]byte, hasTimePart bool) time.Time {
	_, dayOfMonth, month, year := decodeDate(d)
	var hours, minutes, seconds uint8
	var nanos uint32
	if hasTimePart {
		hours, minutes, seconds, nanos = decodeTime(t)
	}
	return time.Date(int(year), time.Month(month), int(dayOfMonth), int(hours), int(minutes), int(seconds), int(nanos), time.UTC)
}
