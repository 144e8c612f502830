package value_test

import (
	"testing"
	"time"

	"github.com/siodb/siodb-go/value"
)

func TestIntegerBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		v    value.Value
		want string
	}{
		{"int8 min", value.Int8(-128), "-128"},
		{"int8 max", value.Int8(127), "127"},
		{"uint8 max", value.Uint8(255), "255"},
		{"int16 min", value.Int16(-32768), "-32768"},
		{"int16 max", value.Int16(32767), "32767"},
		{"uint16 max", value.Uint16(65535), "65535"},
		{"int32 min", value.Int32(-2147483648), "-2147483648"},
		{"uint32 max", value.Uint32(4294967295), "4294967295"},
		{"int64 min", value.Int64(-9223372036854775808), "-9223372036854775808"},
		{"uint64 max", value.Uint64(18446744073709551615), "18446744073709551615"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.String(); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBinaryRendersPlaceholder(t *testing.T) {
	t.Parallel()
	v := value.Binary([]byte{0xDE, 0xAD})
	if got := v.String(); got != "Binary string" {
		t.Fatalf("got %q", got)
	}
}

func TestTimestampRendersRFC3339Nano(t *testing.T) {
	t.Parallel()
	ts := time.Date(2024, 6, 15, 12, 30, 45, 123000, time.UTC)
	v := value.Timestamp(ts)
	want := "2024-06-15T12:30:45.000123Z"
	if got := v.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()
	if !value.Text("hi").Equal(value.Text("hi")) {
		t.Fatal("expected equal")
	}
	if value.Text("hi").Equal(value.Text("bye")) {
		t.Fatal("expected not equal")
	}
	if value.Int8(1).Equal(value.Uint8(1)) {
		t.Fatal("expected kind mismatch to be unequal")
	}
}
