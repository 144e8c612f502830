package protocol_test

import (
	"testing"

	"github.com/siodb/siodb-go/protocol"
)

func TestBeginSessionRoundTrip(t *testing.T) {
	t.Parallel()

	want := &protocol.BeginSessionRequest{UserName: "root"}
	got := &protocol.BeginSessionRequest{}
	if err := got.Unmarshal(want.Marshal()); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.UserName != want.UserName {
		t.Fatalf("got %q, want %q", got.UserName, want.UserName)
	}
}

func TestBeginSessionResponseRoundTrip(t *testing.T) {
	t.Parallel()

	want := &protocol.BeginSessionResponse{
		SessionStarted: true,
		Challenge:      []byte{1, 2, 3, 4, 5},
	}
	got := &protocol.BeginSessionResponse{}
	if err := got.Unmarshal(want.Marshal()); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.SessionStarted != want.SessionStarted {
		t.Fatalf("got SessionStarted=%v, want %v", got.SessionStarted, want.SessionStarted)
	}
	if string(got.Challenge) != string(want.Challenge) {
		t.Fatalf("got challenge %v, want %v", got.Challenge, want.Challenge)
	}
}

func TestServerResponseRoundTripWithColumnsAndErrors(t *testing.T) {
	t.Parallel()

	want := &protocol.ServerResponse{
		RequestID: 1,
		Message: []protocol.StatusMessage{
			{StatusCode: 1, Text: "syntax error"},
			{StatusCode: 1, Text: " at 1"},
		},
		ColumnDescription: []protocol.ColumnDescription{
			{Name: "id", DataType: protocol.ColumnDataTypeInt32, IsNull: false},
			{Name: "name", DataType: protocol.ColumnDataTypeText, IsNull: true},
		},
	}

	got := &protocol.ServerResponse{}
	if err := got.Unmarshal(want.Marshal()); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(got.Message) != 2 || got.Message[0].Text != "syntax error" || got.Message[1].Text != " at 1" {
		t.Fatalf("got messages %+v", got.Message)
	}
	if len(got.ColumnDescription) != 2 {
		t.Fatalf("got %d columns, want 2", len(got.ColumnDescription))
	}
	if got.ColumnDescription[0].DataType != protocol.ColumnDataTypeInt32 {
		t.Fatalf("got %v, want INT32", got.ColumnDescription[0].DataType)
	}
	if !got.ColumnDescription[1].IsNull {
		t.Fatal("expected second column nullable")
	}
}

func TestServerResponseAffectedRowCount(t *testing.T) {
	t.Parallel()

	want := &protocol.ServerResponse{
		HasAffectedRowCount: true,
		AffectedRowCount:    42,
	}
	got := &protocol.ServerResponse{}
	if err := got.Unmarshal(want.Marshal()); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.HasAffectedRowCount || got.AffectedRowCount != 42 {
		t.Fatalf("got %+v", got)
	}
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	t.Parallel()

	cmd := &protocol.Command{RequestID: 7, Text: "SELECT 1"}
	// Append field 9 (varint 1), which Command does not define.
	body := append(cmd.Marshal(), 0x48, 0x01)
	got := &protocol.Command{}
	if err := got.Unmarshal(body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.RequestID != 7 || got.Text != "SELECT 1" {
		t.Fatalf("got %+v", got)
	}
}
