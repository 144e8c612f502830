// Package resultset implements the Siodb result-set state machine: the
// READY/STREAMING/DRAINED transitions driven by executing a command and
// pulling rows, plus the row decoder that turns the raw byte stream
// following a ServerResponse into typed Row values.
package resultset

import (
	"fmt"
	"log"

	"github.com/siodb/siodb-go/protocol"
	"github.com/siodb/siodb-go/wire"
)

// State is one of the three result-set lifecycle states.
type State int

const (
	// Ready means no result set is open; a new command may be submitted.
	Ready State = iota
	// Streaming means rows are pending.
	Streaming
	// Drained means a result set existed but has been fully consumed; a new
	// command may be submitted, same as Ready.
	Drained
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Streaming:
		return "Streaming"
	case Drained:
		return "Drained"
	}
	return fmt.Sprintf("UnknownState(%d)", int(s))
}

// ResultSet tracks the state produced by one executed command: the column
// descriptions, any affected-row count, and the rows pulled so far.
type ResultSet struct {
	codec  *wire.Codec
	logger *log.Logger

	state State

	columns           []protocol.ColumnDescription
	nullBitmapPresent bool
	bitmapSize        int

	hasAffectedRowCount bool
	affectedRowCount    uint64

	rowCount   uint64
	currentRow Row
}

// New builds a ResultSet from a ServerResponse that carried no error
// messages. If the response declares no columns, the set starts Drained (no
// rows expected); otherwise it starts Streaming. logger receives one trace
// line per state transition and per Next call.
func New(codec *wire.Codec, resp *protocol.ServerResponse, logger *log.Logger) *ResultSet {
	rs := &ResultSet{
		codec:               codec,
		logger:              logger,
		columns:             resp.ColumnDescription,
		hasAffectedRowCount: resp.HasAffectedRowCount,
		affectedRowCount:    resp.AffectedRowCount,
	}

	if len(resp.ColumnDescription) == 0 {
		rs.state = Drained
		logger.Printf("resultset.New | columns=0, state=Drained")
		return rs
	}

	for _, col := range resp.ColumnDescription {
		if col.IsNull {
			rs.nullBitmapPresent = true
			break
		}
	}
	if rs.nullBitmapPresent {
		rs.bitmapSize = (len(resp.ColumnDescription) + 7) / 8
	}
	rs.state = Streaming
	logger.Printf("resultset.New | columns=%d, null_bitmap=%v, state=Streaming", len(resp.ColumnDescription), rs.nullBitmapPresent)
	return rs
}

// State reports the current lifecycle state.
func (rs *ResultSet) State() State { return rs.state }

// Columns reports the column descriptions of the executed command.
func (rs *ResultSet) Columns() []protocol.ColumnDescription { return rs.columns }

// AffectedRowCount reports the server's reported affected-row count, 0 if
// the server did not report one.
func (rs *ResultSet) AffectedRowCount() uint64 {
	if !rs.hasAffectedRowCount {
		return 0
	}
	return rs.affectedRowCount
}

// HasAffectedRowCount reports whether the server reported an affected-row
// count at all.
func (rs *ResultSet) HasAffectedRowCount() bool { return rs.hasAffectedRowCount }

// RowCount reports how many rows have been decoded so far.
func (rs *ResultSet) RowCount() uint64 { return rs.rowCount }

// Next decodes and stores the next row, returning false once the stream is
// exhausted. It is only valid to call this while State() == Streaming.
func (rs *ResultSet) Next() (bool, error) {
	rs.logger.Printf("resultset.Next | ---")
	if rs.state != Streaming {
		return false, fmt.Errorf("resultset: Next called in state %s, want Streaming", rs.state)
	}

	row, ok, err := readRow(rs.codec, rs.columns, rs.nullBitmapPresent, rs.bitmapSize)
	if err != nil {
		return false, err
	}
	if !ok {
		rs.state = Drained
		rs.currentRow = nil
		rs.logger.Printf("resultset.Next | drained, row_count=%d", rs.rowCount)
		return false, nil
	}

	rs.rowCount++
	rs.currentRow = row
	rs.logger.Printf("resultset.Next | row_count=%d", rs.rowCount)
	return true, nil
}

// Row returns the most recently decoded row. Its result is undefined before
// the first successful call to Next.
func (rs *ResultSet) Row() Row { return rs.currentRow }
