package frame

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

// Frame is an immutable columnar table: one schema and its batches in order.
type Frame struct {
	session *Session
	schema  *arrow.Schema
	batches []arrow.Record
}

// Schema returns the logical schema of the frame.
func (f *Frame) Schema() *arrow.Schema {
	return f.schema
}

// Session returns the session the frame is bound to.
func (f *Frame) Session() *Session {
	return f.session
}

// NumRows returns the total number of rows across batches.
func (f *Frame) NumRows() int64 {
	var n int64
	for _, b := range f.batches {
		n += b.NumRows()
	}
	return n
}

// NumBatches returns the number of native batches.
func (f *Frame) NumBatches() int {
	return len(f.batches)
}

// Execute returns a reader streaming the frame's batches in order, re-sliced
// to the session batch size when one is set. The caller must Release the
// reader. Batches returned by the reader are valid until the
// next call to Next unless retained.
func (f *Frame) Execute(ctx context.Context) (array.RecordReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeCustom, "frame execution canceled")
	}

	// A table reader over zero rows yields no batches at all; an empty frame
	// still streams its single zero-row batch so callers keep the schema.
	if f.session != nil && f.session.batchSize > 0 && f.NumRows() > 0 {
		tbl := f.Table()
		defer tbl.Release()
		return array.NewTableReader(tbl, f.session.batchSize), nil
	}

	rr, err := array.NewRecordReader(f.schema, f.batches)
	if err != nil {
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to stream frame batches")
	}
	return rr, nil
}

// Collect materializes every batch of the frame. The caller owns the returned
// batches and must Release each of them.
func (f *Frame) Collect(ctx context.Context) ([]arrow.Record, error) {
	rr, err := f.Execute(ctx)
	if err != nil {
		return nil, err
	}
	defer rr.Release()

	out := make([]arrow.Record, 0, len(f.batches))
	for rr.Next() {
		rec := rr.Record()
		rec.Retain()
		out = append(out, rec)
	}
	if err := rr.Err(); err != nil {
		ReleaseAll(out)
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to collect frame batches")
	}
	return out, nil
}

// Table returns the frame as an arrow.Table. The caller must Release it.
func (f *Frame) Table() arrow.Table {
	return array.NewTableFromRecords(f.schema, f.batches)
}

// Release drops the frame's references to its batches.
func (f *Frame) Release() {
	ReleaseAll(f.batches)
	f.batches = nil
}

// ReleaseAll releases every batch in recs.
func ReleaseAll(recs []arrow.Record) {
	for _, rec := range recs {
		rec.Release()
	}
}
