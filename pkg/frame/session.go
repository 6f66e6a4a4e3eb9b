// Package frame materializes extracted records as Apache Arrow record batches.
//
// A Session is the execution context frames are bound to: it owns the memory
// allocator and decides how batches are streamed. A Frame is an immutable
// schema plus ordered batches; Execute streams them one at a time and Collect
// hands fully realized batches to the caller.
//
//	sess := frame.NewSession()
//	f, err := sess.FromImages(records)
//	if err != nil {
//	    return err
//	}
//	defer f.Release()
//
//	batches, err := f.Collect(ctx)
package frame

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"
)

// Session is the execution context shared by the frames it creates.
type Session struct {
	mem       memory.Allocator
	logger    *zap.Logger
	batchSize int64
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithAllocator sets the allocator used for all column buffers.
func WithAllocator(mem memory.Allocator) SessionOption {
	return func(s *Session) {
		if mem != nil {
			s.mem = mem
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBatchSize makes Execute re-slice frames into batches of at most n rows.
// Zero keeps the frame's native batches.
func WithBatchSize(n int64) SessionOption {
	return func(s *Session) {
		if n >= 0 {
			s.batchSize = n
		}
	}
}

// NewSession creates a Session backed by the Go allocator.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		mem:    memory.NewGoAllocator(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allocator returns the session allocator.
func (s *Session) Allocator() memory.Allocator {
	return s.mem
}

// ReadBatch wraps a single batch in a frame. The frame retains rec; the
// caller keeps its own reference.
func (s *Session) ReadBatch(rec arrow.Record) *Frame {
	rec.Retain()
	return &Frame{
		session: s,
		schema:  rec.Schema(),
		batches: []arrow.Record{rec},
	}
}

// ReadBatches wraps batches sharing schema in a frame, retaining each.
func (s *Session) ReadBatches(schema *arrow.Schema, recs []arrow.Record) *Frame {
	batches := make([]arrow.Record, len(recs))
	for i, rec := range recs {
		rec.Retain()
		batches[i] = rec
	}
	return &Frame{
		session: s,
		schema:  schema,
		batches: batches,
	}
}
