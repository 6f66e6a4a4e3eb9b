package frame

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
	"github.com/ajitpratap0/archivepipe/pkg/metrics"
	"github.com/ajitpratap0/archivepipe/pkg/models"
	"github.com/ajitpratap0/archivepipe/pkg/observability"
)

// FromImages builds a single-batch frame over ImageSchema. Row i holds
// records[i]; an empty input yields one empty batch.
func (s *Session) FromImages(records []models.BinaryRecord) (*Frame, error) {
	start := time.Now()

	keys := array.NewStringBuilder(s.mem)
	defer keys.Release()
	names := array.NewStringBuilder(s.mem)
	defer names.Release()
	payloads := array.NewBinaryBuilder(s.mem, arrow.BinaryTypes.Binary)
	defer payloads.Release()

	keys.Reserve(len(records))
	names.Reserve(len(records))
	payloads.Reserve(len(records))

	var size, nameBytes int64
	for _, r := range records {
		size += int64(len(r.Payload))
		nameBytes += int64(len(r.FileName)) + int64(len(r.Key))
	}
	if err := checkColumnBytes(ColumnPayload, size); err != nil {
		return nil, err
	}
	if err := checkColumnBytes(ColumnFileName, nameBytes); err != nil {
		return nil, err
	}
	payloads.ReserveData(int(size))

	for _, r := range records {
		keys.Append(r.Key)
		names.Append(r.FileName)
		payloads.Append(r.Payload)
	}

	return s.finish(ImageSchema(), models.KindImage, start,
		keys.NewArray(), names.NewArray(), payloads.NewArray())
}

// FromText builds a single-batch frame over TextSchema.
func (s *Session) FromText(records []models.TextRecord) (*Frame, error) {
	start := time.Now()

	keys := array.NewStringBuilder(s.mem)
	defer keys.Release()
	names := array.NewStringBuilder(s.mem)
	defer names.Release()
	contents := array.NewStringBuilder(s.mem)
	defer contents.Release()

	var size, nameBytes int64
	for _, r := range records {
		size += int64(len(r.Content))
		nameBytes += int64(len(r.FileName)) + int64(len(r.Key))
	}
	if err := checkColumnBytes(ColumnContent, size); err != nil {
		return nil, err
	}
	if err := checkColumnBytes(ColumnFileName, nameBytes); err != nil {
		return nil, err
	}

	keys.Reserve(len(records))
	names.Reserve(len(records))
	contents.Reserve(len(records))
	contents.ReserveData(int(size))

	for _, r := range records {
		keys.Append(r.Key)
		names.Append(r.FileName)
		contents.Append(r.Content)
	}

	return s.finish(TextSchema(), models.KindText, start,
		keys.NewArray(), names.NewArray(), contents.NewArray())
}

func (s *Session) finish(schema *arrow.Schema, kind models.Kind, start time.Time, cols ...arrow.Array) (*Frame, error) {
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	_, span := observability.StartSpan(context.Background(), "convert."+string(kind),
		attribute.String("kind", string(kind)))
	defer span.End()

	rec, err := NewBatch(schema, cols)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	defer rec.Release()

	span.SetAttributes(attribute.Int64("rows", rec.NumRows()))
	metrics.ObserveConversion(time.Since(start))
	s.logger.Debug("built frame",
		zap.String("kind", string(kind)),
		zap.Int64("rows", rec.NumRows()))

	return s.ReadBatch(rec), nil
}

// maxColumnBytes is the data a utf8 or binary column can address with its
// int32 offsets.
var maxColumnBytes int64 = math.MaxInt32

// checkColumnBytes rejects a column whose values would overflow its offsets.
// Name and key bytes are checked together as a conservative bound.
func checkColumnBytes(column string, size int64) error {
	if size <= maxColumnBytes {
		return nil
	}
	return archiveerrors.Newf(archiveerrors.ErrorTypeSerialization,
		"column %q needs %d bytes, more than a single batch can address", column, size).
		WithDetail("column", column).
		WithDetail("max_bytes", maxColumnBytes)
}

// NewBatch assembles a record batch after checking cols against schema.
// A column whose type does not match its field is a serialization error.
// Columns of unequal length are a programming error and panic.
func NewBatch(schema *arrow.Schema, cols []arrow.Array) (arrow.Record, error) {
	if len(cols) != schema.NumFields() {
		return nil, archiveerrors.Newf(archiveerrors.ErrorTypeSerialization,
			"batch has %d columns, schema has %d", len(cols), schema.NumFields())
	}

	rows := int64(-1)
	for i, col := range cols {
		field := schema.Field(i)
		if !arrow.TypeEqual(field.Type, col.DataType()) {
			return nil, archiveerrors.Newf(archiveerrors.ErrorTypeSerialization,
				"column %q has type %s, schema wants %s", field.Name, col.DataType(), field.Type).
				WithDetail("column", field.Name)
		}
		n := int64(col.Len())
		if rows >= 0 && n != rows {
			panic(fmt.Sprintf("frame: column %q has %d rows, want %d", field.Name, n, rows))
		}
		rows = n
	}
	if rows < 0 {
		rows = 0
	}

	return array.NewRecord(schema, cols, rows), nil
}
