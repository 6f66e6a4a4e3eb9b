package columnar

import (
	"bytes"
	"context"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

// ReadFile loads a file written by WriteFrame back into a table. The caller
// must Release the table.
func ReadFile(ctx context.Context, path string, format Format) (arrow.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "failed to read columnar file").
			WithDetail("path", path)
	}
	return Decode(ctx, data, format, memory.DefaultAllocator)
}

// Decode parses an encoded file held in memory.
func Decode(ctx context.Context, data []byte, format Format, mem memory.Allocator) (arrow.Table, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	switch format {
	case Parquet, "":
		tbl, err := pqarrow.ReadTable(ctx, bytes.NewReader(data), parquet.NewReaderProperties(mem),
			pqarrow.ArrowReadProperties{}, mem)
		if err != nil {
			return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to decode parquet")
		}
		return tbl, nil
	case Arrow:
		return decodeArrow(data, mem)
	case Avro:
		return decodeAvro(data, mem)
	default:
		return nil, archiveerrors.Newf(archiveerrors.ErrorTypeCustom, "unsupported columnar format: %s", format)
	}
}

func decodeArrow(data []byte, mem memory.Allocator) (arrow.Table, error) {
	r, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(mem))
	if err != nil {
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to open arrow file")
	}
	defer r.Close()

	recs := make([]arrow.Record, 0, r.NumRecords())
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.RecordAt(i)
		if err != nil {
			return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to decode arrow batch").
				WithDetail("batch", i)
		}
		recs = append(recs, rec)
	}
	return array.NewTableFromRecords(r.Schema(), recs), nil
}

func decodeAvro(data []byte, mem memory.Allocator) (arrow.Table, error) {
	ocf, err := goavro.NewOCFReader(bytes.NewReader(data))
	if err != nil {
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to open avro file")
	}

	schema, err := avroToArrowSchema(ocf.Codec().Schema())
	if err != nil {
		return nil, err
	}

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for ocf.Scan() {
		datum, err := ocf.Read()
		if err != nil {
			return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to decode avro record")
		}
		row, _ := datum.(map[string]interface{})
		for i, f := range schema.Fields() {
			appendAvroValue(b.Field(i), unwrapUnion(row[f.Name]))
		}
	}
	if err := ocf.Err(); err != nil {
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to scan avro file")
	}

	rec := b.NewRecord()
	defer rec.Release()
	return array.NewTableFromRecords(schema, []arrow.Record{rec}), nil
}

func appendAvroValue(b array.Builder, v interface{}) {
	if v == nil {
		b.AppendNull()
		return
	}
	switch fb := b.(type) {
	case *array.StringBuilder:
		s, _ := v.(string)
		fb.Append(s)
	case *array.BinaryBuilder:
		p, _ := v.([]byte)
		fb.Append(p)
	case *array.Int64Builder:
		n, _ := v.(int64)
		fb.Append(n)
	default:
		b.AppendNull()
	}
}
