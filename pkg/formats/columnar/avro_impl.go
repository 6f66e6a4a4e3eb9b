package columnar

import (
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/goccy/go-json"
	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

const avroRecordName = "archive_record"

// avroEncoder writes each batch as one OCF block.
type avroEncoder struct {
	schema *arrow.Schema
	ocf    *goavro.OCFWriter
}

func newAvroEncoder(w io.Writer, schema *arrow.Schema, cfg *WriterConfig) (*avroEncoder, error) {
	avroSchema, err := arrowToAvroSchema(schema)
	if err != nil {
		return nil, err
	}

	compression, err := avroCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}

	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Schema:          avroSchema,
		CompressionName: compression,
	})
	if err != nil {
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to create avro writer")
	}
	return &avroEncoder{schema: schema, ocf: ocf}, nil
}

func (e *avroEncoder) Write(rec arrow.Record) error {
	rows := make([]interface{}, rec.NumRows())
	for i := range rows {
		native := make(map[string]interface{}, rec.NumCols())
		for c, col := range rec.Columns() {
			name := e.schema.Field(c).Name
			if col.IsNull(i) {
				native[name] = nil
				continue
			}
			switch a := col.(type) {
			case *array.String:
				native[name] = goavro.Union("string", a.Value(i))
			case *array.Binary:
				native[name] = goavro.Union("bytes", a.Value(i))
			case *array.Int64:
				native[name] = goavro.Union("long", a.Value(i))
			default:
				return fmt.Errorf("unsupported column type %s", col.DataType())
			}
		}
		rows[i] = native
	}
	return e.ocf.Append(rows)
}

// Close is a no-op; the OCF writer flushes on every Append.
func (e *avroEncoder) Close() error {
	return nil
}

func avroCompression(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", "none", "null":
		return goavro.CompressionNullLabel, nil
	case "deflate":
		return goavro.CompressionDeflateLabel, nil
	case "snappy":
		return goavro.CompressionSnappyLabel, nil
	default:
		return "", archiveerrors.Newf(archiveerrors.ErrorTypeSerialization, "unsupported avro compression: %s", name)
	}
}

type avroField struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type avroRecord struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []avroField `json:"fields"`
}

// arrowToAvroSchema maps every field to a nullable union.
func arrowToAvroSchema(schema *arrow.Schema) (string, error) {
	rec := avroRecord{Type: "record", Name: avroRecordName}
	for _, f := range schema.Fields() {
		var primitive string
		switch f.Type.ID() {
		case arrow.STRING:
			primitive = "string"
		case arrow.BINARY:
			primitive = "bytes"
		case arrow.INT64:
			primitive = "long"
		default:
			return "", archiveerrors.Newf(archiveerrors.ErrorTypeSerialization,
				"field %q has type %s with no avro mapping", f.Name, f.Type)
		}
		union, _ := json.Marshal([]string{"null", primitive})
		rec.Fields = append(rec.Fields, avroField{Name: f.Name, Type: union})
	}

	out, err := json.Marshal(rec)
	if err != nil {
		return "", archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to build avro schema")
	}
	return string(out), nil
}

// avroToArrowSchema reverses arrowToAvroSchema.
func avroToArrowSchema(avroSchema string) (*arrow.Schema, error) {
	var rec avroRecord
	if err := json.Unmarshal([]byte(avroSchema), &rec); err != nil {
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to parse avro schema")
	}

	fields := make([]arrow.Field, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		var (
			names    []string
			single   string
			nullable bool
		)
		if err := json.Unmarshal(f.Type, &names); err != nil {
			if err := json.Unmarshal(f.Type, &single); err != nil {
				return nil, archiveerrors.Newf(archiveerrors.ErrorTypeSerialization,
					"field %q has an unsupported avro type", f.Name)
			}
			names = []string{single}
		}

		var dt arrow.DataType
		for _, n := range names {
			switch n {
			case "null":
				nullable = true
			case "string":
				dt = arrow.BinaryTypes.String
			case "bytes":
				dt = arrow.BinaryTypes.Binary
			case "long":
				dt = arrow.PrimitiveTypes.Int64
			}
		}
		if dt == nil {
			return nil, archiveerrors.Newf(archiveerrors.ErrorTypeSerialization,
				"field %q has an unsupported avro type", f.Name)
		}
		fields = append(fields, arrow.Field{Name: f.Name, Type: dt, Nullable: nullable})
	}
	return arrow.NewSchema(fields, nil), nil
}

// unwrapUnion strips the single-key map goavro decodes unions into.
func unwrapUnion(v interface{}) interface{} {
	if m, ok := v.(map[string]interface{}); ok && len(m) == 1 {
		for _, inner := range m {
			return inner
		}
	}
	return v
}
