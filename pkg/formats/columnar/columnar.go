// Package columnar encodes frames into on-disk columnar files.
//
// WriteFrame streams a frame's batches into an encoder bound to an in-memory
// buffer, closes the encoder so the footer is complete, and only then hands
// the finished bytes to a storage sink in one write. A failed encode never
// touches the destination.
package columnar

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
	"github.com/ajitpratap0/archivepipe/pkg/frame"
	"github.com/ajitpratap0/archivepipe/pkg/metrics"
	"github.com/ajitpratap0/archivepipe/pkg/observability"
	"github.com/ajitpratap0/archivepipe/pkg/pool"
	"github.com/ajitpratap0/archivepipe/pkg/storage"
)

// Format represents a columnar storage format
type Format string

const (
	// Parquet is Apache Parquet format
	Parquet Format = "parquet"
	// Arrow is the Apache Arrow IPC file format
	Arrow Format = "arrow"
	// Avro is the Apache Avro object container format
	Avro Format = "avro"
)

// ParseFormat maps a format name to a Format. The empty string is Parquet.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return Parquet, nil
	case Parquet, Arrow, Avro:
		return f, nil
	case "ipc", "feather":
		return Arrow, nil
	default:
		return "", archiveerrors.Newf(archiveerrors.ErrorTypeCustom, "unsupported columnar format: %s", name)
	}
}

// WriterConfig configures columnar writers
type WriterConfig struct {
	// Format selects the encoding; empty picks it from the destination
	// extension (see ResolveFormat).
	Format Format
	// Compression names the codec; empty selects the format default.
	Compression string
	// MaxRowGroupLength caps parquet row groups; zero keeps the library default.
	MaxRowGroupLength int64
	Storage           storage.Config
}

// DefaultWriterConfig returns default writer configuration: the format
// follows the destination extension, Parquet when it names none.
func DefaultWriterConfig() *WriterConfig {
	return &WriterConfig{}
}

// ResolveFormat decides the encoding for dest. An empty configured format
// takes the one named by the destination extension, Parquet otherwise. A
// configured format that contradicts a known extension is rejected so a
// file never carries an extension of another encoding.
func ResolveFormat(configured Format, dest string) (Format, error) {
	named, known := formatForExtension(dest)
	if configured == "" {
		if known {
			return named, nil
		}
		return Parquet, nil
	}
	if GetFormatInfo(configured) == nil {
		return "", archiveerrors.Newf(archiveerrors.ErrorTypeSerialization,
			"unsupported columnar format: %s", configured)
	}
	if known && named != configured {
		return "", archiveerrors.Newf(archiveerrors.ErrorTypeSerialization,
			"destination %q has a %s extension but the output format is %s", dest, named, configured).
			WithDetail("destination", dest)
	}
	return configured, nil
}

// WriteResult describes a completed write.
type WriteResult struct {
	Destination string `json:"destination"`
	Format      Format `json:"format"`
	Rows        int64  `json:"rows"`
	Batches     int    `json:"batches"`
	Bytes       int    `json:"bytes"`
}

// encoder is a streaming file encoder. Close writes the footer.
type encoder interface {
	Write(rec arrow.Record) error
	Close() error
}

func newEncoder(w io.Writer, schema *arrow.Schema, cfg *WriterConfig, mem memory.Allocator) (encoder, error) {
	switch cfg.Format {
	case Parquet:
		return newParquetEncoder(w, schema, cfg, mem)
	case Arrow:
		return newArrowEncoder(w, schema, cfg, mem)
	case Avro:
		return newAvroEncoder(w, schema, cfg)
	default:
		return nil, archiveerrors.Newf(archiveerrors.ErrorTypeSerialization, "unsupported columnar format: %s", cfg.Format)
	}
}

// Encode streams every batch of f into w in order and closes the encoder.
// It returns the number of rows and non-empty batches written. An empty
// cfg.Format encodes Parquet.
func Encode(ctx context.Context, f *frame.Frame, w io.Writer, cfg *WriterConfig) (int64, int, error) {
	if cfg == nil {
		cfg = DefaultWriterConfig()
	}
	if cfg.Format == "" {
		resolved := *cfg
		resolved.Format = Parquet
		cfg = &resolved
	}

	rr, err := f.Execute(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer rr.Release()

	mem := memory.DefaultAllocator
	if sess := f.Session(); sess != nil {
		mem = sess.Allocator()
	}

	enc, err := newEncoder(w, f.Schema(), cfg, mem)
	if err != nil {
		return 0, 0, err
	}

	var (
		rows    int64
		batches int
	)
	for rr.Next() {
		if err := ctx.Err(); err != nil {
			_ = enc.Close()
			return 0, 0, archiveerrors.Wrap(err, archiveerrors.ErrorTypeCustom, "write canceled")
		}
		rec := rr.Record()
		if rec.NumRows() == 0 {
			continue
		}
		if err := enc.Write(rec); err != nil {
			_ = enc.Close()
			return 0, 0, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to encode batch").
				WithDetail("format", string(cfg.Format)).
				WithDetail("batch", batches)
		}
		rows += rec.NumRows()
		batches++
	}
	if err := rr.Err(); err != nil {
		_ = enc.Close()
		return 0, 0, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to read frame batches")
	}

	if err := enc.Close(); err != nil {
		return 0, 0, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to finalize encoder").
			WithDetail("format", string(cfg.Format))
	}
	return rows, batches, nil
}

// WriteFrame encodes f and writes the result to dest, creating or truncating
// it. The destination is opened only after encoding succeeded.
func WriteFrame(ctx context.Context, f *frame.Frame, dest string, cfg *WriterConfig) (*WriteResult, error) {
	if cfg == nil {
		cfg = DefaultWriterConfig()
	}
	format, err := ResolveFormat(cfg.Format, dest)
	if err != nil {
		return nil, err
	}
	resolved := *cfg
	resolved.Format = format
	cfg = &resolved

	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "write."+string(format),
		attribute.String("destination", dest))
	defer span.End()

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	rows, batches, err := Encode(ctx, f, buf, cfg)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	scfg := cfg.Storage
	if info := GetFormatInfo(format); info != nil {
		scfg.ContentType = info.MIMEType
	}
	if err := storage.Write(ctx, dest, buf.Bytes(), scfg); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	metrics.ObserveWrite(string(format), buf.Len(), time.Since(start))
	span.SetAttributes(
		attribute.Int64("rows", rows),
		attribute.Int("bytes", buf.Len()),
	)

	return &WriteResult{
		Destination: dest,
		Format:      format,
		Rows:        rows,
		Batches:     batches,
		Bytes:       buf.Len(),
	}, nil
}

// FormatInfo provides information about columnar formats
type FormatInfo struct {
	Format           Format
	Name             string
	Description      string
	FileExtension    string
	MIMEType         string
	SupportsCompress bool
	Compressions     []string
}

// GetFormatInfo returns information about a columnar format
func GetFormatInfo(format Format) *FormatInfo {
	switch format {
	case Parquet:
		return &FormatInfo{
			Format:           Parquet,
			Name:             "Apache Parquet",
			Description:      "Columnar storage format optimized for analytics",
			FileExtension:    ".parquet",
			MIMEType:         "application/vnd.apache.parquet",
			SupportsCompress: true,
			Compressions:     []string{"none", "snappy", "gzip", "brotli", "zstd", "lz4raw"},
		}
	case Arrow:
		return &FormatInfo{
			Format:           Arrow,
			Name:             "Apache Arrow",
			Description:      "Arrow IPC file format",
			FileExtension:    ".arrow",
			MIMEType:         "application/vnd.apache.arrow.file",
			SupportsCompress: true,
			Compressions:     []string{"none", "zstd", "lz4"},
		}
	case Avro:
		return &FormatInfo{
			Format:           Avro,
			Name:             "Apache Avro",
			Description:      "Row-oriented object container file",
			FileExtension:    ".avro",
			MIMEType:         "application/avro",
			SupportsCompress: true,
			Compressions:     []string{"none", "deflate", "snappy"},
		}
	default:
		return nil
	}
}

// ForPath guesses the format from a file extension, defaulting to Parquet.
func ForPath(path string) Format {
	if f, ok := formatForExtension(path); ok {
		return f
	}
	return Parquet
}

func formatForExtension(path string) (Format, bool) {
	lower := strings.ToLower(path)
	for _, f := range []Format{Parquet, Arrow, Avro} {
		if strings.HasSuffix(lower, GetFormatInfo(f).FileExtension) {
			return f, true
		}
	}
	return "", false
}
