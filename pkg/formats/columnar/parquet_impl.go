package columnar

import (
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

// parquetEncoder writes batches as parquet row groups.
type parquetEncoder struct {
	fw *pqarrow.FileWriter
}

func newParquetEncoder(w io.Writer, schema *arrow.Schema, cfg *WriterConfig, mem memory.Allocator) (*parquetEncoder, error) {
	codec, err := parquetCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}

	opts := []parquet.WriterProperty{
		parquet.WithCompression(codec),
		parquet.WithAllocator(mem),
		parquet.WithCreatedBy("archivepipe"),
	}
	if cfg.MaxRowGroupLength > 0 {
		opts = append(opts, parquet.WithMaxRowGroupLength(cfg.MaxRowGroupLength))
	}
	// Raw payloads rarely repeat; dictionary pages only cost memory.
	for _, f := range schema.Fields() {
		if f.Type.ID() == arrow.BINARY {
			opts = append(opts, parquet.WithDictionaryFor(f.Name, false))
		}
	}

	fw, err := pqarrow.NewFileWriter(schema, w, parquet.NewWriterProperties(opts...),
		pqarrow.NewArrowWriterProperties(
			pqarrow.WithAllocator(mem),
			pqarrow.WithStoreSchema(),
		))
	if err != nil {
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to create parquet writer")
	}
	return &parquetEncoder{fw: fw}, nil
}

func (e *parquetEncoder) Write(rec arrow.Record) error {
	return e.fw.Write(rec)
}

func (e *parquetEncoder) Close() error {
	return e.fw.Close()
}

func parquetCompression(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "lz4", "lz4raw":
		return compress.Codecs.Lz4Raw, nil
	default:
		return compress.Codecs.Uncompressed, archiveerrors.Newf(archiveerrors.ErrorTypeSerialization,
			"unsupported parquet compression: %s", name)
	}
}
