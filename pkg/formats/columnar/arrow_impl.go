package columnar

import (
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

// arrowEncoder writes batches as an Arrow IPC file.
type arrowEncoder struct {
	fw *ipc.FileWriter
}

func newArrowEncoder(w io.Writer, schema *arrow.Schema, cfg *WriterConfig, mem memory.Allocator) (*arrowEncoder, error) {
	opts := []ipc.Option{
		ipc.WithSchema(schema),
		ipc.WithAllocator(mem),
	}
	switch strings.ToLower(cfg.Compression) {
	case "", "none", "uncompressed":
	case "zstd":
		opts = append(opts, ipc.WithZstd())
	case "lz4":
		opts = append(opts, ipc.WithLZ4())
	default:
		return nil, archiveerrors.Newf(archiveerrors.ErrorTypeSerialization,
			"unsupported arrow compression: %s", cfg.Compression)
	}

	fw, err := ipc.NewFileWriter(w, opts...)
	if err != nil {
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeSerialization, "failed to create arrow writer")
	}
	return &arrowEncoder{fw: fw}, nil
}

func (e *arrowEncoder) Write(rec arrow.Record) error {
	return e.fw.Write(rec)
}

func (e *arrowEncoder) Close() error {
	return e.fw.Close()
}
