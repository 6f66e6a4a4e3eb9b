package storage

import (
	"context"
	"os"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

// FileSink writes to a local file.
type FileSink struct {
	path string
}

// NewFileSink returns a sink for path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Put creates or truncates the file and writes data in one call. Parent
// directories are not created.
func (s *FileSink) Put(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "write canceled").
			WithDetail("path", s.path)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "failed to create output file").
			WithDetail("path", s.path)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "failed to write output file").
			WithDetail("path", s.path)
	}

	if err := f.Close(); err != nil {
		return archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "failed to flush output file").
			WithDetail("path", s.path)
	}
	return nil
}

// Close is a no-op.
func (s *FileSink) Close() error { return nil }

func (s *FileSink) String() string { return s.path }
