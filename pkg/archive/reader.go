// Package archive provides sequential access to the entries of a zip archive.
//
// A Reader owns the underlying byte source for its whole lifetime. Entries are
// visited through a Cursor in ascending index order; advancing the cursor
// closes the previous entry's decompressing stream, so at most one entry
// stream is open at any time.
//
//	r, err := archive.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	cur := r.Entries()
//	defer cur.Close()
//	for cur.Next(ctx) {
//	    e := cur.Entry()
//	    if !strings.HasSuffix(e.Name(), ".txt") {
//	        continue
//	    }
//	    data, err := e.ReadAll()
//	    ...
//	}
//	if err := cur.Err(); err != nil {
//	    return err
//	}
package archive

import (
	"io"
	"os"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

// Reader provides entry enumeration over a zip central directory.
type Reader struct {
	path         string
	zipReader    *zip.Reader
	closer       io.Closer
	maxEntrySize int64
	logger       *zap.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithMaxEntrySize limits the decompressed size of any single entry read
// through the reader. Zero or negative disables the limit.
func WithMaxEntrySize(n int64) Option {
	return func(r *Reader) {
		r.maxEntrySize = n
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// Open opens the archive at path for random access and parses its central
// directory. The file stays open until Close.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is supplied by the caller
	if err != nil {
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "failed to open archive").
			WithDetail("path", path)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "failed to stat archive").
			WithDetail("path", path)
	}

	r, err := newReader(f, info.Size(), path, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader creates a Reader over an in-memory or otherwise random-access
// byte source of the given size. Close is a no-op for such readers.
func NewReader(readerAt io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	return newReader(readerAt, size, "", opts)
}

func newReader(readerAt io.ReaderAt, size int64, path string, opts []Option) (*Reader, error) {
	zr, err := zip.NewReader(readerAt, size)
	if err != nil {
		return nil, classifyRead(err, "failed to read central directory").
			WithDetail("path", path)
	}
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	r := &Reader{
		path:      path,
		zipReader: zr,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.logger.Debug("archive opened",
		zap.String("path", path),
		zap.Int("entries", len(zr.File)))

	return r, nil
}

// Path returns the filesystem path the reader was opened from, or "" for
// readers created with NewReader.
func (r *Reader) Path() string {
	return r.path
}

// Len returns the number of entries in the central directory.
func (r *Reader) Len() int {
	return len(r.zipReader.File)
}

// Entries returns a cursor positioned before the first entry.
func (r *Reader) Entries() *Cursor {
	return &Cursor{reader: r}
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	if err := r.closer.Close(); err != nil {
		return archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "failed to close archive").
			WithDetail("path", r.path)
	}
	r.closer = nil
	return nil
}
