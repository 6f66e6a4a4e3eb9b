package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"syscall"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

// maxPrealloc caps the buffer preallocated from an entry's declared size.
const maxPrealloc = 64 << 20

// Cursor walks the entries of a Reader in ascending index order.
type Cursor struct {
	reader *Reader
	next   int
	cur    *Entry
	err    error
}

// Next advances to the next entry, closing the stream of the previous one.
// It returns false when the entries are exhausted or an error occurred; the
// error is then available from Err. Context cancellation is checked between
// entries.
func (c *Cursor) Next(ctx context.Context) bool {
	if err := c.closeCurrent(); err != nil {
		c.err = err
		return false
	}
	if c.err != nil || c.next >= c.reader.Len() {
		return false
	}
	if err := ctx.Err(); err != nil {
		c.err = archiveerrors.Wrap(err, archiveerrors.ErrorTypeCustom, "extraction canceled").
			WithDetail("index", c.next)
		return false
	}

	f := c.reader.zipReader.File[c.next]
	if !utf8.ValidString(f.Name) {
		c.err = archiveerrors.New(archiveerrors.ErrorTypeEncoding, "entry name is not valid UTF-8").
			WithDetail("path", c.reader.path).
			WithDetail("index", c.next).
			WithDetail("raw_name", []byte(f.Name))
		return false
	}

	c.cur = &Entry{
		file:    f,
		index:   c.next,
		path:    c.reader.path,
		maxSize: c.reader.maxEntrySize,
	}
	c.next++
	return true
}

// Entry returns the current entry. It is valid until the next call to Next.
func (c *Cursor) Entry() *Entry {
	return c.cur
}

// Err returns the first error encountered by the cursor.
func (c *Cursor) Err() error {
	return c.err
}

// Close closes the current entry stream, if any.
func (c *Cursor) Close() error {
	return c.closeCurrent()
}

func (c *Cursor) closeCurrent() error {
	if c.cur == nil {
		return nil
	}
	e := c.cur
	c.cur = nil
	return e.close()
}

// Entry is one file of the archive. Its stream is opened lazily, so entries
// that are never opened cost no decompression.
type Entry struct {
	file    *zip.File
	index   int
	path    string
	maxSize int64
	rc      io.ReadCloser
	read    int64
	closed  bool
}

// Name returns the entry name. It is always valid UTF-8.
func (e *Entry) Name() string {
	return e.file.Name
}

// Index returns the entry's position in the central directory.
func (e *Entry) Index() int {
	return e.index
}

// UncompressedSize returns the size declared in the central directory.
func (e *Entry) UncompressedSize() uint64 {
	return e.file.UncompressedSize64
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool {
	return e.file.FileInfo().IsDir()
}

// Open returns the decompressing stream of the entry. Repeated calls return
// the same stream. The stream is closed when the cursor advances.
func (e *Entry) Open() (io.Reader, error) {
	if e.closed {
		return nil, archiveerrors.New(archiveerrors.ErrorTypeCustom, "entry stream used after cursor advanced").
			WithDetail("entry", e.Name())
	}
	if e.rc == nil {
		rc, err := e.file.Open()
		if err != nil {
			return nil, classifyRead(err, "failed to locate entry").
				WithDetail("path", e.path).
				WithDetail("entry", e.Name()).
				WithDetail("index", e.index)
		}
		e.rc = rc
	}
	return e, nil
}

// Read implements io.Reader over the decompressed entry bytes, classifying
// failures and enforcing the reader's entry size limit.
func (e *Entry) Read(p []byte) (int, error) {
	if e.rc == nil {
		if _, err := e.Open(); err != nil {
			return 0, err
		}
	}

	n, err := e.rc.Read(p)
	e.read += int64(n)
	if e.maxSize > 0 && e.read > e.maxSize {
		return n, archiveerrors.New(archiveerrors.ErrorTypeArchiveFormat, "entry exceeds maximum size").
			WithDetail("path", e.path).
			WithDetail("entry", e.Name()).
			WithDetail("max_bytes", e.maxSize)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, classifyRead(err, "failed to decompress entry").
			WithDetail("path", e.path).
			WithDetail("entry", e.Name()).
			WithDetail("index", e.index)
	}
	return n, err
}

// ReadAll drains the entry into a freshly allocated slice owned by the caller.
func (e *Entry) ReadAll() ([]byte, error) {
	r, err := e.Open()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if size := e.UncompressedSize(); size > 0 && size <= maxPrealloc {
		buf.Grow(int(size))
	}
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Entry) close() error {
	e.closed = true
	if e.rc == nil {
		return nil
	}
	rc := e.rc
	e.rc = nil
	if err := rc.Close(); err != nil {
		return classifyRead(err, "failed to close entry").
			WithDetail("entry", e.Name())
	}
	return nil
}

// classifyRead maps failures of the backing byte source to ErrorTypeIO and
// everything the zip or decompression layers reject to ErrorTypeArchiveFormat.
func classifyRead(err error, message string) *archiveerrors.Error {
	var structured *archiveerrors.Error
	if errors.As(err, &structured) {
		return archiveerrors.Wrap(err, structured.Type, message)
	}

	var pathErr *fs.PathError
	var errno syscall.Errno
	if errors.As(err, &pathErr) || errors.As(err, &errno) || errors.Is(err, fs.ErrClosed) {
		return archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, message)
	}
	return archiveerrors.Wrap(err, archiveerrors.ErrorTypeArchiveFormat, message)
}
