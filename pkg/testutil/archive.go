package testutil

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Entry describes one file to place in a test archive.
type Entry struct {
	Name string
	Data []byte
	// Method is the zip compression method; zero means zip.Deflate unless
	// Stored is set. zstd.ZipMethodWinZip is also supported.
	Method uint16
	// Stored writes the entry uncompressed.
	Stored bool
	// NonUTF8 marks Name as not UTF-8 in the entry header.
	NonUTF8 bool
}

// File is shorthand for a deflated entry.
func File(name string, data string) Entry {
	return Entry{Name: name, Data: []byte(data)}
}

// BuildArchive returns the bytes of a zip archive containing entries in order.
func BuildArchive(t *testing.T, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())

	for _, e := range entries {
		method := e.Method
		switch {
		case e.Stored:
			method = zip.Store
		case method == 0:
			method = zip.Deflate
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:    e.Name,
			Method:  method,
			NonUTF8: e.NonUTF8,
		})
		if err != nil {
			t.Fatalf("create entry %q: %v", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("write entry %q: %v", e.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

// WriteArchive builds an archive and writes it to a temp file, returning the path.
func WriteArchive(t *testing.T, entries ...Entry) string {
	t.Helper()
	return WriteFile(t, "archive.zip", BuildArchive(t, entries...))
}

// JPEGBytes returns n deterministic bytes starting with a JPEG SOI marker.
func JPEGBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7)
	}
	if n >= 2 {
		b[0], b[1] = 0xFF, 0xD8
	}
	return b
}
