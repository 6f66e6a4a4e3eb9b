// Package models defines the typed records produced by archive extraction.
//
// Two record shapes exist: TextRecord for entries decoded as UTF-8 text and
// BinaryRecord for entries kept as raw bytes (images). Both carry a synthetic
// Key generated per extraction call; the key is never derived from the entry
// name or content, so the same archive yields different keys on every run.
package models

// TextRecord is one text entry of an archive.
type TextRecord struct {
	// Key is the synthetic primary key generated at extraction time
	Key string `json:"key"`
	// FileName is the entry name inside the archive
	FileName string `json:"file_name"`
	// Content is the decompressed entry decoded as UTF-8
	Content string `json:"content"`
}

// BinaryRecord is one binary entry of an archive.
type BinaryRecord struct {
	// Key is the synthetic primary key generated at extraction time
	Key string `json:"key"`
	// FileName is the entry name inside the archive
	FileName string `json:"file_name"`
	// Payload is the decompressed entry bytes, owned by the record
	Payload []byte `json:"payload"`
}

// NewTextRecord creates a TextRecord.
func NewTextRecord(key, fileName, content string) TextRecord {
	return TextRecord{Key: key, FileName: fileName, Content: content}
}

// NewBinaryRecord creates a BinaryRecord. The payload is retained, not copied;
// callers hand over ownership.
func NewBinaryRecord(key, fileName string, payload []byte) BinaryRecord {
	return BinaryRecord{Key: key, FileName: fileName, Payload: payload}
}

// Kind names a record shape. It labels metrics and selects schemas.
type Kind string

const (
	// KindText labels TextRecord collections
	KindText Kind = "text"
	// KindImage labels BinaryRecord collections extracted from image entries
	KindImage Kind = "image"
)
