package extract

import (
	"context"
	"unicode/utf8"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
	"github.com/ajitpratap0/archivepipe/pkg/models"
)

// BuildText decodes data as UTF-8 text.
func BuildText(key, name string, data []byte) (models.TextRecord, error) {
	if !utf8.Valid(data) {
		return models.TextRecord{}, archiveerrors.New(archiveerrors.ErrorTypeEncoding, "entry content is not valid UTF-8").
			WithDetail("entry", name)
	}
	return models.NewTextRecord(key, name, string(data)), nil
}

// BuildBinary keeps data as raw bytes.
func BuildBinary(key, name string, data []byte) (models.BinaryRecord, error) {
	return models.NewBinaryRecord(key, name, data), nil
}

// NewText returns the extractor for ".txt" entries.
func NewText(opts ...Option) *Extractor[models.TextRecord] {
	return New[models.TextRecord](models.KindText, TextSuffixes, BuildText, opts...)
}

// NewImages returns the extractor for ".jpg" and ".jpeg" entries.
func NewImages(opts ...Option) *Extractor[models.BinaryRecord] {
	return New[models.BinaryRecord](models.KindImage, ImageSuffixes, BuildBinary, opts...)
}

// Text extracts every ".txt" entry of the archive at path as a TextRecord.
func Text(ctx context.Context, path string, opts ...Option) ([]models.TextRecord, error) {
	return NewText(opts...).ExtractFile(ctx, path)
}

// Images extracts every ".jpg"/".jpeg" entry of the archive at path as a
// BinaryRecord.
func Images(ctx context.Context, path string, opts ...Option) ([]models.BinaryRecord, error) {
	return NewImages(opts...).ExtractFile(ctx, path)
}
