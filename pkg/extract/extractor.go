// Package extract turns archive entries into typed records.
//
// An Extractor walks every entry of an archive in order, skips directories,
// keeps the entries accepted by its Matcher, drains each kept entry completely and hands the
// bytes to a Builder together with a freshly generated key. Entries that do
// not match are never opened. The first failure aborts the whole extraction;
// there are no partial results.
//
// Text and Images are the two stock extractors:
//
//	records, err := extract.Text(ctx, "docs.zip")
//	images, err := extract.Images(ctx, "photos.zip", extract.WithKeyGenerator(gen))
package extract

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/archivepipe/pkg/archive"
	"github.com/ajitpratap0/archivepipe/pkg/metrics"
	"github.com/ajitpratap0/archivepipe/pkg/models"
	"github.com/ajitpratap0/archivepipe/pkg/observability"
)

// Builder constructs a record of type T from a matched entry.
// data is owned by the builder after the call.
type Builder[T any] func(key, name string, data []byte) (T, error)

// Extractor extracts records of type T from archives.
type Extractor[T any] struct {
	kind    models.Kind
	match   Matcher
	build   Builder[T]
	options options
}

type options struct {
	keys         models.KeyGenerator
	logger       *zap.Logger
	maxEntrySize int64
}

// Option configures an Extractor.
type Option func(*options)

// WithKeyGenerator replaces the default random UUID key generator.
func WithKeyGenerator(gen models.KeyGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.keys = gen
		}
	}
}

// WithLogger sets the logger for per-entry debug output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxEntrySize fails extraction when a matched entry decompresses to more
// than n bytes. Zero disables the limit.
func WithMaxEntrySize(n int64) Option {
	return func(o *options) {
		o.maxEntrySize = n
	}
}

// New creates an Extractor for one record kind.
func New[T any](kind models.Kind, match Matcher, build Builder[T], opts ...Option) *Extractor[T] {
	o := options{
		keys:   models.UUIDKeys{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Extractor[T]{
		kind:    kind,
		match:   match,
		build:   build,
		options: o,
	}
}

// ExtractFile opens the archive at path and extracts its matching entries.
func (x *Extractor[T]) ExtractFile(ctx context.Context, path string) ([]T, error) {
	ctx, span := observability.StartSpan(ctx, "extract."+string(x.kind))
	defer span.End()

	r, err := archive.Open(path,
		archive.WithLogger(x.options.logger),
		archive.WithMaxEntrySize(x.options.maxEntrySize))
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	defer r.Close()

	records, err := x.Extract(ctx, r)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return records, nil
}

// Extract walks r and returns the records built from matching entries in
// archive order. An archive with no matching entries yields an empty,
// non-nil slice.
func (x *Extractor[T]) Extract(ctx context.Context, r *archive.Reader) ([]T, error) {
	start := time.Now()
	records := make([]T, 0)
	var scanned int
	var extractedBytes int64

	cur := r.Entries()
	defer cur.Close()

	for cur.Next(ctx) {
		scanned++
		entry := cur.Entry()
		if entry.IsDir() || !x.match.Match(entry.Name()) {
			continue
		}

		data, err := entry.ReadAll()
		if err != nil {
			return nil, err
		}

		record, err := x.build(x.options.keys.NewKey(), entry.Name(), data)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
		extractedBytes += int64(len(data))

		x.options.logger.Debug("entry extracted",
			zap.String("kind", string(x.kind)),
			zap.String("entry", entry.Name()),
			zap.Int("index", entry.Index()),
			zap.Int("bytes", len(data)))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	metrics.ObserveExtraction(x.kind, scanned, len(records), extractedBytes, time.Since(start))

	x.options.logger.Info("extraction completed",
		zap.String("kind", string(x.kind)),
		zap.String("archive", r.Path()),
		zap.Int("entries", scanned),
		zap.Int("records", len(records)),
		zap.Duration("duration", time.Since(start)))

	return records, nil
}
