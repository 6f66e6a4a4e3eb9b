package pipeline

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/archivepipe/pkg/extract"
	"github.com/ajitpratap0/archivepipe/pkg/formats/columnar"
	"github.com/ajitpratap0/archivepipe/pkg/frame"
	"github.com/ajitpratap0/archivepipe/pkg/logger"
	"github.com/ajitpratap0/archivepipe/pkg/models"
	"github.com/ajitpratap0/archivepipe/pkg/observability"
)

// Pipeline runs extraction and export invocations. It holds no per-call
// state, so one Pipeline may serve concurrent invocations.
type Pipeline struct {
	logger       *zap.Logger
	keys         models.KeyGenerator
	maxEntrySize int64
	session      *frame.Session
	writer       *columnar.WriterConfig
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for stage and entry output.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithKeyGenerator replaces the random UUID key generator.
func WithKeyGenerator(gen models.KeyGenerator) Option {
	return func(p *Pipeline) {
		if gen != nil {
			p.keys = gen
		}
	}
}

// WithMaxEntrySize rejects entries that decompress to more than n bytes.
func WithMaxEntrySize(n int64) Option {
	return func(p *Pipeline) {
		p.maxEntrySize = n
	}
}

// WithSession sets the frame session used for conversion.
func WithSession(s *frame.Session) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.session = s
		}
	}
}

// WithWriterConfig sets the output format and compression for exports.
func WithWriterConfig(cfg *columnar.WriterConfig) Option {
	return func(p *Pipeline) {
		if cfg != nil {
			p.writer = cfg
		}
	}
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger: zap.NewNop(),
		keys:   models.UUIDKeys{},
		writer: columnar.DefaultWriterConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.session == nil {
		p.session = frame.NewSession(frame.WithLogger(p.logger))
	}
	return p
}

// ExtractText returns every .txt entry of the archive as a text record, in
// archive order.
func (p *Pipeline) ExtractText(ctx context.Context, archivePath string) ([]models.TextRecord, error) {
	ctx, done := p.begin(ctx, "extract_text", archivePath)
	records, err := extract.Text(ctx, archivePath, p.extractOptions(ctx)...)
	return records, done(err)
}

// ExtractImages returns every .jpg/.jpeg entry of the archive as Arrow
// batches over frame.ImageSchema. The caller owns the batches and must
// release them.
func (p *Pipeline) ExtractImages(ctx context.Context, archivePath string) ([]arrow.Record, error) {
	ctx, done := p.begin(ctx, "extract_images", archivePath)

	f, err := p.imageFrame(ctx, archivePath)
	if err != nil {
		return nil, done(err)
	}
	defer f.Release()

	batches, err := f.Collect(ctx)
	if err != nil {
		return nil, done(err)
	}
	return batches, done(nil)
}

// ExportImages writes the image frame of the archive to dest.
func (p *Pipeline) ExportImages(ctx context.Context, archivePath, dest string) (*columnar.WriteResult, error) {
	ctx, done := p.begin(ctx, "export_images", archivePath)

	f, err := p.imageFrame(ctx, archivePath)
	if err != nil {
		return nil, done(err)
	}
	defer f.Release()

	res, err := columnar.WriteFrame(ctx, f, dest, p.writer)
	if err != nil {
		return nil, done(err)
	}
	p.logWrite(ctx, res)
	return res, done(nil)
}

// ExportText writes the text frame of the archive to dest.
func (p *Pipeline) ExportText(ctx context.Context, archivePath, dest string) (*columnar.WriteResult, error) {
	ctx, done := p.begin(ctx, "export_text", archivePath)

	records, err := extract.Text(ctx, archivePath, p.extractOptions(ctx)...)
	if err != nil {
		return nil, done(err)
	}

	f, err := p.session.FromText(records)
	if err != nil {
		return nil, done(err)
	}
	defer f.Release()

	res, err := columnar.WriteFrame(ctx, f, dest, p.writer)
	if err != nil {
		return nil, done(err)
	}
	p.logWrite(ctx, res)
	return res, done(nil)
}

func (p *Pipeline) imageFrame(ctx context.Context, archivePath string) (*frame.Frame, error) {
	records, err := extract.Images(ctx, archivePath, p.extractOptions(ctx)...)
	if err != nil {
		return nil, err
	}
	return p.session.FromImages(records)
}

func (p *Pipeline) extractOptions(ctx context.Context) []extract.Option {
	return []extract.Option{
		extract.WithKeyGenerator(p.keys),
		extract.WithLogger(logger.FromContext(ctx, p.logger)),
		extract.WithMaxEntrySize(p.maxEntrySize),
	}
}

// begin tags ctx with a fresh invocation ID and opens the invocation span.
// The returned function ends the span and converts the error for callers.
func (p *Pipeline) begin(ctx context.Context, op, archivePath string) (context.Context, func(error) error) {
	ctx = logger.ContextWithArchive(ctx, uuid.NewString(), archivePath)
	ctx, span := observability.StartSpan(ctx, "pipeline."+op,
		attribute.String("archive", archivePath))

	log := logger.FromContext(ctx, p.logger)
	log.Debug("invocation started", zap.String("op", op))

	return ctx, func(err error) error {
		defer span.End()
		if err != nil {
			observability.RecordError(span, err)
			log.Error("invocation failed", zap.String("op", op), zap.Error(err))
			return toBoundary(err)
		}
		log.Info("invocation completed", zap.String("op", op))
		return nil
	}
}

func (p *Pipeline) logWrite(ctx context.Context, res *columnar.WriteResult) {
	logger.FromContext(ctx, p.logger).Info("wrote output",
		zap.String("destination", res.Destination),
		zap.String("format", string(res.Format)),
		zap.Int64("rows", res.Rows),
		zap.Int("bytes", res.Bytes))
}

// ExtractText runs ExtractText on a default Pipeline.
func ExtractText(ctx context.Context, archivePath string) ([]models.TextRecord, error) {
	return New().ExtractText(ctx, archivePath)
}

// ExtractImages runs ExtractImages on a default Pipeline.
func ExtractImages(ctx context.Context, archivePath string) ([]arrow.Record, error) {
	return New().ExtractImages(ctx, archivePath)
}
