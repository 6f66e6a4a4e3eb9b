package storage

import (
	"context"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

// GCSSink writes to one Cloud Storage object.
type GCSSink struct {
	client      *storage.Client
	loc         Location
	contentType string
}

func newGCSSink(ctx context.Context, loc Location, cfg Config) (*GCSSink, error) {
	var opts []option.ClientOption
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "failed to create GCS client")
	}

	return &GCSSink{client: client, loc: loc, contentType: cfg.ContentType}, nil
}

// Put streams data into a new object generation. The object only becomes
// visible when the writer closes cleanly.
func (s *GCSSink) Put(ctx context.Context, data []byte) error {
	w := s.client.Bucket(s.loc.Bucket).Object(s.loc.Key).NewWriter(ctx)
	if s.contentType != "" {
		w.ContentType = s.contentType
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "failed to write to GCS").
			WithDetail("destination", s.loc.String())
	}
	if err := w.Close(); err != nil {
		return archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "failed to finalize GCS object").
			WithDetail("destination", s.loc.String())
	}
	return nil
}

// Close closes the GCS client.
func (s *GCSSink) Close() error {
	return s.client.Close()
}

func (s *GCSSink) String() string { return s.loc.String() }
