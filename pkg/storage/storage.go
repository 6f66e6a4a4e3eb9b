// Package storage writes finished output buffers to their destination.
//
// A destination is either a local path or an object URL (s3://bucket/key,
// gs://bucket/key). Every sink receives the complete encoded file in a single
// Put; nothing is created at the destination before that call.
package storage

import (
	"context"
	"net/url"
	"strings"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

// Schemes understood by Open.
const (
	SchemeFile = "file"
	SchemeS3   = "s3"
	SchemeGCS  = "gs"
)

// Sink receives one complete output file.
type Sink interface {
	// Put writes data as the whole content of the destination, replacing it.
	Put(ctx context.Context, data []byte) error
	// Close releases clients held by the sink.
	Close() error
	String() string
}

// Config holds the settings remote sinks need.
type Config struct {
	S3Region           string `yaml:"s3_region" json:"s3_region"`
	GCSCredentialsFile string `yaml:"gcs_credentials_file" json:"gcs_credentials_file"`
	// ContentType is attached to uploaded objects when set.
	ContentType string `yaml:"-" json:"-"`
}

// Location is a parsed destination.
type Location struct {
	Scheme string
	Bucket string
	Key    string
	// Path is the local path for file destinations.
	Path string
}

func (l Location) String() string {
	if l.Scheme == SchemeFile {
		return l.Path
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}

// Parse splits dest into a Location. Anything without an s3:// or gs://
// prefix is a local path.
func Parse(dest string) (Location, error) {
	if dest == "" {
		return Location{}, archiveerrors.New(archiveerrors.ErrorTypeIO, "destination is empty")
	}
	if !strings.HasPrefix(dest, SchemeS3+"://") && !strings.HasPrefix(dest, SchemeGCS+"://") {
		return Location{Scheme: SchemeFile, Path: strings.TrimPrefix(dest, "file://")}, nil
	}

	u, err := url.Parse(dest)
	if err != nil {
		return Location{}, archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "invalid destination").
			WithDetail("destination", dest)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" || strings.HasSuffix(key, "/") {
		return Location{}, archiveerrors.Newf(archiveerrors.ErrorTypeIO,
			"destination %q must name a bucket and an object key", dest)
	}
	return Location{Scheme: u.Scheme, Bucket: u.Host, Key: key}, nil
}

// Open resolves dest to a sink. Remote sinks create their clients here; the
// object itself is only written by Put.
func Open(ctx context.Context, dest string, cfg Config) (Sink, error) {
	loc, err := Parse(dest)
	if err != nil {
		return nil, err
	}

	var sink Sink
	switch loc.Scheme {
	case SchemeS3:
		sink, err = newS3Sink(ctx, loc, cfg)
	case SchemeGCS:
		sink, err = newGCSSink(ctx, loc, cfg)
	default:
		sink = NewFileSink(loc.Path)
	}
	if err != nil {
		return nil, err
	}
	return sink, nil
}

// Write opens dest, puts data and closes the sink.
func Write(ctx context.Context, dest string, data []byte, cfg Config) error {
	sink, err := Open(ctx, dest, cfg)
	if err != nil {
		return err
	}
	if err := sink.Put(ctx, data); err != nil {
		_ = sink.Close()
		return err
	}
	return sink.Close()
}
