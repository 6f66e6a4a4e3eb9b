package storage

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

// Uploader is the part of manager.Uploader the S3 sink uses.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Sink uploads to one S3 object.
type S3Sink struct {
	uploader    Uploader
	loc         Location
	contentType string
}

// NewS3Sink returns a sink uploading to bucket/key through uploader.
func NewS3Sink(uploader Uploader, bucket, key, contentType string) *S3Sink {
	return &S3Sink{
		uploader:    uploader,
		loc:         Location{Scheme: SchemeS3, Bucket: bucket, Key: key},
		contentType: contentType,
	}
}

func newS3Sink(ctx context.Context, loc Location, cfg Config) (*S3Sink, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "failed to load AWS configuration")
	}

	uploader := manager.NewUploader(s3.NewFromConfig(awsCfg))
	return NewS3Sink(uploader, loc.Bucket, loc.Key, cfg.ContentType), nil
}

// Put uploads data as the object body.
func (s *S3Sink) Put(ctx context.Context, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.loc.Bucket),
		Key:    aws.String(s.loc.Key),
		Body:   bytes.NewReader(data),
	}
	if s.contentType != "" {
		input.ContentType = aws.String(s.contentType)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return archiveerrors.Wrap(err, archiveerrors.ErrorTypeIO, "failed to upload to S3").
			WithDetail("destination", s.loc.String())
	}
	return nil
}

// Close is a no-op; the AWS client holds no resources.
func (s *S3Sink) Close() error { return nil }

func (s *S3Sink) String() string { return s.loc.String() }
