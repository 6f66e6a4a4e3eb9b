package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		dest    string
		want    Location
		wantErr bool
	}{
		{name: "relative path", dest: "out.parquet", want: Location{Scheme: SchemeFile, Path: "out.parquet"}},
		{name: "absolute path", dest: "/tmp/x/out.parquet", want: Location{Scheme: SchemeFile, Path: "/tmp/x/out.parquet"}},
		{name: "file url", dest: "file:///tmp/out.arrow", want: Location{Scheme: SchemeFile, Path: "/tmp/out.arrow"}},
		{name: "s3", dest: "s3://bucket/a/b.parquet", want: Location{Scheme: SchemeS3, Bucket: "bucket", Key: "a/b.parquet"}},
		{name: "gcs", dest: "gs://bucket/b.avro", want: Location{Scheme: SchemeGCS, Bucket: "bucket", Key: "b.avro"}},
		{name: "empty", dest: "", wantErr: true},
		{name: "missing key", dest: "s3://bucket/", wantErr: true},
		{name: "missing bucket", dest: "gs:///key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.dest)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, archiveerrors.IsType(err, archiveerrors.ErrorTypeIO))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileSinkTruncatesAndWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(t, os.WriteFile(path, []byte("previous content that is longer"), 0o644))

	require.NoError(t, Write(context.Background(), path, []byte("new"), Config{}))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestFileSinkMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.bin")

	err := Write(context.Background(), path, []byte("x"), Config{})
	require.Error(t, err)
	assert.True(t, archiveerrors.IsType(err, archiveerrors.ErrorTypeIO))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileSinkCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFileSink(path).Put(ctx, []byte("x"))
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

type fakeUploader struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = input
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &manager.UploadOutput{}, nil
}

func TestS3SinkPut(t *testing.T) {
	up := &fakeUploader{}
	sink := NewS3Sink(up, "bucket", "out/images.parquet", "application/x-parquet")

	require.NoError(t, sink.Put(context.Background(), []byte("PAR1")))
	assert.Equal(t, "bucket", *up.input.Bucket)
	assert.Equal(t, "out/images.parquet", *up.input.Key)
	assert.Equal(t, "application/x-parquet", *up.input.ContentType)
	assert.Equal(t, []byte("PAR1"), up.body)
	assert.Equal(t, "s3://bucket/out/images.parquet", sink.String())
}

func TestS3SinkUploadFailureIsIO(t *testing.T) {
	sink := NewS3Sink(&fakeUploader{err: errors.New("access denied")}, "bucket", "k", "")

	err := sink.Put(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.True(t, archiveerrors.IsType(err, archiveerrors.ErrorTypeIO))
	assert.Contains(t, err.Error(), "access denied")
}
