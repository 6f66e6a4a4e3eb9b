package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/archivepipe/pkg/formats/columnar"
	"github.com/ajitpratap0/archivepipe/pkg/models"
	archivepipe "github.com/ajitpratap0/archivepipe/pkg/pipeline"
	"github.com/ajitpratap0/archivepipe/pkg/testutil"
)

func archiveWith(t *testing.T, entries ...testutil.Entry) string {
	t.Helper()
	data := testutil.BuildArchive(t, entries...)
	return testutil.WriteFile(t, filepath.Base(t.Name())+".zip", data)
}

func TestBatchRunsAllJobsInOrder(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteFile(t, "a.zip", testutil.BuildArchive(t,
		testutil.File("1.txt", "one"), testutil.File("2.txt", "two")))
	b := testutil.WriteFile(t, "b.zip", testutil.BuildArchive(t,
		testutil.File("x.jpg", "jpg"), testutil.File("y.txt", "text")))

	jobs := []Job{
		{Archive: a, Kind: models.KindText},
		{Archive: b, Kind: models.KindImage},
		{Archive: b, Kind: models.KindImage, Dest: DefaultDestination(dir, b, models.KindImage, columnar.Parquet)},
		{Archive: a, Kind: models.KindText, Dest: DefaultDestination(dir, a, models.KindText, columnar.Avro)},
	}

	core, logs := observer.New(zap.InfoLevel)
	batch := NewBatch(archivepipe.New(), BatchConfig{Workers: 2}, zap.New(core))

	results, err := batch.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, r := range results {
		assert.Equal(t, jobs[i], r.Job)
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, int64(2), results[0].Rows)
	assert.Equal(t, int64(1), results[1].Rows)
	require.NotNil(t, results[2].Write)
	assert.Equal(t, int64(1), results[2].Write.Rows)
	assert.Equal(t, columnar.Avro, results[3].Write.Format)
	assert.Equal(t, int64(2), results[3].Rows)

	require.Equal(t, 1, logs.FilterMessage("batch completed").Len())
	fields := logs.FilterMessage("batch completed").All()[0].ContextMap()
	assert.Equal(t, int64(4), fields["completed"])
}

func TestBatchCollectsFailures(t *testing.T) {
	good := archiveWith(t, testutil.File("a.txt", "a"))
	jobs := []Job{
		{Archive: filepath.Join(t.TempDir(), "missing.zip"), Kind: models.KindText},
		{Archive: good, Kind: models.KindText},
	}

	results, err := NewBatch(archivepipe.New(), BatchConfig{Workers: 4}, nil).Run(context.Background(), jobs)
	require.Error(t, err)
	assert.True(t, archivepipe.IsIO(err))

	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, int64(1), results[1].Rows)
}

func TestBatchFailFast(t *testing.T) {
	jobs := []Job{
		{Archive: filepath.Join(t.TempDir(), "missing.zip"), Kind: models.KindImage},
	}

	_, err := NewBatch(archivepipe.New(), BatchConfig{FailFast: true}, nil).Run(context.Background(), jobs)
	require.Error(t, err)
	assert.True(t, archivepipe.IsIO(err))
}

func TestDefaultDestination(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "photos.image.parquet"),
		DefaultDestination("out", "/data/photos.zip", models.KindImage, columnar.Parquet))
	assert.Equal(t, filepath.Join("out", "docs.text.arrow"),
		DefaultDestination("out", "docs.zip", models.KindText, columnar.Arrow))
}

func TestResourceMonitorSample(t *testing.T) {
	usage := NewResourceMonitor().Sample()
	assert.GreaterOrEqual(t, usage.CPUSeconds, 0.0)
}
