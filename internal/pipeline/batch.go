// Package pipeline runs many archive invocations concurrently.
//
// Each archive is still processed by a single goroutine, strictly in entry
// order; Batch only bounds how many archives are in flight at once. Results
// come back in job order regardless of completion order.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/archivepipe/pkg/formats/columnar"
	"github.com/ajitpratap0/archivepipe/pkg/frame"
	"github.com/ajitpratap0/archivepipe/pkg/models"
	archivepipe "github.com/ajitpratap0/archivepipe/pkg/pipeline"
)

// Job is one archive invocation.
type Job struct {
	Archive string
	Kind    models.Kind
	// Dest receives the exported frame; empty only extracts and counts rows.
	Dest string
}

// Result is the outcome of one Job.
type Result struct {
	Job      Job
	Rows     int64
	Write    *columnar.WriteResult
	Err      error
	Duration time.Duration
}

// BatchConfig configures a Batch.
type BatchConfig struct {
	// Workers bounds concurrent archives; zero means one.
	Workers int
	// FailFast cancels outstanding jobs after the first failure.
	FailFast bool
}

// Batch fans jobs out over a bounded errgroup.
type Batch struct {
	pipeline *archivepipe.Pipeline
	config   BatchConfig
	logger   *zap.Logger
	monitor  *ResourceMonitor

	completed int64
	failed    int64
}

// NewBatch creates a Batch running jobs through p.
func NewBatch(p *archivepipe.Pipeline, config BatchConfig, logger *zap.Logger) *Batch {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batch{
		pipeline: p,
		config:   config,
		logger:   logger,
		monitor:  NewResourceMonitor(),
	}
}

// Run executes jobs and returns one Result per job in job order. The error
// joins every job failure; with FailFast it is the first failure only.
func (b *Batch) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))

	var g *errgroup.Group
	gctx := ctx
	if b.config.FailFast {
		g, gctx = errgroup.WithContext(ctx)
	} else {
		g = &errgroup.Group{}
	}
	g.SetLimit(b.config.Workers)

	start := time.Now()
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = b.runJob(gctx, job)
			if b.config.FailFast {
				return results[i].Err
			}
			return nil
		})
	}
	firstErr := g.Wait()

	usage := b.monitor.Sample()
	b.logger.Info("batch completed",
		zap.Int("jobs", len(jobs)),
		zap.Int64("completed", atomic.LoadInt64(&b.completed)),
		zap.Int64("failed", atomic.LoadInt64(&b.failed)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Uint64("rss_bytes", usage.RSSBytes),
		zap.Float64("cpu_seconds", usage.CPUSeconds))

	if b.config.FailFast {
		return results, firstErr
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}

func (b *Batch) runJob(ctx context.Context, job Job) Result {
	start := time.Now()
	res := Result{Job: job}

	switch {
	case job.Dest != "" && job.Kind == models.KindText:
		res.Write, res.Err = b.pipeline.ExportText(ctx, job.Archive, job.Dest)
	case job.Dest != "":
		res.Write, res.Err = b.pipeline.ExportImages(ctx, job.Archive, job.Dest)
	case job.Kind == models.KindText:
		var records []models.TextRecord
		records, res.Err = b.pipeline.ExtractText(ctx, job.Archive)
		res.Rows = int64(len(records))
	default:
		var batches []arrow.Record
		batches, res.Err = b.pipeline.ExtractImages(ctx, job.Archive)
		for _, rec := range batches {
			res.Rows += rec.NumRows()
		}
		frame.ReleaseAll(batches)
	}
	if res.Write != nil {
		res.Rows = res.Write.Rows
	}
	res.Duration = time.Since(start)

	if res.Err != nil {
		atomic.AddInt64(&b.failed, 1)
		b.logger.Warn("archive failed", zap.String("archive", job.Archive), zap.Error(res.Err))
	} else {
		atomic.AddInt64(&b.completed, 1)
		b.logger.Debug("archive done",
			zap.String("archive", job.Archive),
			zap.Int64("rows", res.Rows),
			zap.Duration("duration", res.Duration))
	}
	return res
}

// DefaultDestination names the export of archive inside dir:
// photos.zip with kind image and parquet becomes dir/photos.image.parquet.
func DefaultDestination(dir, archive string, kind models.Kind, format columnar.Format) string {
	base := filepath.Base(archive)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	ext := ".parquet"
	if info := columnar.GetFormatInfo(format); info != nil {
		ext = info.FileExtension
	}
	return filepath.Join(dir, base+"."+string(kind)+ext)
}
