// Package metrics provides Prometheus instrumentation for archivepipe.
//
// # Basic Usage
//
//	metrics.ObserveExtraction(models.KindImage, scanned, len(records), bytes, elapsed)
//	metrics.ObserveWrite("parquet", len(encoded), elapsed)
//
//	// Short-lived processes dump the default registry for the node
//	// exporter textfile collector before exiting.
//	_ = metrics.WriteTextfile("/var/lib/node_exporter/archivepipe.prom")
//
// # Metric Types
//
// Counter: entries scanned, records extracted, bytes extracted and written
// Histogram: wall-clock duration of each pipeline stage
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/archivepipe/pkg/models"
)

// Stage names used for the stage duration histogram.
const (
	StageExtract = "extract"
	StageConvert = "convert"
	StageWrite   = "write"
)

var (
	// EntriesScanned counts archive entries visited, matched or not
	EntriesScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivepipe_entries_scanned_total",
			Help: "Total number of archive entries visited",
		},
		[]string{"kind"},
	)

	// RecordsExtracted counts records built from matching entries
	RecordsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivepipe_records_extracted_total",
			Help: "Total number of records extracted from archives",
		},
		[]string{"kind"},
	)

	// BytesExtracted counts decompressed bytes of matching entries
	BytesExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivepipe_bytes_extracted_total",
			Help: "Total decompressed bytes of extracted entries",
		},
		[]string{"kind"},
	)

	// BytesWritten counts encoded bytes flushed to destinations
	BytesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivepipe_bytes_written_total",
			Help: "Total encoded bytes flushed to destinations",
		},
		[]string{"format"},
	)

	// StageDuration tracks wall-clock time per pipeline stage
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archivepipe_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"stage"},
	)
)

// ObserveExtraction records the outcome of one successful extraction pass.
func ObserveExtraction(kind models.Kind, scanned, records int, bytes int64, elapsed time.Duration) {
	k := string(kind)
	EntriesScanned.WithLabelValues(k).Add(float64(scanned))
	RecordsExtracted.WithLabelValues(k).Add(float64(records))
	BytesExtracted.WithLabelValues(k).Add(float64(bytes))
	StageDuration.WithLabelValues(StageExtract).Observe(elapsed.Seconds())
}

// ObserveConversion records the duration of one record-to-frame conversion.
func ObserveConversion(elapsed time.Duration) {
	StageDuration.WithLabelValues(StageConvert).Observe(elapsed.Seconds())
}

// ObserveWrite records one flushed output file.
func ObserveWrite(format string, bytes int, elapsed time.Duration) {
	BytesWritten.WithLabelValues(format).Add(float64(bytes))
	StageDuration.WithLabelValues(StageWrite).Observe(elapsed.Seconds())
}

// WriteTextfile writes the default registry in the Prometheus text format to
// path, replacing it atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
