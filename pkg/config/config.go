package config

import (
	"fmt"
	"runtime"

	"github.com/ajitpratap0/archivepipe/pkg/formats/columnar"
	"github.com/ajitpratap0/archivepipe/pkg/logger"
	"github.com/ajitpratap0/archivepipe/pkg/storage"
)

// Config is the complete archivepipe configuration.
type Config struct {
	// Logging configures the global zap logger
	Logging logger.Config `yaml:"logging" json:"logging"`

	// Archive limits applied while reading entries
	Archive ArchiveConfig `yaml:"archive" json:"archive"`

	// Output selects the columnar encoding of exports
	Output OutputConfig `yaml:"output" json:"output"`

	// Storage holds remote sink settings
	Storage storage.Config `yaml:"storage" json:"storage"`

	// Observability settings for metrics and tracing
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`

	// Performance settings for multi-archive runs
	Performance PerformanceConfig `yaml:"performance" json:"performance"`
}

// ArchiveConfig contains reader limits.
type ArchiveConfig struct {
	// MaxEntryBytes rejects entries that decompress to more bytes; 0 disables
	MaxEntryBytes int64 `yaml:"max_entry_bytes" json:"max_entry_bytes"`
}

// OutputConfig contains writer settings.
type OutputConfig struct {
	// Format is parquet, arrow or avro; empty follows the destination
	// extension and falls back to parquet
	Format string `yaml:"format" json:"format"`
	// Compression names the codec; empty selects the format default
	Compression string `yaml:"compression" json:"compression"`
	// MaxRowGroupLength caps parquet row groups; 0 keeps the library default
	MaxRowGroupLength int64 `yaml:"max_row_group_length" json:"max_row_group_length"`
	// BatchSize re-slices frames into batches of at most this many rows
	BatchSize int64 `yaml:"batch_size" json:"batch_size"`
}

// ObservabilityConfig contains metrics and tracing settings.
type ObservabilityConfig struct {
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
	// MetricsTextfile receives the prometheus text dump at exit when set
	MetricsTextfile   string  `yaml:"metrics_textfile" json:"metrics_textfile"`
	EnableTracing     bool    `yaml:"enable_tracing" json:"enable_tracing"`
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate"`
}

// PerformanceConfig contains concurrency settings.
type PerformanceConfig struct {
	// Workers bounds how many archives are processed at once
	Workers int `yaml:"workers" json:"workers"`
}

// Default returns a configuration with defaults for every field.
func Default() *Config {
	return &Config{
		Logging: logger.DefaultConfig(),
		Archive: ArchiveConfig{
			MaxEntryBytes: 0,
		},
		Output: OutputConfig{},
		Observability: ObservabilityConfig{
			EnableMetrics:     false,
			EnableTracing:     false,
			TracingSampleRate: 1.0,
		},
		Performance: PerformanceConfig{
			Workers: runtime.NumCPU(),
		},
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if _, err := columnar.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.Archive.MaxEntryBytes < 0 {
		return fmt.Errorf("archive.max_entry_bytes cannot be negative")
	}
	if c.Output.MaxRowGroupLength < 0 {
		return fmt.Errorf("output.max_row_group_length cannot be negative")
	}
	if c.Output.BatchSize < 0 {
		return fmt.Errorf("output.batch_size cannot be negative")
	}
	if c.Performance.Workers < 0 {
		return fmt.Errorf("performance.workers cannot be negative")
	}
	if r := c.Observability.TracingSampleRate; r < 0 || r > 1 {
		return fmt.Errorf("observability.tracing_sample_rate must be within [0, 1]")
	}
	switch c.Logging.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.encoding must be json or console")
	}
	return nil
}

// WriterConfig builds the columnar writer configuration. Validate must have
// succeeded.
func (c *Config) WriterConfig() *columnar.WriterConfig {
	var format columnar.Format
	if c.Output.Format != "" {
		format, _ = columnar.ParseFormat(c.Output.Format)
	}
	return &columnar.WriterConfig{
		Format:            format,
		Compression:       c.Output.Compression,
		MaxRowGroupLength: c.Output.MaxRowGroupLength,
		Storage:           c.Storage,
	}
}

// GetWorkers returns the number of workers, ensuring it's at least 1
func (p *PerformanceConfig) GetWorkers() int {
	if p.Workers <= 0 {
		return runtime.NumCPU()
	}
	return p.Workers
}
