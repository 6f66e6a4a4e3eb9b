package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/archivepipe/pkg/config"
	"github.com/ajitpratap0/archivepipe/pkg/logger"
	"github.com/ajitpratap0/archivepipe/pkg/metrics"
	"github.com/ajitpratap0/archivepipe/pkg/observability"
)

var version = "0.1.0"

// app carries the resolved configuration through a command invocation.
type app struct {
	v        *viper.Viper
	cfg      *config.Config
	log      *zap.Logger
	shutdown func(context.Context) error
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	a := &app{v: viper.New()}
	root := newRootCommand(a)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()

	a.finish()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "archivepipe",
		Short: "archivepipe - zip archives to columnar files",
		Long: `archivepipe reads zip archives, extracts text (.txt) and image (.jpg, .jpeg)
entries as keyed records, and writes them as Parquet, Arrow IPC or Avro files
to local disk, S3 or Cloud Storage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("format", "", "Output format (parquet, arrow, avro)")
	flags.String("compression", "", "Output compression codec")
	flags.Int64("max-entry-bytes", 0, "Reject entries that decompress to more bytes (0 disables)")
	flags.Int("workers", 0, "Archives processed concurrently")
	flags.Bool("fail-fast", false, "Stop remaining archives after the first failure")
	flags.String("metrics-textfile", "", "Write prometheus metrics to this file on exit")
	flags.Bool("trace", false, "Export trace spans to stderr")
	flags.Duration("timeout", 0, "Abort after this duration (0 disables)")

	_ = a.v.BindPFlags(flags)
	a.v.SetEnvPrefix("ARCHIVEPIPE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newTextCommand(a),
		newImagesCommand(a),
		newInspectCommand(a),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("archivepipe v%s\n", version)
				fmt.Printf("Go version: %s\n", runtime.Version())
				fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			},
		},
	)
	return root
}

// setup layers defaults, the config file, ARCHIVEPIPE_* variables and flags,
// then initializes logging, tracing and the timeout.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if path := a.v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if a.v.IsSet("log-level") {
		cfg.Logging.Level = a.v.GetString("log-level")
	}
	if a.v.IsSet("format") {
		cfg.Output.Format = a.v.GetString("format")
	}
	if a.v.IsSet("compression") {
		cfg.Output.Compression = a.v.GetString("compression")
	}
	if a.v.IsSet("max-entry-bytes") {
		cfg.Archive.MaxEntryBytes = a.v.GetInt64("max-entry-bytes")
	}
	if a.v.IsSet("workers") {
		cfg.Performance.Workers = a.v.GetInt("workers")
	}
	if a.v.IsSet("metrics-textfile") {
		cfg.Observability.MetricsTextfile = a.v.GetString("metrics-textfile")
		cfg.Observability.EnableMetrics = cfg.Observability.MetricsTextfile != ""
	}
	if a.v.IsSet("trace") {
		cfg.Observability.EnableTracing = a.v.GetBool("trace")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = logger.With(zap.String("component", "archivepipe-cli"))

	if cfg.Observability.EnableTracing {
		tc := observability.DefaultTracingConfig()
		tc.ServiceVersion = version
		tc.SamplingRate = cfg.Observability.TracingSampleRate
		shutdown, err := observability.InitTracing(tc)
		if err != nil {
			return err
		}
		a.shutdown = shutdown
	}

	if timeout := a.v.GetDuration("timeout"); timeout > 0 {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		cmd.SetContext(ctx)
		cobra.OnFinalize(cancel)
	}
	return nil
}

// finish flushes tracing, metrics and logs.
func (a *app) finish() {
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.shutdown(ctx)
		cancel()
	}
	if a.cfg != nil && a.cfg.Observability.EnableMetrics && a.cfg.Observability.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(a.cfg.Observability.MetricsTextfile); err != nil && a.log != nil {
			a.log.Warn("failed to write metrics", zap.Error(err))
		}
	}
	_ = logger.Sync()
}
