package main

import (
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/archivepipe/internal/pipeline"
	"github.com/ajitpratap0/archivepipe/pkg/formats/columnar"
	"github.com/ajitpratap0/archivepipe/pkg/frame"
	"github.com/ajitpratap0/archivepipe/pkg/models"
	archivepipe "github.com/ajitpratap0/archivepipe/pkg/pipeline"
)

func (a *app) pipeline() *archivepipe.Pipeline {
	return archivepipe.New(
		archivepipe.WithLogger(a.log),
		archivepipe.WithMaxEntrySize(a.cfg.Archive.MaxEntryBytes),
		archivepipe.WithWriterConfig(a.cfg.WriterConfig()),
		archivepipe.WithSession(frame.NewSession(
			frame.WithLogger(a.log),
			frame.WithBatchSize(a.cfg.Output.BatchSize),
		)),
	)
}

func newTextCommand(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "text ARCHIVE...",
		Short: "Extract .txt entries",
		Long: `Extract every .txt entry. Without --out the records of a single archive are
printed as JSON lines; with --out each archive is written to a columnar file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" && len(args) == 1 {
				records, err := a.pipeline().ExtractText(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printTextRecords(cmd.OutOrStdout(), records)
			}
			return a.runBatch(cmd, args, models.KindText, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory, file, s3:// or gs:// destination")
	return cmd
}

func newImagesCommand(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "images ARCHIVE...",
		Short: "Extract .jpg/.jpeg entries",
		Long: `Extract every .jpg and .jpeg entry as a key/file_name/payload frame. Without
--out only the row counts are reported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, args, models.KindImage, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory, file, s3:// or gs:// destination")
	return cmd
}

func newInspectCommand(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the schema and row count of a columnar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := columnar.ForPath(args[0])
			if format != "" {
				parsed, err := columnar.ParseFormat(format)
				if err != nil {
					return err
				}
				f = parsed
			}

			tbl, err := columnar.ReadFile(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			defer tbl.Release()

			return writeJSON(cmd.OutOrStdout(), describeTable(args[0], f, tbl))
		},
	}
	cmd.Flags().StringVar(&format, "as", "", "Override the format guessed from the extension")
	return cmd
}

// runBatch processes every archive through the batch runner. A single
// archive with an --out that is not a directory is written to exactly that
// destination.
func (a *app) runBatch(cmd *cobra.Command, archives []string, kind models.Kind, out string) error {
	jobs := make([]pipeline.Job, len(archives))
	for i, path := range archives {
		jobs[i] = pipeline.Job{Archive: path, Kind: kind}
		if out == "" {
			continue
		}
		if len(archives) == 1 && !isDir(out) {
			jobs[i].Dest = out
		} else {
			jobs[i].Dest = pipeline.DefaultDestination(out, path, kind, a.cfg.WriterConfig().Format)
		}
	}

	batch := pipeline.NewBatch(a.pipeline(), pipeline.BatchConfig{
		Workers:  a.cfg.Performance.GetWorkers(),
		FailFast: a.v.GetBool("fail-fast"),
	}, a.log)

	results, err := batch.Run(cmd.Context(), jobs)
	for _, r := range results {
		if r.Job.Archive == "" {
			continue
		}
		if encErr := writeJSON(cmd.OutOrStdout(), summarize(r)); encErr != nil {
			return encErr
		}
	}
	if err != nil {
		a.log.Error("run failed", zap.Error(err))
	}
	return err
}

type resultSummary struct {
	Archive     string `json:"archive"`
	Kind        string `json:"kind"`
	Rows        int64  `json:"rows"`
	Destination string `json:"destination,omitempty"`
	Bytes       int    `json:"bytes,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
	ErrorClass  string `json:"error_class,omitempty"`
}

func summarize(r pipeline.Result) resultSummary {
	s := resultSummary{
		Archive:    r.Job.Archive,
		Kind:       string(r.Job.Kind),
		Rows:       r.Rows,
		DurationMS: r.Duration.Milliseconds(),
	}
	if r.Write != nil {
		s.Destination = r.Write.Destination
		s.Bytes = r.Write.Bytes
	}
	if r.Err != nil {
		s.Error = r.Err.Error()
		if be, ok := r.Err.(*archivepipe.BoundaryError); ok {
			s.ErrorClass = string(be.Class)
		}
	}
	return s
}

type tableSummary struct {
	Path    string          `json:"path"`
	Format  columnar.Format `json:"format"`
	Rows    int64           `json:"rows"`
	Columns []columnSummary `json:"columns"`
}

type columnSummary struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Nulls    int    `json:"nulls"`
}

func describeTable(path string, format columnar.Format, tbl arrow.Table) tableSummary {
	s := tableSummary{Path: path, Format: format, Rows: tbl.NumRows()}
	for i, f := range tbl.Schema().Fields() {
		s.Columns = append(s.Columns, columnSummary{
			Name:     f.Name,
			Type:     f.Type.String(),
			Nullable: f.Nullable,
			Nulls:    tbl.Column(i).NullN(),
		})
	}
	return s
}

func printTextRecords(w io.Writer, records []models.TextRecord) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
