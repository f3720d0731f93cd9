package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/Togather-Foundation/dashlog/internal/config"
	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
	"github.com/Togather-Foundation/dashlog/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportOut   string
	exportS3    string
	exportS3Key string
	listLimit   int
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Inspect, export or clear stored usage entries",
	Long: `Operate on the entries table directly, without a running receiver.

Examples:
  # Show the 20 newest entries
  receiver entries list --limit 20

  # Write user_entries.csv to the current directory
  receiver entries export

  # Upload the export to S3
  receiver entries export --s3-bucket usage-exports --s3-key daily/user_entries.csv

  # Delete everything
  receiver entries clear`,
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *entries.Store) error {
			return listEntries(ctx, cmd.OutOrStdout(), store, listLimit)
		})
	},
}

var entriesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export entries as CSV to a file, stdout (--out -) or S3",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		sink, err := exportSink(cmd.Context(), cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return withStore(cmd.Context(), func(ctx context.Context, store *entries.Store) error {
			location, err := exportEntries(ctx, store, sink)
			if err != nil {
				return err
			}
			if location != "stdout" {
				fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", location)
			}
			return nil
		})
	},
}

var entriesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *entries.Store) error {
			if !store.ClearAll(ctx) {
				return fmt.Errorf("failed to clear entries")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All entries cleared")
			return nil
		})
	},
}

func init() {
	entriesListCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum rows to print (0 = all)")
	entriesExportCmd.Flags().StringVar(&exportOut, "out", export.Filename, `output file, or "-" for stdout`)
	entriesExportCmd.Flags().StringVar(&exportS3, "s3-bucket", "", "upload to this S3 bucket instead of a file")
	entriesExportCmd.Flags().StringVar(&exportS3Key, "s3-key", export.Filename, "object key for --s3-bucket")

	entriesCmd.AddCommand(entriesListCmd, entriesExportCmd, entriesClearCmd)
}

func withStore(ctx context.Context, fn func(context.Context, *entries.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := config.NewLoggerTo(cfg.Logging, os.Stderr)

	store, backend, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()
	return fn(ctx, store)
}

func exportSink(ctx context.Context, cfg config.Config, stdout io.Writer) (export.Sink, error) {
	if exportS3 != "" {
		return export.NewS3Sink(ctx, exportS3, exportS3Key, export.S3Config{
			Region:       cfg.Export.S3Region,
			Endpoint:     cfg.Export.S3Endpoint,
			UsePathStyle: cfg.Export.S3UsePathStyle,
		})
	}
	if exportOut == "" {
		return nil, export.ErrNoSink
	}
	return export.FileSink{Path: exportOut, Stdout: stdout}, nil
}

func exportEntries(ctx context.Context, store *entries.Store, sink export.Sink) (string, error) {
	data, err := export.Render(store.Rows(ctx))
	if err != nil {
		return "", err
	}
	return sink.Put(ctx, data)
}

func listEntries(ctx context.Context, w io.Writer, store *entries.Store, limit int) error {
	rows := store.Rows(ctx)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "APP NAME\tUSERNAME\tTIMESTAMP\tREADABLE TIME")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.AppName, r.Username, r.Timestamp, r.ReadableTime)
	}
	return tw.Flush()
}
