package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blopez6567/Clashsense/internal/cli"
	"github.com/blopez6567/Clashsense/internal/common"
	"github.com/blopez6567/Clashsense/internal/ingest"
	"github.com/blopez6567/Clashsense/internal/xmltree"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Ingest clash reports and summarize them",
		Long: `Ingest one or more clash-detection XML reports, classify every clash and
print a summary of totals, resolution progress and hot spots.

Examples:
  # Summarize a single report
  clashsense ingest ~/Downloads/level3_clashes.xml

  # Summarize every report in a directory
  clashsense ingest ~/Downloads/reports/*.xml

  # Emit normalized records and statistics as JSON
  clashsense ingest --json --sequential-ids report.xml`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().Bool("json", false, "Print records and statistics as JSON")
	cmd.Flags().Bool("sequential-ids", false, "Number clashes without a name clash-1, clash-2, ... instead of random ids")

	return cmd
}

type ingestOptions struct {
	JSON     bool
	Progress bool
}

// fileResult is the JSON form of one ingested file.
type fileResult struct {
	File string `json:"file"`
	*ingest.Result
}

func runIngest(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	sequential, _ := cmd.Flags().GetBool("sequential-ids")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(cfg, sequential)
	if err != nil {
		return err
	}
	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := interrupts.HandleInterrupts(cmd.Context(), len(files))
	defer interrupts.Stop()

	err = ingestReports(ctx, pipeline, files, ingestOptions{
		JSON:     asJSON,
		Progress: len(files) > 1 && !asJSON,
	}, cmd.OutOrStdout(), cmd.ErrOrStderr(), interrupts.Progress)
	return interruptedError(err, interrupts)
}

// interruptedError reports a run stopped by the user as ErrInterrupted
// rather than as a bare context error.
func interruptedError(err error, h interface{ WasInterrupted() bool }) error {
	if err != nil && h.WasInterrupted() {
		return fmt.Errorf("%w: %w", common.ErrInterrupted, err)
	}
	return err
}

// ingestReports ingests files in order. Files that fail are reported and
// skipped; an error is returned only when every file failed. progress
// receives the number of files ingested so far.
func ingestReports(ctx context.Context, pipeline *ingest.Pipeline, files []string, opts ingestOptions,
	out, errOut io.Writer, progress func(done int),
) error {
	slog.Info("💥 Ingesting clash reports", "file_count", len(files))

	var bar interface{ Add(int) error }
	if opts.Progress {
		bar = cli.NewFileProgress(errOut, len(files))
	}

	var results []fileResult
	var failures []string
	for _, path := range files {
		res, err := ingestFile(ctx, pipeline, path)
		if bar != nil {
			if barErr := bar.Add(1); barErr != nil {
				slog.Debug("Failed to update progress bar", "error", barErr)
			}
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			failures = append(failures, path)
			common.LogError(err, "Failed to ingest clash report", common.Fields{"file": path})
			fmt.Fprintln(errOut, cli.FormatError(filepath.Base(path)+": "+failureMessage(err)))
			continue
		}
		results = append(results, fileResult{File: path, Result: res})
		if progress != nil {
			progress(len(results))
		}
	}

	if len(results) == 0 {
		return fmt.Errorf("%w: none of %d files could be ingested", common.ErrNoReports, len(files))
	}

	if opts.JSON {
		return writeJSONResults(out, results)
	}

	for _, r := range results {
		fmt.Fprintln(out, cli.RenderSummary(r.File, r.Result))
	}
	if len(failures) > 0 {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d of %d files skipped", len(failures), len(files))))
	} else {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Ingested %d files", len(results))))
	}
	return nil
}

// failureMessage prefers the decoder's raw message for malformed XML.
func failureMessage(err error) string {
	var parseErr *xmltree.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Error()
	}
	return err.Error()
}

func writeJSONResults(out io.Writer, results []fileResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0].Result)
	}
	return enc.Encode(results)
}
