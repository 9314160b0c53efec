package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blopez6567/Clashsense/internal/bcf"
	"github.com/blopez6567/Clashsense/internal/cli"
	"github.com/blopez6567/Clashsense/internal/config"
)

func exportBCFCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-bcf <file>",
		Short: "Export clashes as a BCF archive",
		Long: `Ingest a clash report and write every clash as a BCF topic so it can be
opened in other BIM coordination tools.`,
		Args: cobra.ExactArgs(1),
		RunE: runExportBCF,
	}

	cmd.Flags().StringP("output", "o", "", "Output file (default: <project>_bcf_export.bcf)")

	return cmd
}

func runExportBCF(cmd *cobra.Command, args []string) (err error) {
	output, _ := cmd.Flags().GetString("output")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(cfg, false)
	if err != nil {
		return err
	}

	res, err := ingestFile(cmd.Context(), pipeline, args[0])
	if err != nil {
		return fmt.Errorf("%s: %s", args[0], failureMessage(err))
	}

	if output == "" {
		output = bcf.FileName(res.ProjectName)
	}
	output = config.ExpandPath(output)

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", output, cerr)
		}
	}()

	if err := bcf.Write(f, res.ProjectName, res.Records); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d clashes to %s", len(res.Records), output)))
	return nil
}
