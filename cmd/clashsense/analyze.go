package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blopez6567/Clashsense/internal/analysis"
	"github.com/blopez6567/Clashsense/internal/cli"
	"github.com/blopez6567/Clashsense/internal/common"
	"github.com/blopez6567/Clashsense/internal/config"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Ask an AI model for clash resolution suggestions",
		Long: `Ingest a clash report and send the first few clashes to the configured
language model for resolution suggestions.

The API key is read from analysis.api_key, CLASHSENSE_ANALYSIS_API_KEY or
ANTHROPIC_API_KEY.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().String("html", "", "Write the analysis as an HTML page to this file")
	cmd.Flags().Int("max-clashes", 0, "Number of clashes to analyze (default from analysis.max_clashes)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	htmlPath, _ := cmd.Flags().GetString("html")
	maxClashes, _ := cmd.Flags().GetInt("max-clashes")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if maxClashes <= 0 {
		maxClashes = cfg.Analysis.MaxClashes
	}

	client, err := cfg.AnalysisClient()
	if err != nil {
		return common.NewUserError("set analysis.api_key or ANTHROPIC_API_KEY to enable analysis", err)
	}
	pipeline, err := newPipeline(cfg, false)
	if err != nil {
		return err
	}

	res, err := ingestFile(cmd.Context(), pipeline, args[0])
	if err != nil {
		return fmt.Errorf("%s: %s", args[0], failureMessage(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%s Analyzing %d of %d clashes with %s...",
		cli.RobotIcon, min(maxClashes, len(res.Records)), len(res.Records), client.Model())))

	result, err := client.Analyze(cmd.Context(), analysis.BuildRequest(res.ProjectName, res.Records, maxClashes))
	if err != nil {
		return err
	}

	if htmlPath == "" {
		fmt.Fprintln(out, cli.RenderBox(res.ProjectName, result.Analysis))
		return nil
	}

	page, err := analysis.RenderPage(res.ProjectName, result)
	if err != nil {
		return err
	}
	htmlPath = config.ExpandPath(htmlPath)
	if err := os.WriteFile(htmlPath, []byte(page), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", htmlPath, err)
	}
	fmt.Fprintln(out, cli.FormatSuccess("Analysis written to "+htmlPath))
	return nil
}
