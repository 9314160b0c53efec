package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blopez6567/Clashsense/internal/analysis"
	"github.com/blopez6567/Clashsense/internal/cli"
	"github.com/blopez6567/Clashsense/internal/common"
	"github.com/blopez6567/Clashsense/internal/config"
)

func analyzeImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze-image <image>",
		Short: "Ask an AI model to review a clash screenshot",
		Long: `Send a clash screenshot (JPEG, PNG, GIF or WebP) to the configured
language model and print its resolution suggestions.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeImage,
	}
}

func runAnalyzeImage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := cfg.AnalysisClient()
	if err != nil {
		return common.NewUserError("set analysis.api_key or ANTHROPIC_API_KEY to enable analysis", err)
	}

	path := config.ExpandPath(args[0])
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	mediaType, err := analysis.ImageMediaType("", data)
	if err != nil {
		return common.NewUserError(filepath.Base(path)+" is not a JPEG, PNG, GIF or WebP image", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%s Analyzing %s with %s...",
		cli.RobotIcon, filepath.Base(path), client.Model())))

	result, err := client.AnalyzeImage(cmd.Context(), mediaType, data)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.RenderBox(filepath.Base(path), result.Analysis))
	return nil
}
