package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/blopez6567/Clashsense/internal/classification"
	"github.com/blopez6567/Clashsense/internal/config"
	"github.com/blopez6567/Clashsense/internal/ingest"
	"github.com/blopez6567/Clashsense/internal/normalize"
)

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// newPipeline builds an ingest pipeline from the configured classifier policy.
func newPipeline(cfg *config.Config, sequentialIDs bool) (*ingest.Pipeline, error) {
	policy, err := cfg.ClassifierPolicy()
	if err != nil {
		return nil, err
	}
	classifier, err := classification.New(policy)
	if err != nil {
		return nil, err
	}

	var opts []normalize.Option
	if sequentialIDs {
		opts = append(opts, normalize.WithIDGenerator(normalize.SequenceIDs{}))
	}
	return ingest.NewPipeline(normalize.New(classifier, opts...)), nil
}

// expandFiles resolves glob patterns to report paths, keeping literal paths
// that exist even when they contain no glob characters.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		pattern = config.ExpandPath(pattern)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to ingest")
	}
	return files, nil
}

// ingestFile reads and ingests a single report.
func ingestFile(ctx context.Context, pipeline *ingest.Pipeline, path string) (*ingest.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return pipeline.IngestReader(ctx, f)
}
