package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blopez6567/Clashsense/internal/api"
	"github.com/blopez6567/Clashsense/internal/common"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the clash ingest API over HTTP",
		RunE:  runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default from server.addr)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(cfg, false)
	if err != nil {
		return err
	}

	var analyzer api.Analyzer
	client, err := cfg.AnalysisClient()
	switch {
	case err == nil:
		analyzer = client
	case errors.Is(err, common.ErrNoAnalyzer):
		slog.Warn("No analysis API key configured; /api/analyze is disabled")
	default:
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(api.NewServer(pipeline, analyzer, cfg.Analysis.MaxClashes), cfg.Server.AllowedOrigins, os.Stdout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		common.LogInfo("Clash API listening", common.Fields{
			"addr":     cfg.Server.Addr,
			"analysis": analyzer != nil,
			"origins":  cfg.Server.AllowedOrigins,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-cmd.Context().Done():
		slog.Info("Shutting down clash API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
