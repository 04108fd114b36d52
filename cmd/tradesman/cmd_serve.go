package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dnaweav/tradesman-ai-assist/internal/httpapi"
	"github.com/dnaweav/tradesman-ai-assist/internal/layout"
	"github.com/dnaweav/tradesman-ai-assist/internal/transcript"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assistant API daemon",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	api := httpapi.NewServer(a.pipeline, a.settings, a.store, a.files.Root(), httpapi.LayoutSettings{
		Footer: layout.FooterConfig{
			InputMinHeight: cfg.Layout.InputMinHeight,
			InputMaxHeight: cfg.Layout.InputMaxHeight,
			FABOverlap:     cfg.Layout.FABOverlap,
			NavHeight:      cfg.Layout.NavHeight,
		},
		KeyboardThreshold: cfg.Layout.KeyboardThreshold,
	})
	defer api.Close()

	// Open transcript views show "Today"/"Yesterday" dividers; poke them
	// when the date rolls over.
	refresher := transcript.NewMidnightRefresher(api.NotifyAll)
	if err := refresher.Start(); err != nil {
		return err
	}
	defer refresher.Stop()

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("assistant daemon started",
			"addr", cfg.HTTPAddr,
			"data_dir", cfg.DataDir,
			"responder", cfg.Responder.Provider,
			"max_concurrent", cfg.MaxConcurrent,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigChan:
	}

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
