package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/tutorpipe/internal/editor"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the workspace and capture filesystem telemetry",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipe, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	watcher, err := editor.NewWatcher(cfg.Workspace, pipe.bus, slog.Default())
	if err != nil {
		return fmt.Errorf("watch workspace: %w", err)
	}
	defer watcher.Close()

	slog.Info("watching workspace", "root", cfg.Workspace)
	if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watcher: %w", err)
	}

	slog.Info("shutting down")
	pipe.drain()
	return nil
}
