package main

import (
	"context"
	"errors"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/caption-extract/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var settle time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process every video dropped into the input directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), ctx, settle)
		},
	}
	cmd.Flags().DurationVar(&settle, "settle", 2*time.Second, "Wait after a new file appears before processing it")
	return cmd
}

func runWatch(cmdCtx context.Context, ctx *commandContext, settle time.Duration) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, err := ctx.newPipeline(signalCtx)
	if err != nil {
		return err
	}
	defer p.Close()

	cfg, log := p.cfg, p.log
	log.Info(signalCtx, "========================================")
	log.Info(signalCtx, "Caption Extraction Pipeline")
	log.Info(signalCtx, "========================================")
	log.Info(signalCtx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(signalCtx, "Max Concurrent Processing: %d", cfg.Performance.MaxConcurrent)

	// Verify required directories exist
	if err := ensureDirectories(cfg.Paths.Input, cfg.Paths.Output, cfg.Paths.Archived, cfg.Paths.Temp); err != nil {
		return err
	}

	w, err := watcher.New(cfg.Paths.Input, p.processor().Process, log, watcher.Options{
		LockPath:      filepath.Join(cfg.Paths.Temp, "watch.lock"),
		MaxConcurrent: cfg.Performance.MaxConcurrent,
		Settle:        settle,
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	// Start watcher in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Start(signalCtx)
	}()

	log.Info(signalCtx, "========================================")
	log.Info(signalCtx, "Pipeline is ready!")
	log.Info(signalCtx, "Monitoring: %s", cfg.Paths.Input)
	log.Info(signalCtx, "Output: %s", cfg.Paths.Output)
	log.Info(signalCtx, "OCR: %s (%s), interval %s, %d workers", cfg.OCR.Backend, cfg.OCR.Languages, cfg.OCR.Interval, cfg.OCR.Workers)
	log.Info(signalCtx, "Whisper: %s, %d threads, GPU %t", cfg.Whisper.Language, cfg.Whisper.Threads, cfg.Whisper.UseGPU)
	log.Info(signalCtx, "Press Ctrl+C to stop")
	log.Info(signalCtx, "========================================")

	// Wait for shutdown signal or error
	select {
	case <-signalCtx.Done():
		log.Info(cmdCtx, "Shutdown signal received")
	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error(cmdCtx, "Watcher error: %v", err)
			return err
		}
		return nil
	}

	log.Info(cmdCtx, "Shutting down gracefully...")
	cancel()
	<-errChan
	log.Info(cmdCtx, "Pipeline stopped")
	return nil
}
