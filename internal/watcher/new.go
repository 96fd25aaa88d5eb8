package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"golang.org/x/sync/semaphore"

	"github.com/nguyentantai21042004/caption-extract/internal/logger"
)

// Options tunes a Watcher.
type Options struct {
	// LockPath guards against two watchers on one input directory. Empty
	// disables locking.
	LockPath      string
	MaxConcurrent int
	// Settle is how long to wait after a create event before handling the
	// file, so copies can finish.
	Settle time.Duration
}

// New creates a new Watcher instance with concurrency control
func New(inputDir string, handler EventHandler, log logger.Logger, opts Options) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.Settle < 0 {
		opts.Settle = 0
	}

	w := &implWatcher{
		inputDir:      inputDir,
		handler:       handler,
		logger:        log,
		watcher:       watcher,
		maxConcurrent: opts.MaxConcurrent,
		settle:        opts.Settle,
		sem:           semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		inFlight:      make(map[string]bool),
	}
	if opts.LockPath != "" {
		w.lock = flock.New(opts.LockPath)
	}
	return w, nil
}
