package watcher

import (
	"context"
	"errors"
)

// ErrAlreadyRunning is returned by Start when another watcher holds the lock.
var ErrAlreadyRunning = errors.New("another watcher is already running")

// Watcher defines the interface for file system monitoring
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is a function that handles file events
type EventHandler func(ctx context.Context, filePath string) error
