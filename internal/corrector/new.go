package corrector

import (
	"time"

	"github.com/nguyentantai21042004/caption-extract/internal/logger"
)

// Options configures a Corrector.
type Options struct {
	Table         *Table
	ParagraphSize int
	Fillers       []string
	// Reviser is optional; the local paragraph draft is used without one.
	Reviser       Reviser
	ReviseTimeout time.Duration
}

type implCorrector struct {
	table         *Table
	paragraphSize int
	fillers       map[string]bool
	reviser       Reviser
	reviseTimeout time.Duration
	logger        logger.Logger
	now           func() time.Time
}

// New creates a Corrector.
func New(opts Options, log logger.Logger) Corrector {
	if opts.ParagraphSize <= 0 {
		opts.ParagraphSize = 8
	}
	fillers := make(map[string]bool, len(opts.Fillers))
	for _, f := range opts.Fillers {
		fillers[f] = true
	}
	return &implCorrector{
		table:         opts.Table,
		paragraphSize: opts.ParagraphSize,
		fillers:       fillers,
		reviser:       opts.Reviser,
		reviseTimeout: opts.ReviseTimeout,
		logger:        log,
		now:           time.Now,
	}
}
