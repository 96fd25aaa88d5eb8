package ocr

import (
	"fmt"
	"io"
	"sync"

	"github.com/nguyentantai21042004/caption-extract/internal/tier"
)

// Factory loads a recognizer.
type Factory func() (Recognizer, error)

// Handle owns one lazily loaded recognizer for the lifetime of a run.
type Handle struct {
	factory Factory

	once    sync.Once
	loadErr error

	mu     sync.Mutex
	rec    Recognizer
	closed bool
}

// NewHandle returns a handle that calls factory on first use.
func NewHandle(factory Factory) *Handle {
	return &Handle{factory: factory}
}

// Get loads the recognizer once and returns it. Load failures are sticky and
// wrapped with tier.ErrRecognitionUnavailable.
func (h *Handle) Get() (Recognizer, error) {
	h.once.Do(func() {
		rec, err := h.factory()
		if err != nil {
			h.loadErr = fmt.Errorf("%w: %w", tier.ErrRecognitionUnavailable, err)
			return
		}
		h.mu.Lock()
		h.rec = rec
		h.mu.Unlock()
	})
	if h.loadErr != nil {
		return nil, h.loadErr
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, fmt.Errorf("%w: handle closed", tier.ErrRecognitionUnavailable)
	}
	return h.rec, nil
}

// Close releases the recognizer when it was loaded and holds resources.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	rec := h.rec
	h.rec = nil
	if c, ok := rec.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
