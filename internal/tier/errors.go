package tier

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/caption-extract/internal/media"
	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

var (
	// ErrRecognitionUnavailable marks an OCR or speech capability that is not installed or cannot load.
	ErrRecognitionUnavailable = errors.New("recognition unavailable")
	// ErrRecognitionFailure marks a capability that loaded but failed while processing.
	ErrRecognitionFailure = errors.New("recognition failed")
)

// ReasonFor maps an error to the reason code a tier reports for it. fallback
// is used when nothing more specific applies.
func ReasonFor(err error, fallback Reason) Reason {
	switch {
	case err == nil:
		return fallback
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, executor.ErrTimeout):
		return ReasonTimeout
	case errors.Is(err, ErrRecognitionUnavailable), errors.Is(err, executor.ErrNotInstalled):
		return ReasonRecognizerUnavailable
	case errors.Is(err, media.ErrNoAudio):
		return ReasonAudioUnavailable
	case errors.Is(err, ErrRecognitionFailure):
		return ReasonRecognitionFailed
	case errors.Is(err, media.ErrProbe):
		return ReasonProbeFailed
	default:
		return fallback
	}
}
