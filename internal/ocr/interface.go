package ocr

import (
	"context"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
	"github.com/nguyentantai21042004/caption-extract/internal/media"
	"github.com/nguyentantai21042004/caption-extract/internal/tier"
)

// Line is one recognized text line with a confidence in [0, 1].
type Line struct {
	Text       string
	Confidence float64
}

// Recognizer runs text detection and recognition on an image file.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) ([]Line, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, imagePath string) ([]Line, error)

func (f RecognizerFunc) Recognize(ctx context.Context, imagePath string) ([]Line, error) {
	return f(ctx, imagePath)
}

// Classifier decides whether a frame shows burned-in subtitles.
type Classifier interface {
	HasBurnedSubtitle(ctx context.Context, framePath string) bool
}

// Engine extracts burned-in subtitles from a whole video.
type Engine interface {
	ExtractBurnedSubtitles(ctx context.Context, asset media.Asset, workDir string) (caption.Track, tier.Outcome)
}
