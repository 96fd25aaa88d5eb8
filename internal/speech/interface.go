package speech

import (
	"context"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
	"github.com/nguyentantai21042004/caption-extract/internal/media"
	"github.com/nguyentantai21042004/caption-extract/internal/tier"
)

// Engine turns a video's speech into a timed track.
type Engine interface {
	Transcribe(ctx context.Context, asset media.Asset, workDir string) (caption.Track, tier.Outcome)
}
