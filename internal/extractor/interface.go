package extractor

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
	"github.com/nguyentantai21042004/caption-extract/internal/tier"
)

// Tier names one extraction strategy.
type Tier string

const (
	TierEmbedded Tier = "embedded"
	TierOCR      Tier = "ocr"
	TierSpeech   Tier = "speech"
)

// Attempt records how one tier went.
type Attempt struct {
	Tier    Tier
	Outcome tier.Outcome
	Elapsed time.Duration
}

// Result is the outcome of one Extract call.
type Result struct {
	RunID      string
	Video      string
	Output     string
	Provenance caption.Provenance
	Track      caption.Track
	Attempts   []Attempt
	Quality    caption.Quality
}

// OK reports whether a tier produced the output file.
func (r Result) OK() bool {
	return r.Provenance != "" && r.Provenance != caption.ProvenanceFailed
}

// Extractor produces a caption file for a video.
type Extractor interface {
	// Extract writes the first successful tier's track to output. An empty
	// output derives "<title>.srt" next to the video; an existing directory
	// receives "<title>.srt". All tiers failing is reported through Result,
	// not as an error.
	Extract(ctx context.Context, video, output string) (Result, error)
}
