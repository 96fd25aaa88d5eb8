package corrector

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
)

// ErrNoTrack is returned when asked to correct the track of a failed run.
var ErrNoTrack = errors.New("no caption track to correct")

// Transcript is a corrected, paragraph-merged document derived from a track.
// Original is kept untouched for traceability.
type Transcript struct {
	Title       string
	Source      string
	CorrectedAt time.Time
	Provenance  caption.Provenance
	Paragraphs  []string
	Reviser     string
	// Corrected holds the original timings with substituted, punctuated text.
	Corrected     caption.Track
	Original      caption.Track
	Substitutions int
	Quality       caption.Quality
}

// Body returns the paragraphs separated by blank lines.
func (t Transcript) Body() string {
	return strings.Join(t.Paragraphs, "\n\n")
}

// Reviser rewrites a draft transcript: punctuation, homophones, paragraph
// breaks. Paragraphs are separated by blank lines in and out.
type Reviser interface {
	Name() string
	Revise(ctx context.Context, draft string) (string, error)
}

// Corrector post-processes caption tracks.
type Corrector interface {
	Correct(ctx context.Context, track caption.Track) (Transcript, error)
	// CorrectSRT applies per-entry correction to an SRT file and writes the
	// result to out. It returns the number of entries changed.
	CorrectSRT(ctx context.Context, in, out string) (int, error)
}
