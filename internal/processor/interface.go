package processor

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/caption-extract/internal/extractor"
	"github.com/nguyentantai21042004/caption-extract/internal/ledger"
)

// ErrAllTiersFailed is returned when no tier produced captions for a video.
var ErrAllTiersFailed = errors.New("all extraction tiers failed")

// Job describes one video to process.
type Job struct {
	Video string
	// Output is the SRT path or a directory to hold "<title>.srt". Empty
	// places it beside the video.
	Output  string
	Correct bool
	Docx    bool
	Archive bool
}

// Report lists what a job produced.
type Report struct {
	Extraction extractor.Result
	Transcript string
	Docx       string
	Archived   string
}

// Processor defines the interface for video processing operations
type Processor interface {
	// Process handles a video dropped into the input directory: captions,
	// transcript and archiving.
	Process(ctx context.Context, videoPath string) error
	Run(ctx context.Context, job Job) (Report, error)
}

// Recorder stores run history.
type Recorder interface {
	Record(ctx context.Context, run ledger.Run) error
	LastSuccess(ctx context.Context, video string) (ledger.Run, bool, error)
}
