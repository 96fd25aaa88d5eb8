package media

import (
	"github.com/nguyentantai21042004/caption-extract/internal/logger"
	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

type implProber struct {
	executor executor.Executor
	logger   logger.Logger
	ffmpeg   string
	ffprobe  string
	timeouts Timeouts
}

// New creates a Prober that shells out to the given ffmpeg and ffprobe binaries.
func New(exec executor.Executor, log logger.Logger, ffmpeg, ffprobe string, timeouts Timeouts) Prober {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &implProber{
		executor: exec,
		logger:   log,
		ffmpeg:   ffmpeg,
		ffprobe:  ffprobe,
		timeouts: timeouts,
	}
}
