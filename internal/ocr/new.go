package ocr

import (
	"time"

	"github.com/nguyentantai21042004/caption-extract/internal/logger"
	"github.com/nguyentantai21042004/caption-extract/internal/media"
)

// Settings tunes frame sampling.
type Settings struct {
	Interval      time.Duration
	MinConfidence float64
	Workers       int
}

type implClassifier struct {
	handle   *Handle
	minLines int
	logger   logger.Logger
}

type implEngine struct {
	prober   media.Prober
	handle   *Handle
	settings Settings
	logger   logger.Logger
}

// NewClassifier creates a Classifier that reports a burned-in subtitle when
// at least minLines non-empty lines are recognized on a frame.
func NewClassifier(handle *Handle, minLines int, log logger.Logger) Classifier {
	if minLines <= 0 {
		minLines = 1
	}
	return &implClassifier{handle: handle, minLines: minLines, logger: log}
}

// NewEngine creates an Engine sampling frames through prober and recognizing
// them through handle.
func NewEngine(prober media.Prober, handle *Handle, settings Settings, log logger.Logger) Engine {
	if settings.Interval <= 0 {
		settings.Interval = 2 * time.Second
	}
	if settings.Workers <= 0 {
		settings.Workers = 1
	}
	return &implEngine{prober: prober, handle: handle, settings: settings, logger: log}
}
