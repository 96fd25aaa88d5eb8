package speech

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/caption-extract/internal/logger"
	"github.com/nguyentantai21042004/caption-extract/internal/media"
	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

// Settings selects the whisper.cpp binary, model and decoding options.
type Settings struct {
	Binary    string
	ModelPath string
	Language  string
	Prompt    string
	Threads   int
	UseGPU    bool
	Timeout   time.Duration
}

type implEngine struct {
	executor executor.Executor
	prober   media.Prober
	settings Settings
	logger   logger.Logger

	once    sync.Once
	binary  string
	loadErr error
}

// New creates an Engine. The binary and model are resolved on the first
// Transcribe call, so an engine that is never needed costs nothing.
func New(exec executor.Executor, prober media.Prober, settings Settings, log logger.Logger) Engine {
	if settings.Binary == "" {
		settings.Binary = "whisper-cli"
	}
	if settings.Language == "" {
		settings.Language = "auto"
	}
	if settings.Threads <= 0 {
		settings.Threads = 4
	}
	return &implEngine{
		executor: exec,
		prober:   prober,
		settings: settings,
		logger:   log,
	}
}
