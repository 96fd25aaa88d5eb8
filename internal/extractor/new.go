package extractor

import (
	"errors"
	"time"

	"github.com/nguyentantai21042004/caption-extract/internal/config"
	"github.com/nguyentantai21042004/caption-extract/internal/logger"
	"github.com/nguyentantai21042004/caption-extract/internal/media"
	"github.com/nguyentantai21042004/caption-extract/internal/ocr"
	"github.com/nguyentantai21042004/caption-extract/internal/speech"
	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

// Options configures the tiers.
type Options struct {
	// TempDir holds one scratch directory per run. Empty uses os.TempDir.
	TempDir    string
	ProbeAt    time.Duration
	MinLines   int
	OCR        ocr.Settings
	Recognizer ocr.Factory
	Speech     speech.Settings
}

type implExtractor struct {
	executor executor.Executor
	prober   media.Prober
	opts     Options
	logger   logger.Logger
}

// New creates an Extractor. Recognizers are loaded lazily inside each run
// and released when the run ends.
func New(exec executor.Executor, prober media.Prober, opts Options, log logger.Logger) Extractor {
	if opts.ProbeAt <= 0 {
		opts.ProbeAt = config.DefaultProbeAt
	}
	if opts.MinLines <= 0 {
		opts.MinLines = config.DefaultMinLines
	}
	if opts.Recognizer == nil {
		opts.Recognizer = func() (ocr.Recognizer, error) {
			return nil, errors.New("no OCR backend configured")
		}
	}
	return &implExtractor{
		executor: exec,
		prober:   prober,
		opts:     opts,
		logger:   log,
	}
}

// OptionsFromConfig maps the configuration onto tier options.
func OptionsFromConfig(cfg *config.Config, exec executor.Executor) Options {
	var factory ocr.Factory
	switch cfg.OCR.Backend {
	case config.BackendCommand:
		factory = ocr.NewCommand(exec, cfg.OCR.Binary, cfg.OCR.Args, cfg.Timeouts.OCR)
	default:
		factory = ocr.NewTesseract(exec, cfg.OCR.Binary, cfg.OCR.Languages, cfg.Timeouts.OCR)
	}

	return Options{
		TempDir:  cfg.Paths.Temp,
		ProbeAt:  cfg.OCR.ProbeAt,
		MinLines: cfg.OCR.MinLines,
		OCR: ocr.Settings{
			Interval:      cfg.OCR.Interval,
			MinConfidence: cfg.OCR.Confidence(),
			Workers:       cfg.OCR.Workers,
		},
		Recognizer: factory,
		Speech: speech.Settings{
			Binary:    cfg.Whisper.BinaryPath,
			ModelPath: cfg.Whisper.ModelPath,
			Language:  cfg.Whisper.Language,
			Prompt:    cfg.Whisper.Prompt,
			Threads:   cfg.Whisper.Threads,
			UseGPU:    cfg.Whisper.UseGPU,
			Timeout:   cfg.Timeouts.Speech,
		},
	}
}

// MediaTimeouts maps the configuration onto prober timeouts.
func MediaTimeouts(cfg *config.Config) media.Timeouts {
	return media.Timeouts{
		Probe:    cfg.Timeouts.Probe,
		Subtitle: cfg.Timeouts.Subtitle,
		Frame:    cfg.Timeouts.Frame,
		Audio:    cfg.Timeouts.Audio,
	}
}
