package processor

import (
	"github.com/nguyentantai21042004/caption-extract/internal/config"
	"github.com/nguyentantai21042004/caption-extract/internal/corrector"
	"github.com/nguyentantai21042004/caption-extract/internal/extractor"
	"github.com/nguyentantai21042004/caption-extract/internal/logger"
)

type implProcessor struct {
	cfg       *config.Config
	extractor extractor.Extractor
	corrector corrector.Corrector
	recorder  Recorder
	logger    logger.Logger
}

// New creates a new Processor instance. recorder may be nil.
func New(cfg *config.Config, ext extractor.Extractor, corr corrector.Corrector, recorder Recorder, log logger.Logger) Processor {
	return &implProcessor{
		cfg:       cfg,
		extractor: ext,
		corrector: corr,
		recorder:  recorder,
		logger:    log,
	}
}
