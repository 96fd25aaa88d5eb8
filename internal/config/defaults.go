package config

import "time"

const (
	BackendTesseract = "tesseract"
	BackendCommand   = "command"
)

// Extraction tunables and their defaults.
const (
	DefaultProbeAt       = 5 * time.Second
	DefaultInterval      = 2 * time.Second
	DefaultMinConfidence = 0.7
	DefaultMinLines      = 2
	DefaultParagraphSize = 8
)

// DefaultFillers are caption texts dropped when paragraphs are merged.
var DefaultFillers = []string{"嗯", "啊", "哎", "哇", "OK", "ok", "hello", "yeah", "no", "okay", "Oh", "oh"}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}
