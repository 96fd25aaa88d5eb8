package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Tools       ToolsConfig       `yaml:"tools"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	OCR         OCRConfig         `yaml:"ocr"`
	Corrector   CorrectorConfig   `yaml:"corrector"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Timeouts    TimeoutsConfig    `yaml:"timeouts"`
	Performance PerformanceConfig `yaml:"performance"`
}

type ToolsConfig struct {
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
	UseGPU     bool   `yaml:"use_gpu"`
}

// OCRConfig holds the burned-in subtitle detection and extraction tunables.
type OCRConfig struct {
	// Backend is "tesseract" or "command".
	Backend   string   `yaml:"backend"`
	Binary    string   `yaml:"binary"`
	Languages string   `yaml:"languages"`
	Args      []string `yaml:"args"`
	// ProbeAt is where the single classification frame is taken. Subtitles
	// are assumed to be on screen by then.
	ProbeAt  time.Duration `yaml:"probe_at"`
	Interval time.Duration `yaml:"interval"`
	// MinConfidence is exclusive. Nil means unset, so an explicit 0 survives
	// defaulting.
	MinConfidence *float64 `yaml:"min_confidence"`
	MinLines      int      `yaml:"min_lines"`
	Workers       int      `yaml:"workers"`
}

// Confidence returns the configured threshold, or the default when unset.
func (o OCRConfig) Confidence() float64 {
	if o.MinConfidence == nil {
		return DefaultMinConfidence
	}
	return *o.MinConfidence
}

type CorrectorConfig struct {
	TablePath     string   `yaml:"table_path"`
	ParagraphSize int      `yaml:"paragraph_size"`
	Fillers       []string `yaml:"fillers"`
}

type GeminiConfig struct {
	Model      string   `yaml:"model"`
	APIKeys    []string `yaml:"api_keys"`
	APIKeysEnv string   `yaml:"api_keys_env"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
	Temp     string `yaml:"temp"`
	Ledger   string `yaml:"ledger"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TimeoutsConfig bounds each kind of external call. Zero disables the bound.
type TimeoutsConfig struct {
	Probe time.Duration `yaml:"probe"`
	// Subtitle bounds extraction of an embedded subtitle stream, which
	// demuxes the whole container.
	Subtitle time.Duration `yaml:"subtitle"`
	Frame    time.Duration `yaml:"frame"`
	Audio    time.Duration `yaml:"audio"`
	OCR      time.Duration `yaml:"ocr"`
	Speech   time.Duration `yaml:"speech"`
	Revise   time.Duration `yaml:"revise"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Validate rejects unusable values and fills defaults for everything left empty.
func (c *Config) Validate() error {
	if v := c.OCR.MinConfidence; v != nil && (*v < 0 || *v >= 1) {
		return fmt.Errorf("ocr.min_confidence must be in [0, 1), got %v", *v)
	}
	if c.OCR.MinLines < 0 {
		return fmt.Errorf("ocr.min_lines must not be negative, got %d", c.OCR.MinLines)
	}
	if c.OCR.Interval < 0 || c.OCR.ProbeAt < 0 {
		return fmt.Errorf("ocr.interval and ocr.probe_at must not be negative")
	}
	if c.OCR.Interval > 0 && c.OCR.Interval%time.Second != 0 {
		return fmt.Errorf("ocr.interval must be a whole number of seconds, got %s", c.OCR.Interval)
	}
	switch c.OCR.Backend {
	case "", BackendTesseract:
	case BackendCommand:
		if c.OCR.Binary == "" {
			return fmt.Errorf("ocr.binary is required for the command backend")
		}
	default:
		return fmt.Errorf("ocr.backend %q is not supported (tesseract, command)", c.OCR.Backend)
	}
	if c.Corrector.ParagraphSize < 0 {
		return fmt.Errorf("corrector.paragraph_size must not be negative")
	}

	c.applyDefaults()

	if c.Gemini.APIKeysEnv != "" {
		for _, key := range strings.Split(os.Getenv(c.Gemini.APIKeysEnv), ",") {
			if key = strings.TrimSpace(key); key != "" {
				c.Gemini.APIKeys = append(c.Gemini.APIKeys, key)
			}
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = "ffprobe"
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.ModelPath == "" {
		c.Whisper.ModelPath = "models/ggml-large-v3.bin"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.OCR.Backend == "" {
		c.OCR.Backend = BackendTesseract
	}
	if c.OCR.Binary == "" {
		c.OCR.Binary = "tesseract"
	}
	if c.OCR.Languages == "" {
		c.OCR.Languages = "chi_sim+eng"
	}
	if c.OCR.ProbeAt == 0 {
		c.OCR.ProbeAt = DefaultProbeAt
	}
	if c.OCR.Interval == 0 {
		c.OCR.Interval = DefaultInterval
	}
	if c.OCR.MinConfidence == nil {
		v := DefaultMinConfidence
		c.OCR.MinConfidence = &v
	}
	if c.OCR.MinLines == 0 {
		c.OCR.MinLines = DefaultMinLines
	}
	if c.OCR.Workers <= 0 {
		c.OCR.Workers = 1
	}
	if c.Corrector.ParagraphSize == 0 {
		c.Corrector.ParagraphSize = DefaultParagraphSize
	}
	if c.Corrector.Fillers == nil {
		c.Corrector.Fillers = append([]string(nil), DefaultFillers...)
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Paths.Ledger == "" {
		c.Paths.Ledger = "data/ledger.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Timeouts.Probe == 0 {
		c.Timeouts.Probe = 30 * time.Second
	}
	if c.Timeouts.Subtitle == 0 {
		c.Timeouts.Subtitle = 10 * time.Minute
	}
	if c.Timeouts.Frame == 0 {
		c.Timeouts.Frame = 30 * time.Second
	}
	if c.Timeouts.Audio == 0 {
		c.Timeouts.Audio = 10 * time.Minute
	}
	if c.Timeouts.OCR == 0 {
		c.Timeouts.OCR = time.Minute
	}
	if c.Timeouts.Speech == 0 {
		c.Timeouts.Speech = 2 * time.Hour
	}
	if c.Timeouts.Revise == 0 {
		c.Timeouts.Revise = 2 * time.Minute
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 1
	}
}
