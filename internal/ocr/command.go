package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/caption-extract/internal/tier"
	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

// FramePlaceholder in command arguments is replaced by the image path.
const FramePlaceholder = "{frame}"

type commandRecognizer struct {
	executor executor.Executor
	binary   string
	args     []string
	timeout  time.Duration
}

type commandLine struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// NewCommand returns a Factory for an external OCR command (for example a
// RapidOCR or PaddleOCR wrapper) that prints a JSON array of
// {"text", "confidence"} objects. The image path replaces FramePlaceholder in
// args, or is appended when no placeholder is present.
func NewCommand(exec executor.Executor, binary string, args []string, timeout time.Duration) Factory {
	return func() (Recognizer, error) {
		path, err := exec.LookPath(binary)
		if err != nil {
			return nil, err
		}
		return &commandRecognizer{executor: exec, binary: path, args: args, timeout: timeout}, nil
	}
}

func (c *commandRecognizer) Recognize(ctx context.Context, imagePath string) ([]Line, error) {
	ctx, cancel := executor.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.executor.Execute(ctx, c.binary, c.buildArgs(imagePath)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tier.ErrRecognitionFailure, err)
	}

	out = strings.TrimSpace(out)
	if out == "" || out == "null" {
		return nil, nil
	}
	var parsed []commandLine
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode output: %w", tier.ErrRecognitionFailure, err)
	}

	lines := make([]Line, 0, len(parsed))
	for _, l := range parsed {
		lines = append(lines, Line{Text: l.Text, Confidence: l.Confidence})
	}
	return lines, nil
}

func (c *commandRecognizer) buildArgs(imagePath string) []string {
	args := make([]string, 0, len(c.args)+1)
	replaced := false
	for _, a := range c.args {
		if strings.Contains(a, FramePlaceholder) {
			a = strings.ReplaceAll(a, FramePlaceholder, imagePath)
			replaced = true
		}
		args = append(args, a)
	}
	if !replaced {
		args = append(args, imagePath)
	}
	return args
}
