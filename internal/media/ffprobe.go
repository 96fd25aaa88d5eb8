package media

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ProbeResult is the subset of ffprobe JSON output the pipeline reads.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
}

type Format struct {
	Filename   string            `json:"filename"`
	NBStreams  int               `json:"nb_streams"`
	Duration   string            `json:"duration"`
	FormatName string            `json:"format_name"`
	Tags       map[string]string `json:"tags"`
}

// StreamCount returns how many streams have the given codec type.
func (r ProbeResult) StreamCount(codecType string) int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration, or NaN when it is unparsable
// and 0 when absent.
func (r ProbeResult) DurationSeconds() float64 {
	cleaned := strings.TrimSpace(r.Format.Duration)
	if cleaned == "" || cleaned == "N/A" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}

// Title returns the container title tag, matched case-insensitively.
func (r ProbeResult) Title() string {
	for k, v := range r.Format.Tags {
		if strings.EqualFold(k, "title") {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (p *implProber) probe(ctx context.Context, video string) (ProbeResult, error) {
	ctx, cancel := p.withTimeout(ctx, p.timeouts.Probe)
	defer cancel()

	out, err := p.executor.Execute(ctx, p.ffprobe,
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--", video,
	)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("%w: ffprobe: %w", ErrProbe, err)
	}

	var result ProbeResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return ProbeResult{}, fmt.Errorf("%w: parse ffprobe output: %w", ErrProbe, err)
	}
	return result, nil
}
