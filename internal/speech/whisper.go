package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
	"github.com/nguyentantai21042004/caption-extract/internal/media"
	"github.com/nguyentantai21042004/caption-extract/internal/tier"
	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

// whisperOutput is the part of whisper.cpp's -oj file we read.
type whisperOutput struct {
	Transcription []whisperSegment `json:"transcription"`
}

type whisperSegment struct {
	Offsets struct {
		From int64 `json:"from"`
		To   int64 `json:"to"`
	} `json:"offsets"`
	Text string `json:"text"`
}

// Transcribe extracts the audio track, runs whisper.cpp over it and converts
// each segment into an entry. Audio and JSON files are removed on return.
func (e *implEngine) Transcribe(ctx context.Context, asset media.Asset, workDir string) (caption.Track, tier.Outcome) {
	failed := caption.Track{Provenance: caption.ProvenanceFailed}

	binary, err := e.load()
	if err != nil {
		return failed, tier.Fail(tier.ReasonRecognizerUnavailable, err)
	}

	audio, err := e.prober.ExtractAudio(ctx, asset, workDir)
	if err != nil {
		return failed, tier.Fail(tier.ReasonAudioUnavailable, err)
	}
	defer os.Remove(audio)

	prefix := strings.TrimSuffix(audio, filepath.Ext(audio))
	jsonPath := prefix + ".json"
	defer os.Remove(jsonPath)

	e.logger.Info(ctx, "Starting transcription with %d threads (language %s): %s",
		e.settings.Threads, e.settings.Language, filepath.Base(asset.Path))

	start := time.Now()
	runCtx, cancel := executor.WithTimeout(ctx, e.settings.Timeout)
	defer cancel()
	if _, err := e.executor.Execute(runCtx, binary, e.args(audio, prefix)...); err != nil {
		return failed, tier.Fail(tier.ReasonRecognitionFailed,
			fmt.Errorf("%w: whisper transcribe: %w", tier.ErrRecognitionFailure, err))
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return failed, tier.Fail(tier.ReasonRecognitionFailed,
			fmt.Errorf("%w: read whisper output: %w", tier.ErrRecognitionFailure, err))
	}
	entries, err := parseSegments(data)
	if err != nil {
		return failed, tier.Fail(tier.ReasonRecognitionFailed, err)
	}

	track := caption.NewTrack(caption.ProvenanceTranscribed, entries)
	e.logger.Info(ctx, "Transcription completed: %d segments in %s", track.Len(), time.Since(start).Round(time.Second))
	return track, tier.Success()
}

// load resolves the binary and checks the model file once per engine.
func (e *implEngine) load() (string, error) {
	e.once.Do(func() {
		binary, err := e.executor.LookPath(e.settings.Binary)
		if err != nil {
			e.loadErr = fmt.Errorf("%w: %w", tier.ErrRecognitionUnavailable, err)
			return
		}
		if e.settings.ModelPath != "" {
			if _, err := os.Stat(e.settings.ModelPath); err != nil {
				e.loadErr = fmt.Errorf("%w: whisper model: %w", tier.ErrRecognitionUnavailable, err)
				return
			}
		}
		e.binary = binary
	})
	return e.binary, e.loadErr
}

// args builds the whisper.cpp command line.
// -oj writes <prefix>.json with millisecond segment offsets.
// -ml/-mc 0 lift the segment length and context limits for long videos.
func (e *implEngine) args(audio, prefix string) []string {
	args := []string{
		"-m", e.settings.ModelPath,
		"-f", audio,
		"-oj",
		"-l", e.settings.Language,
		"-t", strconv.Itoa(e.settings.Threads),
		"-ml", "0",
		"-mc", "0",
		"-bo", "5",
		"--output-file", prefix,
	}
	if e.settings.Prompt != "" {
		args = append(args, "--prompt", e.settings.Prompt)
	}
	if !e.settings.UseGPU {
		args = append(args, "-ng")
	}
	return args
}

func parseSegments(data []byte) ([]caption.Entry, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode whisper output: %w", tier.ErrRecognitionFailure, err)
	}

	entries := make([]caption.Entry, 0, len(out.Transcription))
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" || isAnnotation(text) || seg.Offsets.To <= seg.Offsets.From {
			continue
		}
		entries = append(entries, caption.Entry{
			Index: len(entries) + 1,
			Start: time.Duration(seg.Offsets.From) * time.Millisecond,
			End:   time.Duration(seg.Offsets.To) * time.Millisecond,
			Text:  text,
		})
	}
	return entries, nil
}

// isAnnotation reports whisper's non-speech markers such as [BLANK_AUDIO].
func isAnnotation(text string) bool {
	return strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]")
}
