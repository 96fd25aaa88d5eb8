package ocr

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
	"github.com/nguyentantai21042004/caption-extract/internal/media"
	"github.com/nguyentantai21042004/caption-extract/internal/tier"
	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

type frameResult struct {
	captured bool
	failed   bool
	text     string
}

// ExtractBurnedSubtitles samples one frame per interval over the whole video
// and turns each frame's confident text into an entry spanning the interval.
func (e *implEngine) ExtractBurnedSubtitles(ctx context.Context, asset media.Asset, workDir string) (caption.Track, tier.Outcome) {
	failed := caption.Track{Provenance: caption.ProvenanceFailed}

	if asset.Err != nil {
		return failed, tier.Fail(tier.ReasonNoDuration, asset.Err)
	}
	video, duration := asset.Path, asset.Duration
	if duration <= 0 {
		return failed, tier.Fail(tier.ReasonNoDuration, fmt.Errorf("duration %.3fs", duration))
	}

	rec, err := e.handle.Get()
	if err != nil {
		return failed, tier.Fail(tier.ReasonRecognizerUnavailable, err)
	}

	samples := SampleTimes(duration, e.settings.Interval)
	e.logger.Info(ctx, "OCR: sampling %d frames every %s (%.1fs video, %d workers)",
		len(samples), e.settings.Interval, duration, e.settings.Workers)

	results := make([]frameResult, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.settings.Workers)
	for i, at := range samples {
		g.Go(func() error {
			res, err := e.readFrame(gctx, rec, video, at, workDir)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return failed, tier.Fail(tier.ReasonRecognitionFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return failed, tier.Fail(tier.ReasonCanceled, err)
	}

	var entries []caption.Entry
	captured, errored := 0, 0
	for i, res := range results {
		if res.captured {
			captured++
		}
		if res.failed {
			errored++
		}
		if res.text == "" {
			continue
		}
		entries = append(entries, caption.Entry{
			Index: len(entries) + 1,
			Start: samples[i],
			End:   samples[i] + e.settings.Interval,
			Text:  res.text,
		})
	}

	if errored > 0 && errored == captured {
		err := fmt.Errorf("%w: all %d frames failed recognition", tier.ErrRecognitionFailure, errored)
		return failed, tier.Fail(tier.ReasonRecognitionFailed, err)
	}

	e.logger.Info(ctx, "OCR: %d entries from %d/%d frames (%d recognition errors)",
		len(entries), captured, len(samples), errored)
	return caption.NewTrack(caption.ProvenanceOCR, entries), tier.Success()
}

// readFrame captures, recognizes and removes one frame. A returned error
// aborts the whole tier; per-frame problems are reported in the result.
func (e *implEngine) readFrame(ctx context.Context, rec Recognizer, video string, at time.Duration, workDir string) (frameResult, error) {
	if err := ctx.Err(); err != nil {
		return frameResult{}, err
	}

	frame := e.prober.CaptureFrame(ctx, video, at, workDir)
	if frame == "" {
		if err := ctx.Err(); err != nil {
			return frameResult{}, err
		}
		e.logger.Debug(ctx, "OCR: no frame at %s", at)
		return frameResult{}, nil
	}
	defer os.Remove(frame)

	lines, err := rec.Recognize(ctx, frame)
	if err != nil {
		if fatalRecognition(ctx, err) {
			return frameResult{}, err
		}
		e.logger.Warn(ctx, "OCR: frame at %s: %v", at, err)
		return frameResult{captured: true, failed: true}, nil
	}

	return frameResult{captured: true, text: JoinConfident(lines, e.settings.MinConfidence)}, nil
}

func fatalRecognition(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, tier.ErrRecognitionUnavailable) ||
		errors.Is(err, executor.ErrNotInstalled) ||
		errors.Is(err, executor.ErrTimeout) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// SampleTimes returns 0, interval, 2*interval, ... strictly below the whole
// seconds of duration.
func SampleTimes(duration float64, interval time.Duration) []time.Duration {
	if duration <= 0 || interval <= 0 {
		return nil
	}
	limit := time.Duration(math.Floor(duration)) * time.Second
	var out []time.Duration
	for at := time.Duration(0); at < limit; at += interval {
		out = append(out, at)
	}
	return out
}

// JoinConfident joins, with single spaces, the texts of lines whose
// confidence is strictly above minConfidence.
func JoinConfident(lines []Line, minConfidence float64) string {
	var kept []string
	for _, l := range lines {
		text := strings.TrimSpace(l.Text)
		if text == "" || l.Confidence <= minConfidence {
			continue
		}
		kept = append(kept, text)
	}
	return strings.Join(kept, " ")
}
