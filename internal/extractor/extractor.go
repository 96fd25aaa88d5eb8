package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
	"github.com/nguyentantai21042004/caption-extract/internal/logger"
	"github.com/nguyentantai21042004/caption-extract/internal/media"
	"github.com/nguyentantai21042004/caption-extract/internal/ocr"
	"github.com/nguyentantai21042004/caption-extract/internal/speech"
	"github.com/nguyentantai21042004/caption-extract/internal/tier"
)

type state int

const (
	stateCheckEmbedded state = iota
	stateCheckBurned
	stateTranscribe
	stateDone
	stateFailed
)

// run holds everything scoped to one Extract call.
type run struct {
	*implExtractor

	asset   media.Asset
	workDir string

	handle     *ocr.Handle
	classifier ocr.Classifier
	ocr        ocr.Engine
	speech     speech.Engine

	result Result
}

// Extract moves through CheckEmbedded, CheckBurned and Transcribe, each at
// most once and never backwards, stopping at the first tier that succeeds.
func (e *implExtractor) Extract(ctx context.Context, video, output string) (Result, error) {
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID[:8])
	result := Result{RunID: runID, Video: video, Output: output, Provenance: caption.ProvenanceFailed}

	info, err := os.Stat(video)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrInputNotFound, err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("%w: %s is a directory", ErrInputNotFound, video)
	}

	asset, err := e.prober.Inspect(ctx, video)
	if err != nil {
		e.logger.Warn(ctx, "Probe failed, tiers will run without stream info: %v", err)
	} else {
		e.logger.Debug(ctx, "Probed %s: %s, %.1fs, %d subtitle / %d audio streams",
			video, asset.Format, asset.Duration, asset.SubtitleStreams, asset.AudioStreams)
	}

	output = outputPath(video, output, asset.Title)
	result.Output = output

	workDir, err := e.makeWorkDir(runID)
	if err != nil {
		return result, err
	}
	defer os.RemoveAll(workDir)

	handle := ocr.NewHandle(e.opts.Recognizer)
	defer func() {
		if err := handle.Close(); err != nil {
			e.logger.Warn(ctx, "Release OCR recognizer: %v", err)
		}
	}()

	r := &run{
		implExtractor: e,
		asset:         asset,
		workDir:       workDir,
		handle:        handle,
		classifier:    ocr.NewClassifier(handle, e.opts.MinLines, e.logger),
		ocr:           ocr.NewEngine(e.prober, handle, e.opts.OCR, e.logger),
		speech:        speech.New(e.executor, e.prober, e.opts.Speech, e.logger),
		result:        result,
	}

	e.logger.Info(ctx, "Extracting captions: %s -> %s", video, output)
	start := time.Now()

	st := stateCheckEmbedded
	for st != stateDone && st != stateFailed {
		if err := ctx.Err(); err != nil {
			r.result.Provenance = caption.ProvenanceFailed
			return r.result, err
		}
		switch st {
		case stateCheckEmbedded:
			st, err = r.checkEmbedded(ctx)
		case stateCheckBurned:
			st, err = r.checkBurned(ctx)
		case stateTranscribe:
			st, err = r.transcribe(ctx)
		}
		if err != nil {
			r.result.Provenance = caption.ProvenanceFailed
			return r.result, err
		}
	}

	if st == stateFailed {
		e.logger.Error(ctx, "All tiers failed for %s after %s", video, time.Since(start).Round(time.Millisecond))
		return r.result, nil
	}

	r.result.Quality = caption.Assess(r.result.Track.Entries)
	if !r.result.Quality.OK() {
		e.logger.Warn(ctx, "Caption quality: %s", r.result.Quality)
	}
	e.logger.Info(ctx, "Captions ready (%s, %d entries) in %s: %s",
		r.result.Provenance, r.result.Track.Len(), time.Since(start).Round(time.Millisecond), output)
	return r.result, nil
}

// outputPath resolves where the SRT goes: beside the video when output is
// empty, inside output when it names an existing directory.
func outputPath(video, output, title string) string {
	if output == "" {
		return filepath.Join(filepath.Dir(video), title+".srt")
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, title+".srt")
	}
	return output
}

func (e *implExtractor) makeWorkDir(runID string) (string, error) {
	base := e.opts.TempDir
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	dir, err := os.MkdirTemp(base, "run-"+runID[:8]+"-")
	if err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	return dir, nil
}

func (r *run) checkEmbedded(ctx context.Context) (state, error) {
	start := time.Now()
	r.logger.Info(ctx, "[1/3] Checking for an embedded subtitle stream")

	probe := r.prober.HasEmbeddedSubtitles(ctx, r.asset, r.workDir)
	if !probe.Found {
		reason := tier.ReasonNoSubtitleStream
		if probe.Streams > 0 || strings.HasPrefix(probe.Reason, "probe failed") {
			reason = tier.ReasonProbeFailed
		}
		r.record(ctx, TierEmbedded, start, tier.Fail(reason, errors.New(probe.Reason)))
		return stateCheckBurned, nil
	}

	if err := caption.CopyFile(probe.Path, r.result.Output); err != nil {
		r.record(ctx, TierEmbedded, start, tier.Fail(tier.ReasonWriteFailed, err))
		return stateFailed, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	entries, err := caption.ReadFile(probe.Path)
	if err != nil {
		r.logger.Warn(ctx, "Embedded subtitles copied, some blocks unreadable: %v", err)
	}

	r.record(ctx, TierEmbedded, start, tier.Success())
	return r.done(caption.NewTrack(caption.ProvenanceEmbedded, entries)), nil
}

func (r *run) checkBurned(ctx context.Context) (state, error) {
	start := time.Now()
	r.logger.Info(ctx, "[2/3] Checking for burned-in subtitles at %s", r.opts.ProbeAt)

	frame := r.prober.CaptureFrame(ctx, r.asset.Path, r.opts.ProbeAt, r.workDir)
	if frame == "" {
		r.record(ctx, TierOCR, start, tier.Fail(tier.ReasonFrameUnavailable, nil))
		return stateTranscribe, nil
	}
	positive := r.classifier.HasBurnedSubtitle(ctx, frame)
	os.Remove(frame)
	if !positive {
		r.record(ctx, TierOCR, start, tier.Fail(tier.ReasonNoBurnedSubtitle, nil))
		return stateTranscribe, nil
	}

	r.logger.Info(ctx, "Burned-in subtitles detected, running OCR over the whole video")
	track, outcome := r.ocr.ExtractBurnedSubtitles(ctx, r.asset, r.workDir)
	if !outcome.OK {
		r.record(ctx, TierOCR, start, outcome)
		return stateTranscribe, nil
	}
	return r.write(ctx, TierOCR, start, track)
}

func (r *run) transcribe(ctx context.Context) (state, error) {
	start := time.Now()
	r.logger.Info(ctx, "[3/3] Transcribing speech")

	track, outcome := r.speech.Transcribe(ctx, r.asset, r.workDir)
	if !outcome.OK {
		r.record(ctx, TierSpeech, start, outcome)
		return stateFailed, nil
	}
	return r.write(ctx, TierSpeech, start, track)
}

func (r *run) write(ctx context.Context, t Tier, start time.Time, track caption.Track) (state, error) {
	if err := caption.WriteFile(r.result.Output, track.Entries); err != nil {
		r.record(ctx, t, start, tier.Fail(tier.ReasonWriteFailed, err))
		return stateFailed, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	r.record(ctx, t, start, tier.Success())
	return r.done(track), nil
}

func (r *run) done(track caption.Track) state {
	r.result.Track = track
	r.result.Provenance = track.Provenance
	return stateDone
}

func (r *run) record(ctx context.Context, t Tier, start time.Time, outcome tier.Outcome) {
	elapsed := time.Since(start)
	r.result.Attempts = append(r.result.Attempts, Attempt{Tier: t, Outcome: outcome, Elapsed: elapsed})
	if outcome.OK {
		r.logger.Info(ctx, "Tier %s succeeded in %s", t, elapsed.Round(time.Millisecond))
		return
	}
	r.logger.Warn(ctx, "Tier %s gave up (%s)", t, outcome)
}
