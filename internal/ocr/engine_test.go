package ocr

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
	"github.com/nguyentantai21042004/caption-extract/internal/logger"
	"github.com/nguyentantai21042004/caption-extract/internal/media/mediatest"
	"github.com/nguyentantai21042004/caption-extract/internal/tier"
	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

// scripted returns a recognizer answering per frame time.
func scripted(byTime map[time.Duration][]Line, errs map[time.Duration]error) Recognizer {
	return RecognizerFunc(func(ctx context.Context, path string) ([]Line, error) {
		at, err := mediatest.FrameTime(path)
		if err != nil {
			return nil, err
		}
		if err := errs[at]; err != nil {
			return nil, err
		}
		return byTime[at], nil
	})
}

func staticHandle(rec Recognizer) *Handle {
	return NewHandle(func() (Recognizer, error) { return rec, nil })
}

func TestJoinConfident(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  string
	}{
		{
			name:  "mixed confidences",
			lines: []Line{{"你好", 0.9}, {"世界", 0.8}, {"噪声", 0.5}},
			want:  "你好 世界",
		},
		{
			name:  "exactly at threshold is dropped",
			lines: []Line{{"edge", 0.7}, {"kept", 0.71}},
			want:  "kept",
		},
		{
			name:  "blank text ignored",
			lines: []Line{{"  ", 0.99}, {" a ", 0.99}},
			want:  "a",
		},
		{
			name:  "nothing confident",
			lines: []Line{{"x", 0.1}},
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinConfident(tt.lines, 0.7); got != tt.want {
				t.Errorf("JoinConfident() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSampleTimes(t *testing.T) {
	s := time.Second
	tests := []struct {
		duration float64
		want     []time.Duration
	}{
		{0, nil},
		{0.5, nil},
		{0.999, nil},
		{1, []time.Duration{0}},
		{1.9, []time.Duration{0}},
		{4, []time.Duration{0, 2 * s}},
		{5.9, []time.Duration{0, 2 * s, 4 * s}},
		{6, []time.Duration{0, 2 * s, 4 * s}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.duration), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SampleTimes(tt.duration, 2*s)); diff != "" {
				t.Errorf("SampleTimes(%v) mismatch (-want +got):\n%s", tt.duration, diff)
			}
		})
	}
}

func TestExtractBurnedSubtitles(t *testing.T) {
	s := time.Second
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			prober := &mediatest.Prober{
				Seconds: 9.5,
				Frame:   func(at time.Duration) bool { return at != 6*s },
			}
			rec := scripted(map[time.Duration][]Line{
				0:     {{"第一句", 0.95}, {"first", 0.9}},
				2 * s: {{"noise", 0.4}},
				4 * s: {{"第三句", 0.8}, {"低", 0.7}},
				8 * s: {{"最后", 0.99}},
			}, nil)
			engine := NewEngine(prober, staticHandle(rec), Settings{Interval: 2 * s, MinConfidence: 0.7, Workers: workers}, logger.Nop())

			track, outcome := engine.ExtractBurnedSubtitles(context.Background(), prober.Asset("clip.mp4"), t.TempDir())
			if !outcome.OK {
				t.Fatalf("outcome = %s", outcome)
			}

			want := caption.Track{
				Provenance: caption.ProvenanceOCR,
				Entries: []caption.Entry{
					{Index: 1, Start: 0, End: 2 * s, Text: "第一句 first"},
					{Index: 2, Start: 4 * s, End: 6 * s, Text: "第三句"},
					{Index: 3, Start: 8 * s, End: 10 * s, Text: "最后"},
				},
			}
			if diff := cmp.Diff(want, track); diff != "" {
				t.Errorf("track mismatch (-want +got):\n%s", diff)
			}
			if len(prober.Frames()) != 4 {
				t.Errorf("captured %d frames, want 4", len(prober.Frames()))
			}
			if left := mediatest.Leftovers(prober.Frames()); len(left) != 0 {
				t.Errorf("frames not removed: %v", left)
			}
		})
	}
}

func TestExtractBurnedSubtitlesEmptySuccess(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
	}{
		{name: "sub-second video", seconds: 0.8},
		{name: "no confident text", seconds: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := &mediatest.Prober{Seconds: tt.seconds}
			rec := RecognizerFunc(func(ctx context.Context, path string) ([]Line, error) {
				return []Line{{"faint", 0.3}}, nil
			})
			engine := NewEngine(prober, staticHandle(rec), Settings{Interval: 2 * time.Second, MinConfidence: 0.7}, logger.Nop())

			track, outcome := engine.ExtractBurnedSubtitles(context.Background(), prober.Asset("clip.mp4"), t.TempDir())
			if !outcome.OK {
				t.Fatalf("outcome = %s", outcome)
			}
			if track.Provenance != caption.ProvenanceOCR || track.Len() != 0 {
				t.Errorf("track = %+v, want empty ocr track", track)
			}
		})
	}
}

func TestExtractBurnedSubtitlesFailures(t *testing.T) {
	s := time.Second
	failing := func(err error) Recognizer {
		return RecognizerFunc(func(ctx context.Context, path string) ([]Line, error) { return nil, err })
	}
	tests := []struct {
		name   string
		prober *mediatest.Prober
		handle *Handle
		reason tier.Reason
	}{
		{
			name:   "zero duration",
			prober: &mediatest.Prober{Seconds: 0},
			handle: staticHandle(failing(nil)),
			reason: tier.ReasonNoDuration,
		},
		{
			name:   "duration probe error",
			prober: &mediatest.Prober{ProbeErr: errors.New("moov atom not found")},
			handle: staticHandle(failing(nil)),
			reason: tier.ReasonNoDuration,
		},
		{
			name:   "recognizer cannot load",
			prober: &mediatest.Prober{Seconds: 10},
			handle: NewHandle(func() (Recognizer, error) {
				return nil, fmt.Errorf("%w: tesseract", executor.ErrNotInstalled)
			}),
			reason: tier.ReasonRecognizerUnavailable,
		},
		{
			name:   "every frame fails",
			prober: &mediatest.Prober{Seconds: 6},
			handle: staticHandle(failing(fmt.Errorf("%w: bad image", tier.ErrRecognitionFailure))),
			reason: tier.ReasonRecognitionFailed,
		},
		{
			name:   "recognizer disappears mid run",
			prober: &mediatest.Prober{Seconds: 6},
			handle: staticHandle(scripted(
				map[time.Duration][]Line{0: {{"ok", 0.9}}},
				map[time.Duration]error{2 * s: fmt.Errorf("command failed: %w", executor.ErrNotInstalled)},
			)),
			reason: tier.ReasonRecognizerUnavailable,
		},
		{
			name:   "recognizer call times out",
			prober: &mediatest.Prober{Seconds: 6},
			handle: staticHandle(failing(fmt.Errorf("%w: %w", tier.ErrRecognitionFailure, executor.ErrTimeout))),
			reason: tier.ReasonTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(tt.prober, tt.handle, Settings{Interval: 2 * s, MinConfidence: 0.7}, logger.Nop())

			track, outcome := engine.ExtractBurnedSubtitles(context.Background(), tt.prober.Asset("clip.mp4"), t.TempDir())
			if outcome.OK {
				t.Fatalf("outcome OK, want %s", tt.reason)
			}
			if outcome.Reason != tt.reason {
				t.Errorf("reason = %s, want %s (%v)", outcome.Reason, tt.reason, outcome.Err)
			}
			if track.Provenance != caption.ProvenanceFailed || track.Len() != 0 {
				t.Errorf("track = %+v", track)
			}
			if left := mediatest.Leftovers(tt.prober.Frames()); len(left) != 0 {
				t.Errorf("frames not removed: %v", left)
			}
		})
	}
}

func TestExtractBurnedSubtitlesPartialErrors(t *testing.T) {
	s := time.Second
	prober := &mediatest.Prober{Seconds: 6}
	rec := scripted(
		map[time.Duration][]Line{4 * s: {{"survivor", 0.9}}},
		map[time.Duration]error{
			0:     fmt.Errorf("%w: blur", tier.ErrRecognitionFailure),
			2 * s: fmt.Errorf("%w: blur", tier.ErrRecognitionFailure),
		},
	)
	engine := NewEngine(prober, staticHandle(rec), Settings{Interval: 2 * s, MinConfidence: 0.7}, logger.Nop())

	track, outcome := engine.ExtractBurnedSubtitles(context.Background(), prober.Asset("clip.mp4"), t.TempDir())
	if !outcome.OK {
		t.Fatalf("outcome = %s", outcome)
	}
	if track.Len() != 1 || track.Entries[0].Text != "survivor" {
		t.Errorf("entries = %+v", track.Entries)
	}
}

func TestExtractBurnedSubtitlesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	prober := &mediatest.Prober{Seconds: 20}
	rec := RecognizerFunc(func(ctx context.Context, path string) ([]Line, error) {
		cancel()
		return []Line{{"late", 0.9}}, nil
	})
	engine := NewEngine(prober, staticHandle(rec), Settings{Interval: 2 * time.Second, MinConfidence: 0.7}, logger.Nop())

	_, outcome := engine.ExtractBurnedSubtitles(ctx, prober.Asset("clip.mp4"), t.TempDir())
	if outcome.OK || outcome.Reason != tier.ReasonCanceled {
		t.Errorf("outcome = %s, want canceled", outcome)
	}
}
