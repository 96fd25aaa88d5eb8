package media

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrProbe marks a failed container inspection or ffmpeg extraction.
	ErrProbe = errors.New("media probe failed")
	// ErrNoAudio is returned by ExtractAudio when the container has no audio stream.
	ErrNoAudio = errors.New("no audio stream")
)

// Asset describes a probed video file. It is produced once per run and read
// by every tier.
type Asset struct {
	Path   string
	Format string
	// Duration is the container duration in seconds, 0 when unknown.
	Duration        float64
	SubtitleStreams int
	AudioStreams    int
	// Title is filesystem safe and never empty.
	Title string
	// Err is the probe failure, if any. Stream counts and duration are then
	// unknown.
	Err error
}

// EmbeddedProbe is the soft result of looking for a subtitle stream.
type EmbeddedProbe struct {
	Found   bool
	Path    string
	Streams int
	Reason  string
}

// Prober inspects and slices video files.
type Prober interface {
	// Inspect runs ffprobe on video. The returned Asset is usable even when
	// the probe fails; the failure is returned and kept in Asset.Err.
	Inspect(ctx context.Context, video string) (Asset, error)
	HasEmbeddedSubtitles(ctx context.Context, asset Asset, workDir string) EmbeddedProbe
	CaptureFrame(ctx context.Context, video string, at time.Duration, dir string) string
	ExtractAudio(ctx context.Context, asset Asset, dir string) (string, error)
}

// Timeouts bounds each kind of ffmpeg/ffprobe call.
type Timeouts struct {
	Probe time.Duration
	// Subtitle bounds extraction of an embedded stream, which reads the
	// whole container.
	Subtitle time.Duration
	Frame    time.Duration
	Audio    time.Duration
}
