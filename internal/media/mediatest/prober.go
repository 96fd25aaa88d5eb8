// Package mediatest provides an in-memory media.Prober for tests.
package mediatest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/caption-extract/internal/media"
)

const framePrefix = "frame@"

// Prober fakes ffprobe/ffmpeg. Frames are real files whose content encodes
// their timestamp so a fake recognizer can tell them apart.
type Prober struct {
	Seconds  float64
	ProbeErr error
	// Embedded is the extracted subtitle payload; empty means no stream.
	Embedded string
	// Frame reports whether a frame at the given time can be captured. Nil
	// means every frame is available.
	Frame    func(at time.Duration) bool
	AudioErr error
	Name     string

	mu       sync.Mutex
	frames   []string
	audio    []string
	embedded int
	inspects int
}

var _ media.Prober = (*Prober)(nil)

func (p *Prober) Inspect(ctx context.Context, video string) (media.Asset, error) {
	p.mu.Lock()
	p.inspects++
	p.mu.Unlock()
	return p.Asset(video), p.ProbeErr
}

// Asset returns what Inspect would for video without counting the call.
func (p *Prober) Asset(video string) media.Asset {
	title := p.Name
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(video), filepath.Ext(video))
	}
	asset := media.Asset{Path: video, Title: title}
	if p.ProbeErr != nil {
		asset.Err = p.ProbeErr
		return asset
	}
	asset.Format = "mov,mp4"
	asset.Duration = p.Seconds
	asset.AudioStreams = 1
	if p.Embedded != "" {
		asset.SubtitleStreams = 1
	}
	return asset
}

func (p *Prober) HasEmbeddedSubtitles(ctx context.Context, asset media.Asset, workDir string) media.EmbeddedProbe {
	p.mu.Lock()
	p.embedded++
	p.mu.Unlock()
	if asset.Err != nil {
		return media.EmbeddedProbe{Reason: "probe failed: " + asset.Err.Error()}
	}
	if asset.SubtitleStreams == 0 {
		return media.EmbeddedProbe{Reason: "no subtitle stream"}
	}
	base := strings.TrimSuffix(filepath.Base(asset.Path), filepath.Ext(asset.Path))
	path := filepath.Join(workDir, base+"_embedded.srt")
	if err := os.WriteFile(path, []byte(p.Embedded), 0644); err != nil {
		return media.EmbeddedProbe{Streams: 1, Reason: err.Error()}
	}
	return media.EmbeddedProbe{Found: true, Path: path, Streams: 1}
}

func (p *Prober) CaptureFrame(ctx context.Context, video string, at time.Duration, dir string) string {
	if ctx.Err() != nil {
		return ""
	}
	if p.Frame != nil && !p.Frame(at) {
		return ""
	}
	f, err := os.CreateTemp(dir, "frame-*.jpg")
	if err != nil {
		return ""
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s%d", framePrefix, at.Milliseconds()); err != nil {
		return ""
	}
	p.mu.Lock()
	p.frames = append(p.frames, f.Name())
	p.mu.Unlock()
	return f.Name()
}

func (p *Prober) ExtractAudio(ctx context.Context, asset media.Asset, dir string) (string, error) {
	if asset.Err != nil {
		return "", asset.Err
	}
	if p.AudioErr != nil {
		return "", p.AudioErr
	}
	f, err := os.CreateTemp(dir, "audio-*.wav")
	if err != nil {
		return "", err
	}
	defer f.Close()
	p.mu.Lock()
	p.audio = append(p.audio, f.Name())
	p.mu.Unlock()
	return f.Name(), nil
}

// Frames returns every frame path handed out so far.
func (p *Prober) Frames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.frames...)
}

// AudioFiles returns every audio path handed out so far.
func (p *Prober) AudioFiles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.audio...)
}

// Inspections counts Inspect calls.
func (p *Prober) Inspections() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inspects
}

// EmbeddedChecks counts HasEmbeddedSubtitles calls.
func (p *Prober) EmbeddedChecks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.embedded
}

// FrameTime decodes the timestamp written into a frame produced by Prober.
func FrameTime(path string) (time.Duration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var ms int64
	if _, err := fmt.Sscanf(string(data), framePrefix+"%d", &ms); err != nil {
		return 0, fmt.Errorf("not a fake frame: %w", err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Leftovers returns the paths among files that still exist.
func Leftovers(files []string) []string {
	var out []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			out = append(out, f)
		}
	}
	return out
}
