package media

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

// Inspect probes video once and summarizes its streams.
func (p *implProber) Inspect(ctx context.Context, video string) (Asset, error) {
	asset := Asset{Path: video, Title: fileTitle(video)}

	result, err := p.probe(ctx, video)
	if err != nil {
		asset.Err = err
		return asset, err
	}

	asset.Format = result.Format.FormatName
	asset.SubtitleStreams = result.StreamCount("subtitle")
	asset.AudioStreams = result.StreamCount("audio")
	if d := result.DurationSeconds(); !math.IsNaN(d) && d > 0 {
		asset.Duration = d
	} else if math.IsNaN(d) {
		p.logger.Debug(ctx, "Unparsable duration %q for %s", result.Format.Duration, video)
	}
	if title := SanitizeFilename(result.Title()); title != "" {
		asset.Title = title
	}
	return asset, nil
}

// HasEmbeddedSubtitles extracts the first subtitle stream into workDir when
// the asset has one. It never fails; problems are reported through Reason.
func (p *implProber) HasEmbeddedSubtitles(ctx context.Context, asset Asset, workDir string) EmbeddedProbe {
	if asset.Err != nil {
		return EmbeddedProbe{Reason: fmt.Sprintf("probe failed: %v", asset.Err)}
	}

	streams := asset.SubtitleStreams
	if streams == 0 {
		return EmbeddedProbe{Reason: "no subtitle stream"}
	}

	video := asset.Path
	base := strings.TrimSuffix(filepath.Base(video), filepath.Ext(video))
	outPath := filepath.Join(workDir, base+"_embedded.srt")

	ctx, cancel := p.withTimeout(ctx, p.timeouts.Subtitle)
	defer cancel()

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", video,
		"-map", "0:s:0",
		outPath,
	}
	if _, err := p.executor.Execute(ctx, p.ffmpeg, args...); err != nil {
		os.Remove(outPath)
		return EmbeddedProbe{Streams: streams, Reason: fmt.Sprintf("extract subtitle stream: %v", err)}
	}

	p.logger.Debug(ctx, "Extracted embedded subtitle stream (%d found): %s", streams, outPath)
	return EmbeddedProbe{Found: true, Path: outPath, Streams: streams}
}

// CaptureFrame writes the frame at `at` as a JPEG in dir. An empty return
// means no frame is available.
func (p *implProber) CaptureFrame(ctx context.Context, video string, at time.Duration, dir string) string {
	tmp, err := os.CreateTemp(dir, "frame-*.jpg")
	if err != nil {
		p.logger.Debug(ctx, "Cannot create frame file: %v", err)
		return ""
	}
	framePath := tmp.Name()
	tmp.Close()

	ctx, cancel := p.withTimeout(ctx, p.timeouts.Frame)
	defer cancel()

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(at),
		"-i", video,
		"-frames:v", "1",
		"-q:v", "2",
		framePath,
	}
	if _, err := p.executor.Execute(ctx, p.ffmpeg, args...); err != nil {
		os.Remove(framePath)
		p.logger.Debug(ctx, "Frame capture at %s failed: %v", at, err)
		return ""
	}

	// ffmpeg exits cleanly when seeking past the end but writes nothing.
	if info, err := os.Stat(framePath); err != nil || info.Size() == 0 {
		os.Remove(framePath)
		return ""
	}
	return framePath
}

// ExtractAudio converts the first audio stream to mono 16kHz 16-bit PCM WAV.
func (p *implProber) ExtractAudio(ctx context.Context, asset Asset, dir string) (string, error) {
	if asset.Err != nil {
		return "", asset.Err
	}
	if asset.AudioStreams == 0 {
		return "", ErrNoAudio
	}
	video := asset.Path

	tmp, err := os.CreateTemp(dir, "audio-*.wav")
	if err != nil {
		return "", fmt.Errorf("create audio file: %w", err)
	}
	audioPath := tmp.Name()
	tmp.Close()

	ctx, cancel := p.withTimeout(ctx, p.timeouts.Audio)
	defer cancel()

	p.logger.Info(ctx, "Extracting audio: %s", video)

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", video,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		audioPath,
	}
	if _, err := p.executor.Execute(ctx, p.ffmpeg, args...); err != nil {
		os.Remove(audioPath)
		return "", fmt.Errorf("%w: ffmpeg extract audio: %w", ErrProbe, err)
	}

	p.logger.Info(ctx, "Audio extracted successfully: %s", audioPath)
	return audioPath, nil
}

// fileTitle derives a title from the file name.
func fileTitle(video string) string {
	name := SanitizeFilename(strings.TrimSuffix(filepath.Base(video), filepath.Ext(video)))
	if name == "" {
		return "video"
	}
	return name
}

func (p *implProber) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return executor.WithTimeout(ctx, d)
}

func formatSeconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.3f", d.Seconds())
}
