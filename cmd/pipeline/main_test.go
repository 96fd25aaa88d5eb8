package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/caption-extract/internal/extractor"
	"github.com/nguyentantai21042004/caption-extract/internal/ledger"
	"github.com/nguyentantai21042004/caption-extract/internal/processor"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.yaml")
	cfg := `logging:
  level: error
paths:
  input: ` + filepath.Join(base, "input") + `
  output: ` + filepath.Join(base, "output") + `
  archived: ` + filepath.Join(base, "archived") + `
  temp: ` + filepath.Join(base, "temp") + `
  ledger: ` + filepath.Join(base, "ledger.db") + `
`
	if err := os.WriteFile(configPath, []byte(cfg), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{baseDir: base, configPath: configPath}
}

// useTools points the configuration at stub ffprobe, ffmpeg and whisper
// scripts with the given shell bodies.
func (e *cliTestEnv) useTools(t *testing.T, ffprobe, ffmpeg, whisper string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	model := filepath.Join(e.baseDir, "model.bin")
	if err := os.WriteFile(model, []byte("model"), 0644); err != nil {
		t.Fatal(err)
	}
	tools := "tools:\n" +
		"  ffprobe: " + e.stub(t, "ffprobe", ffprobe) + "\n" +
		"  ffmpeg: " + e.stub(t, "ffmpeg", ffmpeg) + "\n" +
		"whisper:\n" +
		"  binary_path: " + e.stub(t, "whisper-cli", whisper) + "\n" +
		"  model_path: " + model + "\n" +
		"ocr:\n" +
		"  backend: command\n" +
		"  binary: " + e.stub(t, "ocr", "exit 1") + "\n"
	f, err := os.OpenFile(e.configPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(tools); err != nil {
		t.Fatal(err)
	}
}

func (e *cliTestEnv) stub(t *testing.T, name, body string) string {
	t.Helper()
	dir := filepath.Join(e.baseDir, "bin")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func (e *cliTestEnv) video(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.baseDir, name)
	if err := os.WriteFile(path, []byte("not really a video"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

const sampleSRT = `1
00:00:00,000 --> 00:00:01,500
hello there

2
00:00:01,500 --> 00:00:03,000
general kenobi

`

func TestRootMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := env.run(t, filepath.Join(env.baseDir, "missing.mp4"))
	if !errors.Is(err, extractor.ErrInputNotFound) {
		t.Fatalf("error = %v, want ErrInputNotFound", err)
	}

	out, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "missing.mp4") || !strings.Contains(out, "failed") {
		t.Errorf("history output missing failed run:\n%s", out)
	}
}

const (
	ffprobeAudioOnly = `cat <<'EOF'
{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio"}],"format":{"duration":"12.0","format_name":"mov,mp4"}}
EOF`
	ffprobeWithSubtitles = `cat <<'EOF'
{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio"},{"index":2,"codec_type":"subtitle"}],"format":{"duration":"12.0","format_name":"matroska,webm"}}
EOF`
	// ffmpeg writes audio and subtitle outputs but never a frame.
	ffmpegWritesOutputs = `for a in "$@"; do last="$a"; done
case "$last" in
  *.wav) printf 'RIFF' > "$last" ;;
  *.srt) printf '1\n00:00:00,000 --> 00:00:01,500\nhello there\n\n' > "$last" ;;
  *) exit 1 ;;
esac`
	whisperWritesJSON = `prev=""
for a in "$@"; do
  if [ "$prev" = "--output-file" ]; then out="$a"; fi
  prev="$a"
done
cat > "$out.json" <<'EOF'
{"transcription":[{"offsets":{"from":0,"to":1500},"text":"hello there"},{"offsets":{"from":1500,"to":3000},"text":"general kenobi"}]}
EOF`
)

func TestRootAllTiersFail(t *testing.T) {
	env := setupCLITestEnv(t)
	env.useTools(t, ffprobeAudioOnly, "echo broken >&2; exit 1", "exit 1")
	video := env.video(t, "talk.mp4")
	out := filepath.Join(env.baseDir, "out", "talk.srt")

	stdout, err := env.run(t, video, out)
	if !errors.Is(err, processor.ErrAllTiersFailed) {
		t.Fatalf("error = %v, want ErrAllTiersFailed", err)
	}
	if strings.TrimSpace(stdout) != "failed" {
		t.Errorf("stdout = %q, want failed", stdout)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output exists after failure: %v", err)
	}
	if _, err := os.Stat(strings.TrimSuffix(out, ".srt") + ".md"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("transcript exists after failure: %v", err)
	}

	history, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(history, "speech:audio_unavailable") {
		t.Errorf("history missing attempts:\n%s", history)
	}
}

func TestRootTranscribes(t *testing.T) {
	env := setupCLITestEnv(t)
	env.useTools(t, ffprobeAudioOnly, ffmpegWritesOutputs, whisperWritesJSON)
	video := env.video(t, "talk.mp4")
	out := filepath.Join(env.baseDir, "out", "talk.srt")

	stdout, err := env.run(t, video, out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if lines[0] != "transcribed" {
		t.Errorf("first line = %q, want transcribed", lines[0])
	}
	if !strings.Contains(stdout, "subtitles: "+out) {
		t.Errorf("stdout = %q, want subtitles path", stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "00:00:01,500 --> 00:00:03,000\ngeneral kenobi") {
		t.Errorf("subtitles = %q", data)
	}
	md, err := os.ReadFile(strings.TrimSuffix(out, ".srt") + ".md")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if !strings.Contains(string(md), "**Provenance**: transcribed") {
		t.Errorf("transcript = %s", md)
	}
}

func TestRootCopiesEmbeddedStream(t *testing.T) {
	env := setupCLITestEnv(t)
	env.useTools(t, ffprobeWithSubtitles, ffmpegWritesOutputs, "exit 1")
	video := env.video(t, "talk.mkv")
	out := filepath.Join(env.baseDir, "talk.srt")

	stdout, err := env.run(t, "--no-correct", video, out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(stdout, "embedded\n") {
		t.Errorf("stdout = %q, want embedded first", stdout)
	}
	if strings.Contains(stdout, "transcript:") {
		t.Errorf("transcript written with --no-correct: %q", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "1\n00:00:00,000 --> 00:00:01,500\nhello there\n\n" {
		t.Errorf("subtitles = %q", data)
	}
}

func TestExplicitConfigMustExist(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "history"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestCorrectWritesTranscript(t *testing.T) {
	env := setupCLITestEnv(t)
	in := filepath.Join(env.baseDir, "talk.srt")
	if err := os.WriteFile(in, []byte(sampleSRT), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(env.baseDir, "notes.md")

	stdout, err := env.run(t, "correct", in, out)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if !strings.Contains(stdout, out) {
		t.Errorf("stdout = %q, want transcript path", stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	md := string(data)
	for _, want := range []string{"# notes", "## Transcript", "hello there", "general kenobi", "**Provenance**: transcribed"} {
		if !strings.Contains(md, want) {
			t.Errorf("transcript missing %q:\n%s", want, md)
		}
	}
}

func TestCorrectSRT(t *testing.T) {
	env := setupCLITestEnv(t)
	in := filepath.Join(env.baseDir, "talk.srt")
	if err := os.WriteFile(in, []byte(sampleSRT), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(env.baseDir, "fixed.srt")

	if _, err := env.run(t, "correct", "--srt", in, out); err != nil {
		t.Fatalf("correct --srt: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "1\n00:00:00,000 --> 00:00:01,500\n") {
		t.Errorf("corrected SRT = %q", data)
	}
}

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No runs recorded") {
		t.Errorf("history output = %q", out)
	}
}

func TestRenderRuns(t *testing.T) {
	start := time.Date(2026, 2, 8, 10, 30, 0, 0, time.UTC)
	got := renderRuns([]ledger.Run{{
		ID:         "a",
		Video:      "/videos/talk.mp4",
		Provenance: "ocr",
		Attempts:   "embedded:no_subtitle_stream,ocr:ok",
		Entries:    12,
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
	}}, false)
	for _, want := range []string{"talk.mp4", "ocr", "12", "1m30s", "embedded:no_subtitle_stream,ocr:ok"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
}
