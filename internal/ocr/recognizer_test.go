package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nguyentantai21042004/caption-extract/internal/testsupport"
	"github.com/nguyentantai21042004/caption-extract/internal/tier"
	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t1280\t720\t-1\t\n" +
	"4\t1\t1\t1\t1\t0\t100\t600\t400\t40\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t100\t600\t40\t40\t96.5\t你\n" +
	"5\t1\t1\t1\t1\t2\t140\t600\t40\t40\t93.5\t好\n" +
	"5\t1\t1\t1\t1\t3\t180\t600\t80\t40\t90\tAPI\n" +
	"5\t1\t1\t1\t1\t4\t260\t600\t80\t40\t-1\t \n" +
	"5\t1\t2\t1\t1\t1\t100\t650\t80\t40\t40\tnoise\n" +
	"5\t1\t2\t1\t1\t2\t200\t650\t80\t40\t60\there\n"

func TestTesseractRecognize(t *testing.T) {
	exec := &testsupport.FakeExecutor{Handler: func(ctx context.Context, call testsupport.Call) (string, error) {
		return sampleTSV, nil
	}}
	rec, err := NewTesseract(exec, "tesseract", "chi_sim+eng", 0)()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	lines, err := rec.Recognize(context.Background(), "/tmp/frame.jpg")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	want := []Line{
		{Text: "你好 API", Confidence: 0.9333333333333332},
		{Text: "noise here", Confidence: 0.5},
	}
	approx := cmp.Comparer(func(a, b float64) bool { return a-b < 1e-9 && b-a < 1e-9 })
	if diff := cmp.Diff(want, lines, approx); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}

	call := exec.Calls("tesseract")[0]
	if call.Args[0] != "/tmp/frame.jpg" || call.Args[1] != "stdout" || call.Flag("-l") != "chi_sim+eng" || call.Last() != "tsv" {
		t.Errorf("args = %v", call.Args)
	}
}

func TestTesseractNotInstalled(t *testing.T) {
	exec := &testsupport.FakeExecutor{Missing: map[string]bool{"tesseract": true}}
	_, err := NewTesseract(exec, "tesseract", "eng", 0)()
	if !errors.Is(err, executor.ErrNotInstalled) {
		t.Errorf("load error = %v, want ErrNotInstalled", err)
	}
}

func TestTesseractFailure(t *testing.T) {
	exec := &testsupport.FakeExecutor{Handler: func(ctx context.Context, call testsupport.Call) (string, error) {
		return "", errors.New("Error in pixReadStream")
	}}
	rec, _ := NewTesseract(exec, "tesseract", "", 0)()
	if _, err := rec.Recognize(context.Background(), "x.jpg"); !errors.Is(err, tier.ErrRecognitionFailure) {
		t.Errorf("err = %v, want ErrRecognitionFailure", err)
	}
}

func TestJoinWords(t *testing.T) {
	tests := []struct {
		words []string
		want  string
	}{
		{[]string{"你", "好"}, "你好"},
		{[]string{"hello", "world"}, "hello world"},
		{[]string{"用", "Go", "写"}, "用 Go 写"},
		{[]string{"こん", "にちは"}, "こんにちは"},
	}
	for _, tt := range tests {
		if got := joinWords(tt.words); got != tt.want {
			t.Errorf("joinWords(%q) = %q, want %q", tt.words, got, tt.want)
		}
	}
}

func TestCommandRecognize(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantArgs []string
	}{
		{name: "placeholder", args: []string{"--image={frame}", "--json"}, wantArgs: []string{"--image=/f/1.jpg", "--json"}},
		{name: "appended", args: []string{"--json"}, wantArgs: []string{"--json", "/f/1.jpg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &testsupport.FakeExecutor{Handler: func(ctx context.Context, call testsupport.Call) (string, error) {
				return `[{"text":"字幕","confidence":0.91},{"text":"logo","confidence":0.42}]`, nil
			}}
			rec, err := NewCommand(exec, "rapidocr", tt.args, 0)()
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			lines, err := rec.Recognize(context.Background(), "/f/1.jpg")
			if err != nil {
				t.Fatalf("Recognize: %v", err)
			}
			if diff := cmp.Diff([]Line{{"字幕", 0.91}, {"logo", 0.42}}, lines); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantArgs, exec.Calls("rapidocr")[0].Args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCommandBadOutput(t *testing.T) {
	exec := &testsupport.FakeExecutor{Handler: func(ctx context.Context, call testsupport.Call) (string, error) {
		return "Traceback (most recent call last)", nil
	}}
	rec, _ := NewCommand(exec, "rapidocr", nil, 0)()
	_, err := rec.Recognize(context.Background(), "x.jpg")
	if !errors.Is(err, tier.ErrRecognitionFailure) || !strings.Contains(err.Error(), "decode") {
		t.Errorf("err = %v", err)
	}
}
