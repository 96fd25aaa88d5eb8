package corrector

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
)

func sampleTranscript() Transcript {
	track := caption.NewTrack(caption.ProvenanceOCR, []caption.Entry{
		{Start: time.Second, End: 3 * time.Second, Text: "第一行\n第二行"},
		{Start: 3 * time.Second, End: 5 * time.Second, Text: "**重点**"},
	})
	return Transcript{
		Title:       "新西兰之旅",
		Source:      "/videos/nz.mp4",
		CorrectedAt: fixedNow,
		Provenance:  caption.ProvenanceOCR,
		Paragraphs:  []string{"第一段。", "第二段。"},
		Reviser:     "local",
		Original:    track,
		Quality:     caption.Assess(track.Entries),
	}
}

func TestMarkdown(t *testing.T) {
	md := string(Markdown(sampleTranscript()))

	for _, want := range []string{
		"# 新西兰之旅\n\n",
		"**Source**: [video link]\n",
		"**File**: /videos/nz.mp4\n",
		"**Corrected at**: 2026-02-08 10:30\n",
		"**Provenance**: ocr\n",
		"## Transcript\n\n第一段。\n\n第二段。\n\n",
		"## Appendix: timed captions\n\n",
		"- 00:00:01,000 --> 00:00:03,000 第一行 / 第二行\n",
		"- 00:00:03,000 --> 00:00:05,000 **重点**\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Index(md, "## Transcript") > strings.Index(md, "## Appendix") {
		t.Error("appendix rendered before body")
	}
}

func TestWriteDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "nz.docx")
	if err := WriteDocx(sampleTranscript(), path); err != nil {
		t.Fatalf("WriteDocx: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("docx is not a zip archive")
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("unexpected files next to docx: %v", entries)
	}
}
