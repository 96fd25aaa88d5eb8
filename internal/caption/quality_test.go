package caption

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func entriesFrom(texts ...string) []Entry {
	out := make([]Entry, len(texts))
	for i, text := range texts {
		out[i] = Entry{Index: i + 1, Start: time.Duration(i) * time.Second, End: time.Duration(i+1) * time.Second, Text: text}
	}
	return out
}

func TestAssessHealthyTrack(t *testing.T) {
	texts := make([]string, 12)
	for i := range texts {
		texts[i] = fmt.Sprintf("caption number %d", i)
	}
	q := Assess(entriesFrom(texts...))
	if !q.OK() {
		t.Errorf("Assess() issues = %v", q.Issues)
	}
	if q.String() != "ok" {
		t.Errorf("String() = %q", q.String())
	}
}

func TestAssessFindsIssues(t *testing.T) {
	texts := make([]string, 0, 14)
	for i := 0; i < 12; i++ {
		texts = append(texts, "same line")
	}
	texts = append(texts, "a", "")

	q := Assess(entriesFrom(texts...))
	if q.MaxConsecutiveSame != 12 {
		t.Errorf("MaxConsecutiveSame = %d, want 12", q.MaxConsecutiveSame)
	}
	if q.EmptyCount != 2 {
		t.Errorf("EmptyCount = %d, want 2", q.EmptyCount)
	}
	if q.OK() {
		t.Fatal("Assess() should report issues")
	}
	joined := q.String()
	for _, want := range []string{"repetition rate", "consecutive repeats"} {
		if !strings.Contains(joined, want) {
			t.Errorf("issues %q missing %q", joined, want)
		}
	}
}

func TestAssessEmpty(t *testing.T) {
	q := Assess(nil)
	if q.OK() || q.Issues[0] != "no captions" {
		t.Errorf("Assess(nil) = %+v", q)
	}
}
