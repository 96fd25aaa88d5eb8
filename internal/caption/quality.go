package caption

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Quality thresholds. A report breaching any of them lists an issue.
const (
	minQualityCount    = 10
	maxRepetitionRate  = 0.7
	maxConsecutiveSame = 10
	minAverageLength   = 2.0
	maxEmptyRatio      = 0.5
	shortTextRuneCount = 2
)

// Quality summarizes how plausible a track looks as a transcript.
type Quality struct {
	Count              int
	AverageLength      float64
	RepetitionRate     float64
	MaxConsecutiveSame int
	EmptyCount         int
	Issues             []string
}

// OK reports whether no issue was found.
func (q Quality) OK() bool {
	return len(q.Issues) == 0
}

// String renders the issues, or "ok".
func (q Quality) String() string {
	if q.OK() {
		return "ok"
	}
	return strings.Join(q.Issues, ", ")
}

// Assess computes a Quality report. It never changes the entries; callers use
// it for reporting only.
func Assess(entries []Entry) Quality {
	q := Quality{Count: len(entries)}
	if q.Count == 0 {
		q.Issues = []string{"no captions"}
		return q
	}

	total := 0
	unique := make(map[string]struct{})
	meaningful := 0
	run := 1
	q.MaxConsecutiveSame = 1
	for i, e := range entries {
		text := strings.TrimSpace(e.Text)
		n := utf8.RuneCountInString(text)
		total += n
		if n < shortTextRuneCount {
			q.EmptyCount++
		} else {
			meaningful++
			unique[text] = struct{}{}
		}
		if i > 0 && n >= shortTextRuneCount && text == strings.TrimSpace(entries[i-1].Text) {
			run++
			if run > q.MaxConsecutiveSame {
				q.MaxConsecutiveSame = run
			}
		} else {
			run = 1
		}
	}
	q.AverageLength = float64(total) / float64(q.Count)
	if meaningful > 0 {
		q.RepetitionRate = 1 - float64(len(unique))/float64(meaningful)
	}

	if q.Count < minQualityCount {
		q.Issues = append(q.Issues, fmt.Sprintf("too few captions (%d)", q.Count))
	}
	if q.RepetitionRate > maxRepetitionRate {
		q.Issues = append(q.Issues, fmt.Sprintf("repetition rate %.1f%%", q.RepetitionRate*100))
	}
	if q.MaxConsecutiveSame > maxConsecutiveSame {
		q.Issues = append(q.Issues, fmt.Sprintf("%d consecutive repeats", q.MaxConsecutiveSame))
	}
	if q.AverageLength < minAverageLength {
		q.Issues = append(q.Issues, fmt.Sprintf("average length %.1f", q.AverageLength))
	}
	if float64(q.EmptyCount) > float64(q.Count)*maxEmptyRatio {
		q.Issues = append(q.Issues, fmt.Sprintf("near-empty captions %d/%d", q.EmptyCount, q.Count))
	}
	return q
}
