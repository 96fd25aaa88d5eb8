package caption

import (
	"sort"
	"strings"
	"time"
)

// Provenance names the tier that produced a track.
type Provenance string

const (
	ProvenanceEmbedded    Provenance = "embedded"
	ProvenanceOCR         Provenance = "ocr"
	ProvenanceTranscribed Provenance = "transcribed"
	ProvenanceFailed      Provenance = "failed"
)

// Entry is one timed caption.
type Entry struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Track is an ordered caption sequence tagged with the tier that produced it.
type Track struct {
	Provenance Provenance
	Entries    []Entry
}

// NewTrack normalizes entries and returns an immutable-by-convention track.
func NewTrack(p Provenance, entries []Entry) Track {
	return Track{Provenance: p, Entries: Normalize(entries)}
}

// Len returns the number of entries.
func (t Track) Len() int {
	return len(t.Entries)
}

// Normalize drops entries with empty text or a non-positive span, orders the
// rest by start time and renumbers them from 1. The input is not modified.
func Normalize(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		e.Text = strings.TrimSpace(e.Text)
		if e.Text == "" || e.End <= e.Start || e.Start < 0 {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	for i := range out {
		out[i].Index = i + 1
	}
	return out
}
