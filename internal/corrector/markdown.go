package corrector

import (
	"bytes"
	"fmt"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
)

// sourcePlaceholder stands in for the video URL, which is not known here.
const sourcePlaceholder = "[video link]"

// Markdown renders the transcript: header, corrected body and an appendix
// with the original timed captions.
func Markdown(t Transcript) []byte {
	var b bytes.Buffer

	title := t.Title
	if title == "" {
		title = "Transcript"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**Source**: %s\n", sourcePlaceholder)
	if t.Source != "" {
		fmt.Fprintf(&b, "**File**: %s\n", t.Source)
	}
	fmt.Fprintf(&b, "**Corrected at**: %s\n", t.CorrectedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "**Provenance**: %s\n", t.Provenance)
	fmt.Fprintf(&b, "**Reviser**: %s\n", t.Reviser)
	fmt.Fprintf(&b, "**Quality**: %s\n\n", t.Quality)

	b.WriteString("---\n\n## Transcript\n\n")
	for _, p := range t.Paragraphs {
		b.WriteString(p)
		b.WriteString("\n\n")
	}

	b.WriteString("---\n\n## Appendix: timed captions\n\n")
	for _, e := range t.Original.Entries {
		fmt.Fprintf(&b, "- %s --> %s %s\n",
			caption.FormatTimestamp(e.Start), caption.FormatTimestamp(e.End), oneLine(e.Text))
	}
	return b.Bytes()
}

func oneLine(s string) string {
	return string(bytes.ReplaceAll([]byte(s), []byte("\n"), []byte(" / ")))
}
