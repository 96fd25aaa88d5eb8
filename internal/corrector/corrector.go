package corrector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/caption-extract/internal/caption"
	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

// Correct substitutes known errors entry by entry, drafts paragraphs and, when
// a reviser is configured, lets it polish the draft. A reviser failure keeps
// the draft.
func (c *implCorrector) Correct(ctx context.Context, track caption.Track) (Transcript, error) {
	if track.Provenance == caption.ProvenanceFailed || track.Provenance == "" {
		return Transcript{}, ErrNoTrack
	}

	corrected, subs := c.correctEntries(track.Entries)
	texts := make([]string, 0, len(corrected))
	for _, e := range corrected {
		texts = append(texts, e.Text)
	}

	t := Transcript{
		CorrectedAt:   c.now(),
		Provenance:    track.Provenance,
		Paragraphs:    c.draftParagraphs(texts),
		Reviser:       "local",
		Corrected:     caption.Track{Provenance: track.Provenance, Entries: corrected},
		Original:      track,
		Substitutions: subs,
		Quality:       caption.Assess(track.Entries),
	}
	c.logger.Info(ctx, "Corrected %d entries (%d substitutions) into %d paragraphs",
		len(corrected), subs, len(t.Paragraphs))

	if c.reviser == nil || len(t.Paragraphs) == 0 {
		return t, nil
	}

	revised, err := c.revise(ctx, t.Body())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Transcript{}, err
		}
		c.logger.Warn(ctx, "Reviser %s failed, keeping local draft: %v", c.reviser.Name(), err)
		return t, nil
	}
	t.Paragraphs = revised
	t.Reviser = c.reviser.Name()
	return t, nil
}

func (c *implCorrector) revise(ctx context.Context, draft string) ([]string, error) {
	ctx, cancel := executor.WithTimeout(ctx, c.reviseTimeout)
	defer cancel()

	out, err := c.reviser.Revise(ctx, draft)
	if err != nil {
		return nil, err
	}

	var paragraphs []string
	for _, p := range splitParagraphs(out) {
		p, _ = c.table.Apply(p)
		paragraphs = append(paragraphs, p)
	}
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("reviser %s returned no text", c.reviser.Name())
	}
	return paragraphs, nil
}

// correctEntries applies the table and end punctuation to every entry. The
// input is not modified.
func (c *implCorrector) correctEntries(entries []caption.Entry) ([]caption.Entry, int) {
	out := make([]caption.Entry, len(entries))
	total := 0
	for i, e := range entries {
		text, n := c.table.Apply(strings.TrimSpace(e.Text))
		total += n
		e.Text = punctuate(text)
		out[i] = e
	}
	return out, total
}

// CorrectSRT rewrites every entry of in through the table and punctuation
// rules and writes the result to out.
func (c *implCorrector) CorrectSRT(ctx context.Context, in, out string) (int, error) {
	entries, err := caption.ReadFile(in)
	if err != nil {
		if !errors.Is(err, caption.ErrMalformed) {
			return 0, err
		}
		c.logger.Warn(ctx, "Skipping unreadable blocks: %v", err)
	}

	corrected, subs := c.correctEntries(entries)
	changed := 0
	for i := range corrected {
		if corrected[i].Text != strings.TrimSpace(entries[i].Text) {
			changed++
		}
	}

	if err := caption.WriteFile(out, corrected); err != nil {
		return 0, fmt.Errorf("write corrected subtitle: %w", err)
	}
	c.logger.Info(ctx, "Corrected SRT: %d of %d entries changed (%d substitutions): %s",
		changed, len(entries), subs, out)
	return changed, nil
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}
