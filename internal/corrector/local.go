package corrector

import (
	"strings"
	"unicode/utf8"
)

const (
	// endPunct are marks after which nothing is appended.
	endPunct = "，。！？；：、,.!?;:…）)」』”\""
	// sentenceParticles end a Chinese sentence rather than a clause.
	sentenceParticles = "的么呢啊吧吗哦嘛了着过"
)

// punctuate appends a full stop after a sentence-final particle and a comma
// otherwise, unless text already ends in punctuation.
func punctuate(text string) string {
	last, _ := utf8.DecodeLastRuneInString(text)
	if text == "" || strings.ContainsRune(endPunct, last) {
		return text
	}
	if isCJK(last) {
		if strings.ContainsRune(sentenceParticles, last) {
			return text + "。"
		}
		return text + "，"
	}
	return text + ","
}

// closeParagraph turns a trailing comma into a full stop and ends unpunctuated
// text with one.
func closeParagraph(text string) string {
	switch {
	case strings.HasSuffix(text, "，"):
		return strings.TrimSuffix(text, "，") + "。"
	case strings.HasSuffix(text, ","):
		return strings.TrimSuffix(text, ",") + "."
	}
	last, _ := utf8.DecodeLastRuneInString(text)
	if text == "" || strings.ContainsRune(endPunct, last) {
		return text
	}
	if isCJK(last) {
		return text + "。"
	}
	return text + "."
}

// isFiller ignores trailing punctuation so already corrected entries are
// recognised too.
func (c *implCorrector) isFiller(text string) bool {
	return c.fillers[strings.TrimRight(text, endPunct)]
}

// joinPieces concatenates caption texts, inserting a space only between two
// non-CJK characters.
func joinPieces(pieces []string) string {
	var b strings.Builder
	for i, p := range pieces {
		if i > 0 {
			prev, _ := utf8.DecodeLastRuneInString(pieces[i-1])
			next, _ := utf8.DecodeRuneInString(p)
			if !isCJK(prev) && !isCJK(next) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(p)
	}
	return b.String()
}

// draftParagraphs groups non-filler texts into paragraphs of size entries.
func (c *implCorrector) draftParagraphs(texts []string) []string {
	var paragraphs, current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		paragraphs = append(paragraphs, closeParagraph(joinPieces(current)))
		current = nil
	}
	for _, text := range texts {
		if text == "" || c.isFiller(text) {
			continue
		}
		current = append(current, text)
		if len(current) >= c.paragraphSize {
			flush()
		}
	}
	flush()
	return paragraphs
}
