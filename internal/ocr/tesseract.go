package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/nguyentantai21042004/caption-extract/internal/tier"
	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

// tesseract TSV columns.
const (
	tsvLevel = iota
	tsvPage
	tsvBlock
	tsvPar
	tsvLine
	tsvWord
	tsvLeft
	tsvTop
	tsvWidth
	tsvHeight
	tsvConf
	tsvText
	tsvColumns
)

const tsvWordLevel = "5"

type tesseract struct {
	executor  executor.Executor
	binary    string
	languages string
	timeout   time.Duration
}

// NewTesseract returns a Factory for the tesseract CLI. Loading fails when
// the binary is not on PATH.
func NewTesseract(exec executor.Executor, binary, languages string, timeout time.Duration) Factory {
	return func() (Recognizer, error) {
		path, err := exec.LookPath(binary)
		if err != nil {
			return nil, err
		}
		return &tesseract{executor: exec, binary: path, languages: languages, timeout: timeout}, nil
	}
}

// Recognize runs tesseract in TSV mode and folds word rows into lines. A
// line's confidence is the mean of its word confidences.
func (t *tesseract) Recognize(ctx context.Context, imagePath string) ([]Line, error) {
	ctx, cancel := executor.WithTimeout(ctx, t.timeout)
	defer cancel()

	args := []string{imagePath, "stdout"}
	if t.languages != "" {
		args = append(args, "-l", t.languages)
	}
	args = append(args, "--psm", "11", "tsv")

	out, err := t.executor.Execute(ctx, t.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: tesseract: %w", tier.ErrRecognitionFailure, err)
	}
	return parseTSV(out)
}

type lineKey struct {
	page, block, par, line string
}

type lineAcc struct {
	words []string
	conf  float64
}

func parseTSV(out string) ([]Line, error) {
	var order []lineKey
	acc := make(map[lineKey]*lineAcc)

	rows := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
	for i, row := range rows {
		if i == 0 && strings.HasPrefix(row, "level") {
			continue
		}
		if strings.TrimSpace(row) == "" {
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < tsvColumns {
			if len(cols) == tsvColumns-1 {
				// Word rows with empty text drop the trailing tab.
				continue
			}
			return nil, fmt.Errorf("%w: tsv row %d has %d columns", tier.ErrRecognitionFailure, i+1, len(cols))
		}
		if cols[tsvLevel] != tsvWordLevel {
			continue
		}
		text := strings.TrimSpace(strings.Join(cols[tsvText:], "\t"))
		conf, err := strconv.ParseFloat(cols[tsvConf], 64)
		if err != nil || text == "" || conf < 0 {
			continue
		}

		key := lineKey{cols[tsvPage], cols[tsvBlock], cols[tsvPar], cols[tsvLine]}
		a, ok := acc[key]
		if !ok {
			a = &lineAcc{}
			acc[key] = a
			order = append(order, key)
		}
		a.words = append(a.words, text)
		a.conf += conf
	}

	lines := make([]Line, 0, len(order))
	for _, key := range order {
		a := acc[key]
		lines = append(lines, Line{
			Text:       joinWords(a.words),
			Confidence: a.conf / float64(len(a.words)) / 100,
		})
	}
	return lines, nil
}

// joinWords separates words with a space except between two CJK characters,
// which tesseract reports as separate words.
func joinWords(words []string) string {
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			prev, _ := utf8.DecodeLastRuneInString(words[i-1])
			next, _ := utf8.DecodeRuneInString(w)
			if !(isCJK(prev) && isCJK(next)) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(w)
	}
	return b.String()
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r)
}
