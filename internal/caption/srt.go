package caption

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format renders entries as SRT. Blocks are numbered by position and each is
// terminated by a blank line.
func Format(entries []Entry) []byte {
	var buf bytes.Buffer
	for i, e := range entries {
		buf.WriteString(strconv.Itoa(i + 1))
		buf.WriteString("\n")
		buf.WriteString(FormatTimestamp(e.Start))
		buf.WriteString(" --> ")
		buf.WriteString(FormatTimestamp(e.End))
		buf.WriteString("\n")
		buf.WriteString(cleanText(e.Text))
		buf.WriteString("\n\n")
	}
	return buf.Bytes()
}

// Parse decodes SRT strictly: any malformed block is an error.
func Parse(data []byte) ([]Entry, error) {
	return parse(data, false)
}

// ParseLenient decodes SRT, skipping blocks it cannot understand.
func ParseLenient(data []byte) []Entry {
	entries, _ := parse(data, true)
	return entries
}

// FormatTimestamp renders d as HH:MM:SS,mmm, truncating below a millisecond.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	d -= time.Duration(h) * time.Hour
	m := int(d / time.Minute)
	d -= time.Duration(m) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	ms := int(d / time.Millisecond)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// ParseTimestamp reads HH:MM:SS,mmm. A '.' millisecond separator is accepted.
func ParseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	s = strings.Replace(s, ".", ",", 1)
	hmsMillis := strings.Split(s, ",")
	if len(hmsMillis) != 2 {
		return 0, errors.New("missing millis")
	}
	hms := strings.Split(hmsMillis[0], ":")
	if len(hms) != 3 {
		return 0, errors.New("invalid h:m:s")
	}
	var parts [4]int
	for i, field := range append(hms, hmsMillis[1]) {
		v, err := strconv.Atoi(field)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid field %q", field)
		}
		parts[i] = v
	}
	if parts[1] > 59 || parts[2] > 59 || parts[3] > 999 {
		return 0, fmt.Errorf("timestamp %q out of range", s)
	}
	return time.Duration(parts[0])*time.Hour +
		time.Duration(parts[1])*time.Minute +
		time.Duration(parts[2])*time.Second +
		time.Duration(parts[3])*time.Millisecond, nil
}

func parse(data []byte, lenient bool) ([]Entry, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var entries []Entry
	for n, block := range splitBlocks(string(data)) {
		entry, err := parseBlock(block)
		if err != nil {
			if lenient {
				continue
			}
			return nil, fmt.Errorf("block %d: %w", n+1, err)
		}
		entries = append(entries, entry)
	}
	for i := range entries {
		entries[i].Index = i + 1
	}
	return entries, nil
}

func splitBlocks(s string) [][]string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var blocks [][]string
	var current []string
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, current)
			current = nil
		}
	}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

func parseBlock(lines []string) (Entry, error) {
	// Some writers omit the counter line.
	if !strings.Contains(lines[0], "-->") {
		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil {
			return Entry{}, fmt.Errorf("invalid index line %q", lines[0])
		}
		lines = lines[1:]
	}
	if len(lines) < 2 {
		return Entry{}, errors.New("block too short")
	}
	parts := strings.Split(lines[0], "-->")
	if len(parts) != 2 {
		return Entry{}, errors.New("invalid timing separator")
	}
	start, err := ParseTimestamp(parts[0])
	if err != nil {
		return Entry{}, fmt.Errorf("start time: %w", err)
	}
	// Position hints may follow the end timestamp.
	endField := strings.Fields(parts[1])
	if len(endField) == 0 {
		return Entry{}, errors.New("missing end time")
	}
	end, err := ParseTimestamp(endField[0])
	if err != nil {
		return Entry{}, fmt.Errorf("end time: %w", err)
	}
	return Entry{
		Start: start,
		End:   end,
		Text:  strings.Join(lines[1:], "\n"),
	}, nil
}

// cleanText keeps multi-line captions but removes blank lines, which would
// otherwise terminate the block early.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimRight(l, " \t"); strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
