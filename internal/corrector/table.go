package corrector

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Table is an exact, case-sensitive, whole-token substitution table.
//
// Matching is leftmost-longest. A match that lies inside an occurrence of its
// own replacement is left alone, so "瓦纳" -> "瓦纳卡" never turns "瓦纳卡"
// into "瓦纳卡卡" while "卡蒂" in "瓦纳卡蒂" is still corrected. Apply repeats
// until the text stops changing, which makes Apply(Apply(s)) == Apply(s).
// Chains such as A -> B, B -> C resolve to C; cycles are rejected.
type Table struct {
	replace map[string]string
	keys    []string
	values  []string
}

type tableFile struct {
	Corrections map[string]string `yaml:"corrections"`
}

// NewTable builds a table from wrong -> right pairs. Keys and values are NFC
// normalized and identity pairs are dropped.
func NewTable(pairs map[string]string) (*Table, error) {
	t := &Table{replace: make(map[string]string, len(pairs))}
	seen := make(map[string]bool)
	for k, v := range pairs {
		k, v = norm.NFC.String(k), norm.NFC.String(v)
		if strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("empty key for replacement %q", v)
		}
		if k == v {
			continue
		}
		if prev, ok := t.replace[k]; ok && prev != v {
			return nil, fmt.Errorf("key %q maps to both %q and %q after normalization", k, prev, v)
		}
		t.replace[k] = v
		t.keys = append(t.keys, k)
		if v != "" && !seen[v] {
			seen[v] = true
			t.values = append(t.values, v)
		}
	}
	if err := t.checkCycles(); err != nil {
		return nil, err
	}
	sort.Slice(t.keys, func(i, j int) bool {
		if len(t.keys[i]) != len(t.keys[j]) {
			return len(t.keys[i]) > len(t.keys[j])
		}
		return t.keys[i] < t.keys[j]
	})
	sort.Strings(t.values)
	return t, nil
}

// LoadTable reads a YAML file with a top-level "corrections" mapping.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read correction table: %w", err)
	}
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse correction table: %w", err)
	}
	t, err := NewTable(f.Corrections)
	if err != nil {
		return nil, fmt.Errorf("correction table %s: %w", path, err)
	}
	return t, nil
}

// Len returns the number of active substitutions.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Values returns the distinct replacement terms, sorted.
func (t *Table) Values() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.values...)
}

// Apply returns s with every substitution applied and the number of
// replacements made.
func (t *Table) Apply(s string) (string, int) {
	s = norm.NFC.String(s)
	if t.Len() == 0 {
		return s, 0
	}
	total := 0
	// Each pass settles at least one link of any chain.
	for range t.Len() + 1 {
		out, n := t.applyOnce(s)
		if n == 0 || out == s {
			return out, total
		}
		total += n
		s = out
	}
	return s, total
}

func (t *Table) applyOnce(s string) (string, int) {
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for i := 0; i < len(s); {
		if key, ok := t.matchAt(s, i); ok {
			b.WriteString(t.replace[key])
			i += len(key)
			n++
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String(), n
}

func (t *Table) matchAt(s string, i int) (string, bool) {
	for _, key := range t.keys {
		end := i + len(key)
		if !strings.HasPrefix(s[i:], key) || !atBoundary(s, i, end) {
			continue
		}
		if t.insideOwnValue(s, i, key) {
			continue
		}
		return key, true
	}
	return "", false
}

// insideOwnValue reports whether the key found at i is part of an occurrence
// of the key's replacement.
func (t *Table) insideOwnValue(s string, i int, key string) bool {
	v := t.replace[key]
	for o := strings.Index(v, key); o >= 0; {
		if start := i - o; start >= 0 && strings.HasPrefix(s[start:], v) {
			return true
		}
		next := strings.Index(v[o+1:], key)
		if next < 0 {
			break
		}
		o += next + 1
	}
	return false
}

// checkCycles rejects tables whose replacements lead back to a key already
// visited, which would never settle.
func (t *Table) checkCycles() error {
	for _, start := range t.keys {
		seen := map[string]bool{start: true}
		for cur := t.replace[start]; ; {
			next, ok := t.replace[cur]
			if !ok {
				break
			}
			if seen[cur] {
				return fmt.Errorf("replacements starting at %q form a cycle", start)
			}
			seen[cur] = true
			cur = next
		}
	}
	return nil
}

// atBoundary reports whether s[start:end] is a whole token. Only key edges
// that are alphanumeric in a space-delimited script need a non-alphanumeric
// neighbour; CJK text has no word separators.
func atBoundary(s string, start, end int) bool {
	first, _ := utf8.DecodeRuneInString(s[start:end])
	if isWordRune(first) && start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(prev) {
			return false
		}
	}
	last, _ := utf8.DecodeLastRuneInString(s[start:end])
	if isWordRune(last) && end < len(s) {
		next, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(next) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return (unicode.IsLetter(r) || unicode.IsDigit(r)) && !isCJK(r)
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) ||
		(r >= 0x3000 && r <= 0x303f) || (r >= 0xff00 && r <= 0xffef)
}
