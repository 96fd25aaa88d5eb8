package media

import (
	"strings"
	"unicode/utf8"
)

const maxFilenameRunes = 100

var illegalFilenameChars = strings.NewReplacer(
	"<", "", ">", "", ":", "", "\"", "", "/", "", "\\", "", "|", "", "?", "", "*", "",
)

// SanitizeFilename strips characters that are illegal in file names on common
// filesystems and caps the length. It may return "".
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(illegalFilenameChars.Replace(name))
	if utf8.RuneCountInString(name) > maxFilenameRunes {
		name = strings.TrimSpace(string([]rune(name)[:maxFilenameRunes]))
	}
	return name
}
