package convert

import (
	"regexp"
	"strings"
	"unicode"
)

// pageSuffixPattern matches trailing page markers appended to keys when the
// source document spanned multiple pages: "_page_1", " page2", "_Page 3".
var pageSuffixPattern = regexp.MustCompile(`(?i)[_ ]page[_ ]*\d+$`)

// StripPageSuffix removes a trailing page marker from a raw key. Keys
// without a marker pass through unchanged.
func StripPageSuffix(key string) string {
	return pageSuffixPattern.ReplaceAllString(key, "")
}

// FormatLabel turns a raw document key into a display label: the page
// suffix is stripped, underscores become spaces, and each word is
// capitalized. Formatting is idempotent, so already-formatted labels pass
// through unchanged. The raw key must be retained by the caller; edits are
// written back under it, never under the label.
func FormatLabel(rawKey string) string {
	s := StripPageSuffix(rawKey)
	s = strings.ReplaceAll(s, "_", " ")
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = capitalize(word)
	}
	return strings.Join(words, " ")
}

// NormalizeLabel reduces a key or label to a canonical comparison form used
// to match fields across conversions (lowercased, page suffix and
// separators removed)
func NormalizeLabel(s string) string {
	s = StripPageSuffix(s)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Slug converts a section or field name into a storage key: lowercase with
// runs of non-alphanumerics collapsed to single underscores
func Slug(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
