package tags

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var invalidTagRunes = regexp.MustCompile(`[^\p{L}\p{N}\-_]`)

// Normalize folds a tag to its canonical form: NFC, lower case, spaces to
// underscores, and only letters, digits, hyphens and underscores kept.
func Normalize(tag string) string {
	result := norm.NFC.String(tag)
	result = cases.Lower(language.Und).String(result)
	result = strings.ReplaceAll(result, " ", "_")
	return invalidTagRunes.ReplaceAllString(result, "")
}

// NormalizeAll normalizes every tag and drops those that become empty.
func NormalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if n := Normalize(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// ValidFileName reports whether tag can be used as a page file name inside
// the tag directory without escaping it.
func ValidFileName(tag string) bool {
	if tag == "" || tag == "." || tag == ".." {
		return false
	}
	if strings.ContainsAny(tag, `/\`+"\x00") {
		return false
	}
	return filepath.Base(tag) == tag
}
