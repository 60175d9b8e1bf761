package tags

import (
	"regexp"
	"strings"
	"unicode"
)

// RegexExtractor finds the first `<field>:` line between `---` fences and
// splits the rest of that line on whitespace.
type RegexExtractor struct {
	field   string
	pattern *regexp.Regexp
}

// NewRegexExtractor compiles the scan pattern for field.
func NewRegexExtractor(field string) *RegexExtractor {
	if field == "" {
		field = DefaultField
	}
	return &RegexExtractor{
		field:   field,
		pattern: regexp.MustCompile(`---[\s\S]*?` + regexp.QuoteMeta(field) + `:(.*)[\s\S]*?---`),
	}
}

// Kind returns KindRegex.
func (e *RegexExtractor) Kind() string { return KindRegex }

// Extract never fails; content without a match yields no tags.
func (e *RegexExtractor) Extract(content []byte) ([]string, error) {
	m := e.pattern.FindSubmatch(content)
	if m == nil {
		return nil, nil
	}
	return strings.FieldsFunc(string(m[1]), isTagSeparator), nil
}

// isTagSeparator treats the ASCII information separators as whitespace too,
// the way Python's str.split does for Jekyll tag lines.
func isTagSeparator(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
