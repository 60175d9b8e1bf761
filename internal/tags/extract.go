package tags

import (
	"errors"
	"fmt"
	"strings"
)

// Extractor kinds accepted by NewExtractor.
const (
	KindRegex = "regex"
	KindYAML  = "yaml"
)

// DefaultField is the front matter key holding a post's tags.
const DefaultField = "tags"

// ErrMalformedFrontmatter is returned when a post's front matter cannot be decoded.
var ErrMalformedFrontmatter = errors.New("malformed front matter")

// Extractor returns the tags declared by a single post.
type Extractor interface {
	Extract(content []byte) ([]string, error)
	Kind() string
}

// NewExtractor builds the extractor for kind, reading tags from field.
func NewExtractor(kind, field string) (Extractor, error) {
	if field == "" {
		field = DefaultField
	}
	switch strings.ToLower(kind) {
	case "", KindRegex:
		return NewRegexExtractor(field), nil
	case KindYAML:
		return &YAMLExtractor{Field: field}, nil
	default:
		return nil, fmt.Errorf("unknown extractor %q (expected %s or %s)", kind, KindRegex, KindYAML)
	}
}
