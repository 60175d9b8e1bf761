package tags

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/tagbuilder/internal/frontmatter"
)

// YAMLExtractor decodes the front matter block and reads Field from it.
type YAMLExtractor struct {
	Field string
}

// Kind returns KindYAML.
func (e *YAMLExtractor) Kind() string { return KindYAML }

// Extract returns the tags under Field. A string value is split on
// whitespace; a sequence contributes one tag per scalar item.
func (e *YAMLExtractor) Extract(content []byte) ([]string, error) {
	fields, _, had, err := frontmatter.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFrontmatter, err)
	}
	if !had {
		return nil, nil
	}

	field := e.Field
	if field == "" {
		field = DefaultField
	}
	return stringsFrom(fields[field]), nil
}

// stringsFrom converts the YAML shapes a tag field may take into a flat list.
func stringsFrom(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return strings.Fields(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case string:
				if t := strings.TrimSpace(s); t != "" {
					out = append(out, t)
				}
			case int, int64, float64, bool:
				out = append(out, fmt.Sprint(s))
			}
		}
		return out
	case int, int64, float64, bool:
		return []string{fmt.Sprint(v)}
	default:
		return nil
	}
}
