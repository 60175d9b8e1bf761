// Package tags extracts tag names from post content.
//
// Two extractors are provided. RegexExtractor reproduces the classic
// "tags:" line scan used by Jekyll tag page generators: the first `tags:`
// line inside a `---` fenced block is split on whitespace, so list syntax is
// taken literally. YAMLExtractor decodes the front matter and understands
// both the whitespace separated string form and YAML sequences.
package tags
