// Package tagpage renders and writes the per-tag stub pages.
package tagpage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// DefaultTemplate produces the stub page a Jekyll `tagpage` layout expects.
// It deliberately ends without a trailing newline.
const DefaultTemplate = "---\nlayout: {{ .Layout }}\ntag: {{ .Tag }}\nrobots: {{ .Robots }}\n---"

// Defaults for the stub front matter.
const (
	DefaultLayout    = "tagpage"
	DefaultRobots    = "noindex"
	DefaultExtension = ".md"
)

// PostRef is a post listed on a tag page.
type PostRef struct {
	Name  string
	Title string
}

// PageData is passed to the page template.
type PageData struct {
	Tag    string
	Layout string
	Robots string
	Posts  []PostRef
}

// RenderOptions configures a Renderer.
type RenderOptions struct {
	Layout       string
	Robots       string
	TemplatePath string // optional text/template file replacing DefaultTemplate
}

// Renderer turns a tag into page content.
type Renderer struct {
	tmpl   *template.Template
	layout string
	robots string
}

// NewRenderer parses the configured template.
func NewRenderer(opts RenderOptions) (*Renderer, error) {
	source := DefaultTemplate
	name := "tagpage"
	if opts.TemplatePath != "" {
		// #nosec G304 -- template path is operator supplied configuration.
		data, err := os.ReadFile(opts.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("read page template: %w", err)
		}
		source = string(data)
		name = filepath.Base(opts.TemplatePath)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse page template %s: %w", name, err)
	}

	r := &Renderer{tmpl: tmpl, layout: opts.Layout, robots: opts.Robots}
	if r.layout == "" {
		r.layout = DefaultLayout
	}
	if r.robots == "" {
		r.robots = DefaultRobots
	}
	return r, nil
}

// Render executes the template for tag.
func (r *Renderer) Render(tag string, posts []PostRef) ([]byte, error) {
	var buf bytes.Buffer
	data := PageData{Tag: tag, Layout: r.layout, Robots: r.robots, Posts: posts}
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render page for tag %q: %w", tag, err)
	}
	return buf.Bytes(), nil
}
