package tagpage

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/inful/mdfp"

	foundationerrors "git.home.luguber.info/inful/tagbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tagbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/tagbuilder/internal/logfields"
	"git.home.luguber.info/inful/tagbuilder/internal/tagindex"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Page is one rendered tag page.
type Page struct {
	Tag         string   `json:"tag"`
	File        string   `json:"file"`
	Fingerprint string   `json:"fingerprint"`
	Posts       []string `json:"posts"`
	Content     []byte   `json:"-"`
}

// Writer owns the tag directory.
type Writer struct {
	dir       string
	extension string
	renderer  *Renderer
	logger    *slog.Logger
}

// NewWriter returns a Writer emitting pages with extension into dir.
func NewWriter(dir, extension string, renderer *Renderer, logger *slog.Logger) *Writer {
	if extension == "" {
		extension = DefaultExtension
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, extension: extension, renderer: renderer, logger: logger}
}

// Dir returns the tag directory.
func (w *Writer) Dir() string { return w.dir }

// Plan renders a page for every tag of idx, in tag order, without touching disk.
func (w *Writer) Plan(idx *tagindex.Index) ([]Page, error) {
	pages := make([]Page, 0, idx.Len())
	for _, tag := range idx.Tags() {
		names := idx.Posts(tag)
		refs := make([]PostRef, 0, len(names))
		for _, n := range names {
			refs = append(refs, PostRef{Name: n, Title: idx.Title(n)})
		}

		content, err := w.renderer.Render(tag, refs)
		if err != nil {
			return nil, foundationerrors.BuildError("failed to render tag page").
				WithCause(err).
				WithContext("tag", tag).
				Build()
		}

		pages = append(pages, Page{
			Tag:         tag,
			File:        tag + w.extension,
			Fingerprint: Fingerprint(content),
			Posts:       names,
			Content:     content,
		})
	}
	return pages, nil
}

// Fingerprint hashes page content the way mdfp hashes documents: front
// matter and body separately.
func Fingerprint(content []byte) string {
	fm, body, had, err := frontmatter.Split(content)
	if err != nil || !had {
		return mdfp.CalculateFingerprintFromParts("", string(content))
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(fm), "\n"), string(body))
}

// Reset removes the tag directory with everything in it and recreates it empty.
func (w *Writer) Reset() error {
	if err := guardDir(w.dir); err != nil {
		return err
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to remove tag directory").
			WithContext("path", w.dir).
			Build()
	}
	if err := os.MkdirAll(w.dir, dirPerm); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to create tag directory").
			WithContext("path", w.dir).
			Build()
	}
	w.logger.Debug("Reset tag directory", logfields.TagDir(w.dir))
	return nil
}

// Write stores every page in the tag directory.
func (w *Writer) Write(pages []Page) error {
	for _, p := range pages {
		path := filepath.Join(w.dir, p.File)
		// #nosec G306 -- tag pages are public site sources.
		if err := os.WriteFile(path, p.Content, filePerm); err != nil {
			return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to write tag page").
				WithContext("path", path).
				WithContext("tag", p.Tag).
				Build()
		}
		w.logger.Debug("Wrote tag page", logfields.Tag(p.Tag), logfields.Path(path))
	}
	return nil
}

// guardDir refuses to wipe paths that can never be a dedicated tag directory.
func guardDir(dir string) error {
	clean := filepath.Clean(dir)
	if dir == "" || clean == "." || clean == ".." || clean == string(filepath.Separator) || filepath.VolumeName(clean)+string(filepath.Separator) == clean {
		return foundationerrors.ConfigError("refusing to reset tag directory").
			WithContext("path", dir).
			Build()
	}
	if abs, err := filepath.Abs(clean); err == nil {
		if home, herr := os.UserHomeDir(); herr == nil && abs == filepath.Clean(home) {
			return foundationerrors.ConfigError("refusing to reset tag directory").
				WithContext("path", dir).
				Build()
		}
	}
	return nil
}

// ErrNotDirectory is returned by Check when the tag path exists but is a file.
var ErrNotDirectory = errors.New("tag path is not a directory")

// Drift describes how the tag directory differs from the expected pages.
type Drift struct {
	Missing []string `json:"missing,omitempty"` // expected pages not on disk
	Stale   []string `json:"stale,omitempty"`   // entries on disk without a tag
	Drifted []string `json:"drifted,omitempty"` // pages whose content differs
}

// InSync reports whether no differences were found.
func (d *Drift) InSync() bool {
	return len(d.Missing) == 0 && len(d.Stale) == 0 && len(d.Drifted) == 0
}

// Check compares the tag directory against pages without modifying it.
func (w *Writer) Check(pages []Page) (*Drift, error) {
	drift := &Drift{}
	expected := make(map[string]Page, len(pages))
	for _, p := range pages {
		expected[p.File] = p
	}

	info, err := os.Stat(w.dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		for _, p := range pages {
			drift.Missing = append(drift.Missing, p.File)
		}
		return drift, nil
	case err != nil:
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "cannot inspect tag directory").
			WithContext("path", w.dir).
			Build()
	case !info.IsDir():
		return nil, foundationerrors.WrapError(ErrNotDirectory, foundationerrors.CategoryFileSystem, "cannot inspect tag directory").
			WithContext("path", w.dir).
			Build()
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "cannot list tag directory").
			WithContext("path", w.dir).
			Build()
	}

	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		name := e.Name()
		p, ok := expected[name]
		if !ok || e.IsDir() {
			drift.Stale = append(drift.Stale, name)
			continue
		}
		present[name] = true

		// #nosec G304 -- name comes from listing the tag directory.
		current, err := os.ReadFile(filepath.Join(w.dir, name))
		if err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "cannot read tag page").
				WithContext("path", filepath.Join(w.dir, name)).
				Build()
		}
		if !bytes.Equal(current, p.Content) {
			drift.Drifted = append(drift.Drifted, name)
		}
	}

	for _, p := range pages {
		if !present[p.File] {
			drift.Missing = append(drift.Missing, p.File)
		}
	}
	return drift, nil
}

// Summary renders a one-line description of the drift.
func (d *Drift) Summary() string {
	return fmt.Sprintf("%d missing, %d stale, %d drifted", len(d.Missing), len(d.Stale), len(d.Drifted))
}
