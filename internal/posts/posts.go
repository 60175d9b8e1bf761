// Package posts discovers and reads blog post sources.
package posts

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	foundationerrors "git.home.luguber.info/inful/tagbuilder/internal/foundation/errors"
)

// DefaultExtensions are the file suffixes treated as posts.
var DefaultExtensions = []string{".md", ".markdown"}

// Post is a single source file from the posts directory.
type Post struct {
	Path    string // Path on disk
	Name    string // Path relative to the posts directory, slash separated
	Content []byte
}

// Options controls discovery.
type Options struct {
	Extensions []string
	Recursive  bool
}

// HasExtension reports whether name ends with one of exts. The comparison is
// case-sensitive.
func HasExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Discover returns the post files in dir sorted by name. Directory entries are
// never returned, even when their name carries a post extension.
func Discover(dir string, opts Options) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "posts directory not readable").
			WithContext("path", dir).
			Build()
	}
	if !info.IsDir() {
		return nil, foundationerrors.FileSystemError("posts path is not a directory").
			WithContext("path", dir).
			Build()
	}

	var files []string
	if opts.Recursive {
		files, err = discoverRecursive(dir, opts.Extensions)
	} else {
		files, err = discoverFlat(dir, opts.Extensions)
	}
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to list posts").
			WithContext("path", dir).
			Build()
	}

	slices.Sort(files)
	return files, nil
}

func discoverFlat(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !HasExtension(entry.Name(), exts) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !isRegularFile(path, entry) {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

func discoverRecursive(dir string, exts []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden directories and files
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() || !HasExtension(d.Name(), exts) {
			return nil
		}
		if isRegularFile(path, d) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// isRegularFile follows symlinks so that linked posts are picked up.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Read loads the post at path; name is reported relative to root.
func Read(root, path string) (Post, error) {
	// #nosec G304 -- path comes from Discover under the configured posts directory.
	content, err := os.ReadFile(path)
	if err != nil {
		return Post{}, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to read post").
			WithContext("path", path).
			Build()
	}

	name, relErr := filepath.Rel(root, path)
	if relErr != nil {
		name = filepath.Base(path)
	}
	return Post{Path: path, Name: filepath.ToSlash(name), Content: content}, nil
}

// Load discovers and reads every post under dir.
func Load(dir string, opts Options) ([]Post, error) {
	files, err := Discover(dir, opts)
	if err != nil {
		return nil, err
	}

	out := make([]Post, 0, len(files))
	for _, f := range files {
		p, err := Read(dir, f)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
