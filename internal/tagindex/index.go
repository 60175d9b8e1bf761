// Package tagindex builds the set of unique tags across all posts.
package tagindex

import (
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	foundationerrors "git.home.luguber.info/inful/tagbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tagbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/tagbuilder/internal/logfields"
	"git.home.luguber.info/inful/tagbuilder/internal/markdown"
	"git.home.luguber.info/inful/tagbuilder/internal/posts"
	"git.home.luguber.info/inful/tagbuilder/internal/tags"
	"git.home.luguber.info/inful/tagbuilder/internal/util/sets"
)

// Skip records a post or tag left out of the index.
type Skip struct {
	Post   string `json:"post"`
	Tag    string `json:"tag,omitempty"`
	Reason string `json:"reason"`
}

// Index is the union of tags over a set of posts.
type Index struct {
	tags    sets.Set[string]
	byTag   map[string][]string
	titles  map[string]string
	Scanned int
	Skipped []Skip
}

func newIndex() *Index {
	return &Index{
		tags:   sets.New[string](),
		byTag:  make(map[string][]string),
		titles: make(map[string]string),
	}
}

// Tags returns the unique tags in ascending order.
func (i *Index) Tags() []string { return sets.Sorted(i.tags) }

// Set returns a copy of the tag set.
func (i *Index) Set() sets.Set[string] { return i.tags.Clone() }

// Len returns the number of unique tags.
func (i *Index) Len() int { return i.tags.Len() }

// Equal reports whether the index holds exactly the tags of other.
func (i *Index) Equal(other sets.Set[string]) bool { return i.tags.Equal(other) }

// Has reports whether tag is in the index.
func (i *Index) Has(tag string) bool { return i.tags.Has(tag) }

// Posts returns the names of the posts carrying tag, sorted.
func (i *Index) Posts(tag string) []string { return slices.Clone(i.byTag[tag]) }

// Title returns the display title recorded for a post name.
func (i *Index) Title(post string) string { return i.titles[post] }

func (i *Index) add(tag, post string) {
	i.tags.Add(tag)
	list := i.byTag[tag]
	if n, found := slices.BinarySearch(list, post); !found {
		i.byTag[tag] = slices.Insert(list, n, post)
	}
}

// Options tune how tags are collected.
type Options struct {
	Normalize bool
	Strict    bool
	Logger    *slog.Logger
}

// Builder turns posts into an Index using an Extractor.
type Builder struct {
	extractor tags.Extractor
	opts      Options
}

// NewBuilder returns a Builder using e.
func NewBuilder(e tags.Extractor, opts Options) *Builder {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Builder{extractor: e, opts: opts}
}

// Build extracts and unions the tags of every post. In strict mode the first
// malformed post or unusable tag aborts the build; otherwise they are logged
// and recorded in Index.Skipped.
func (b *Builder) Build(all []posts.Post) (*Index, error) {
	idx := newIndex()

	for _, p := range all {
		idx.Scanned++
		idx.titles[p.Name] = titleOf(p)

		found, err := b.extractor.Extract(p.Content)
		if err != nil {
			if b.opts.Strict {
				return nil, foundationerrors.WrapError(err, foundationerrors.CategoryContent, "cannot extract tags").
					WithContext("post", p.Name).
					Build()
			}
			b.opts.Logger.Warn("Skipping post with unreadable front matter",
				logfields.Post(p.Name), logfields.Error(err))
			idx.Skipped = append(idx.Skipped, Skip{Post: p.Name, Reason: err.Error()})
			continue
		}

		if b.opts.Normalize {
			found = tags.NormalizeAll(found)
		}

		for _, tag := range found {
			if !tags.ValidFileName(tag) {
				if b.opts.Strict {
					return nil, foundationerrors.ContentError("tag cannot be used as a page name").
						WithContext("post", p.Name).
						WithContext("tag", tag).
						Build()
				}
				b.opts.Logger.Warn("Skipping tag that is not a valid file name",
					logfields.Post(p.Name), logfields.Tag(tag))
				idx.Skipped = append(idx.Skipped, Skip{Post: p.Name, Tag: tag, Reason: "invalid file name"})
				continue
			}
			idx.add(tag, p.Name)
		}

		b.opts.Logger.Debug("Scanned post", logfields.Post(p.Name), logfields.Count(len(found)))
	}

	return idx, nil
}

// titleOf prefers the front matter title, then the first heading, then the file name.
func titleOf(p posts.Post) string {
	fields, body, _, err := frontmatter.Parse(p.Content)
	if err == nil {
		if t, ok := fields["title"]; ok && t != nil {
			if s := strings.TrimSpace(fmt.Sprint(t)); s != "" {
				return s
			}
		}
	} else {
		body = p.Content
	}

	if h := markdown.FirstHeading(body); h != "" {
		return h
	}
	base := path.Base(p.Name)
	return strings.TrimSuffix(base, path.Ext(base))
}
