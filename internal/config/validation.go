package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	foundationerrors "git.home.luguber.info/inful/tagbuilder/internal/foundation/errors"
)

// Validate checks a defaulted configuration for values that cannot work.
func Validate(c *Config) error {
	if err := validatePaths(c); err != nil {
		return err
	}
	if strings.ContainsAny(c.Field, ":\n") {
		return invalid("field must be a plain front matter key", "field", c.Field)
	}
	if strings.ContainsAny(c.Page.Extension, `/\`) {
		return invalid("page.extension must not contain path separators", "page.extension", c.Page.Extension)
	}
	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil || d <= 0 {
		return invalid("watch.debounce must be a positive duration", "watch.debounce", c.Watch.Debounce)
	}
	if c.Watch.Schedule != "" {
		if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
			return foundationerrors.WrapError(err, foundationerrors.CategoryValidation, "watch.schedule is not a valid cron expression").
				WithContext("watch.schedule", c.Watch.Schedule).
				Build()
		}
	}
	return nil
}

// validatePaths guards against configurations where wiping the tag directory
// would destroy posts or the working directory.
func validatePaths(c *Config) error {
	tagDir := filepath.Clean(c.TagDir)
	if tagDir == "." || tagDir == ".." || tagDir == string(filepath.Separator) {
		return invalid("tag_dir must be a dedicated directory", "tag_dir", c.TagDir)
	}

	postsAbs, err1 := filepath.Abs(c.PostsDir)
	tagAbs, err2 := filepath.Abs(c.TagDir)
	if err1 != nil || err2 != nil {
		return nil
	}
	if postsAbs == tagAbs || isWithin(postsAbs, tagAbs) {
		return invalid("tag_dir must not contain the posts directory", "tag_dir", c.TagDir)
	}
	// A recursive scan would read the generated pages as posts, and watch
	// mode would see its own writes as post changes.
	if c.Recursive && isWithin(tagAbs, postsAbs) {
		return invalid("tag_dir must not be inside posts_dir when recursive is set", "tag_dir", c.TagDir)
	}
	if c.Manifest != "" {
		if m, err := filepath.Abs(c.Manifest); err == nil && isWithin(m, tagAbs) {
			return invalid("manifest must be written outside tag_dir", "manifest", c.Manifest)
		}
	}
	return nil
}

// isWithin reports whether child is inside parent.
func isWithin(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

func invalid(message, key, value string) error {
	return foundationerrors.ValidationError(message).WithContext(key, value).Build()
}
