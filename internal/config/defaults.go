package config

import (
	"slices"
	"time"
)

const (
	defaultPostsDir  = "_posts"
	defaultTagDir    = "tag"
	defaultField     = "tags"
	defaultLayout    = "tagpage"
	defaultRobots    = "noindex"
	defaultExtension = ".md"
	defaultDebounce  = 500 * time.Millisecond
)

var defaultExtensions = []string{".md", ".markdown"}

// Default returns the configuration used when no file is present. It
// reproduces the classic behaviour: `_posts` scanned into `tag`.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset field.
func ApplyDefaults(c *Config) {
	if c.Version == "" {
		c.Version = CurrentVersion
	}
	if c.PostsDir == "" {
		c.PostsDir = defaultPostsDir
	}
	if c.TagDir == "" {
		c.TagDir = defaultTagDir
	}
	c.Extensions = slices.DeleteFunc(c.Extensions, func(s string) bool { return s == "" })
	if len(c.Extensions) == 0 {
		c.Extensions = slices.Clone(defaultExtensions)
	}
	if c.Extractor == "" {
		c.Extractor = ExtractorRegex
	}
	if c.Field == "" {
		c.Field = defaultField
	}
	if c.Page.Layout == "" {
		c.Page.Layout = defaultLayout
	}
	if c.Page.Robots == "" {
		c.Page.Robots = defaultRobots
	}
	if c.Page.Extension == "" {
		c.Page.Extension = defaultExtension
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = defaultDebounce.String()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
}
