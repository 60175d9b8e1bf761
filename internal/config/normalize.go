package config

import (
	"fmt"
	"strings"
)

// NormalizationResult captures adjustments & warnings from the normalization pass.
type NormalizationResult struct{ Warnings []string }

// Normalize canonicalizes enumerated fields before defaults are applied.
// Unknown enumeration values are reset so that defaults can take over.
func Normalize(c *Config) *NormalizationResult {
	res := &NormalizationResult{}

	if k := NormalizeExtractorKind(string(c.Extractor)); k != "" {
		if c.Extractor != k {
			res.Warnings = append(res.Warnings, warnChanged("extractor", c.Extractor, k))
			c.Extractor = k
		}
	} else if strings.TrimSpace(string(c.Extractor)) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("extractor", string(c.Extractor), string(ExtractorRegex)))
		c.Extractor = ""
	}

	if lvl := NormalizeLogLevel(string(c.Logging.Level)); lvl != "" {
		if c.Logging.Level != lvl {
			res.Warnings = append(res.Warnings, warnChanged("logging.level", c.Logging.Level, lvl))
			c.Logging.Level = lvl
		}
	} else if c.Logging.Level != "" {
		res.Warnings = append(res.Warnings, warnUnknown("logging.level", string(c.Logging.Level), string(LogLevelInfo)))
		c.Logging.Level = ""
	}

	if f := NormalizeLogFormat(string(c.Logging.Format)); f != "" {
		if c.Logging.Format != f {
			res.Warnings = append(res.Warnings, warnChanged("logging.format", c.Logging.Format, f))
			c.Logging.Format = f
		}
	} else if c.Logging.Format != "" {
		res.Warnings = append(res.Warnings, warnUnknown("logging.format", string(c.Logging.Format), string(LogFormatText)))
		c.Logging.Format = ""
	}

	// Extensions are matched as suffixes; a missing dot is almost always a typo.
	for i, ext := range c.Extensions {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			res.Warnings = append(res.Warnings, warnChanged("extensions", ext, "."+ext))
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	if ext := strings.TrimSpace(c.Page.Extension); ext != "" && !strings.HasPrefix(ext, ".") {
		res.Warnings = append(res.Warnings, warnChanged("page.extension", ext, "."+ext))
		c.Page.Extension = "." + ext
	}

	c.Field = strings.TrimSpace(c.Field)
	return res
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
