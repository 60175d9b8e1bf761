package config

import "strings"

// ExtractorKind selects how tags are read from posts.
type ExtractorKind string

const (
	ExtractorRegex ExtractorKind = "regex"
	ExtractorYAML  ExtractorKind = "yaml"
)

// NormalizeExtractorKind canonicalizes user input; returns "" if unknown.
func NormalizeExtractorKind(raw string) ExtractorKind {
	switch ExtractorKind(strings.ToLower(strings.TrimSpace(raw))) {
	case ExtractorRegex:
		return ExtractorRegex
	case ExtractorYAML:
		return ExtractorYAML
	default:
		return ""
	}
}

// LogLevel is the minimum slog level.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// NormalizeLogLevel canonicalizes user input; returns "" if unknown.
func NormalizeLogLevel(raw string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return ""
	}
}

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// NormalizeLogFormat canonicalizes user input; returns "" if unknown.
func NormalizeLogFormat(raw string) LogFormat {
	switch LogFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case LogFormatText:
		return LogFormatText
	case LogFormatJSON:
		return LogFormatJSON
	default:
		return ""
	}
}
