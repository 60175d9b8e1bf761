// Package commands implements the tagbuilder subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/tagbuilder/internal/config"
	foundationerrors "git.home.luguber.info/inful/tagbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tagbuilder/internal/generator"
	"git.home.luguber.info/inful/tagbuilder/internal/metrics"
)

// Global state shared by every subcommand.
type Global struct {
	Out    io.Writer    // command output; logs always go to stderr
	Logger *slog.Logger // when set, replaces the logger built from flags and config
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (default tagbuilder.yaml)" env:"TAGBUILDER_CONFIG" placeholder:"PATH"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (${enum}); auto follows the configuration" enum:"auto,text,json" default:"auto"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" default:"1" help:"Wipe the tag directory and write one page per tag (default)"`
	Check    CheckCmd    `cmd:"" help:"Report whether the tag directory matches the posts"`
	List     ListCmd     `cmd:"" help:"List tags with their post counts"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate whenever posts change"`
}

// AfterApply runs after flag parsing; it installs a logger from the flags
// alone so that configuration loading can already log.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(c.newLogger(os.Stderr, nil))
	return nil
}

// newLogger builds the slog logger. Flags win over the logging section of cfg.
func (c *CLI) newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	format := config.LogFormatText
	if cfg != nil {
		switch cfg.Logging.Level {
		case config.LogLevelDebug:
			level = slog.LevelDebug
		case config.LogLevelWarn:
			level = slog.LevelWarn
		case config.LogLevelError:
			level = slog.LevelError
		}
		if cfg.Logging.Format != "" {
			format = cfg.Logging.Format
		}
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	if f := config.NormalizeLogFormat(c.LogFormat); f != "" {
		format = f
	}

	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// configPath returns the configuration path and whether the user chose it.
func (c *CLI) configPath() (string, bool) {
	if c.Config == "" {
		return config.DefaultPath, false
	}
	return c.Config, true
}

// SourceFlags override where and how tags are read.
type SourceFlags struct {
	PostsDir  string `name:"posts-dir" help:"Directory holding the posts" placeholder:"DIR"`
	TagDir    string `name:"tag-dir" help:"Directory receiving the tag pages" placeholder:"DIR"`
	Extractor string `help:"Tag extractor (regex or yaml)" placeholder:"KIND"`
	Normalize bool   `help:"Lower-case tags and drop characters that are not letters, digits, '-' or '_'"`
	Strict    bool   `help:"Fail on malformed front matter and unusable tags instead of skipping them"`
}

func (s SourceFlags) apply(cfg *config.Config) error {
	if s.PostsDir != "" {
		cfg.PostsDir = s.PostsDir
	}
	if s.TagDir != "" {
		cfg.TagDir = s.TagDir
	}
	if s.Extractor != "" {
		k := config.NormalizeExtractorKind(s.Extractor)
		if k == "" {
			return foundationerrors.ValidationError("unknown extractor (use regex or yaml)").
				WithContext("extractor", s.Extractor).
				Build()
		}
		cfg.Extractor = k
	}
	if s.Normalize {
		cfg.Normalize = true
	}
	if s.Strict {
		cfg.Strict = true
	}
	return nil
}

// OutputFlags override the optional run artifacts.
type OutputFlags struct {
	Manifest    string `help:"Write a JSON build manifest to this path" placeholder:"PATH"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this path" placeholder:"PATH"`
}

func (o OutputFlags) apply(cfg *config.Config) error {
	if o.Manifest != "" {
		cfg.Manifest = o.Manifest
	}
	if o.MetricsFile != "" {
		cfg.Metrics.Textfile = o.MetricsFile
	}
	return nil
}

// loadConfig loads the configuration, lets overrides adjust it, validates
// the result and returns it with the logger to use from now on.
func loadConfig(g *Global, root *CLI, overrides ...func(*config.Config) error) (*config.Config, *slog.Logger, error) {
	path, explicit := root.configPath()
	cfg, err := config.LoadOrDefault(path, explicit)
	if err != nil {
		return nil, nil, err
	}
	for _, o := range overrides {
		if err := o(cfg); err != nil {
			return nil, nil, err
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	logger := g.Logger
	if logger == nil {
		logger = root.newLogger(os.Stderr, cfg)
		slog.SetDefault(logger)
	}
	return cfg, logger, nil
}

// newGenerator wires a generator with Prometheus metrics when a textfile is
// configured.
func newGenerator(cfg *config.Config, logger *slog.Logger) *generator.Generator {
	gen := generator.New(cfg, logger)
	if cfg.Metrics.Textfile != "" {
		reg := prom.NewRegistry()
		gen.WithRecorder(metrics.NewPrometheusRecorder(reg)).WithMetricsTextfile(reg)
	}
	return gen
}
