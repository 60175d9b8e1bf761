package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/tagbuilder/internal/config"
	foundationerrors "git.home.luguber.info/inful/tagbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tagbuilder/internal/logfields"
	"git.home.luguber.info/inful/tagbuilder/internal/manifest"
	"git.home.luguber.info/inful/tagbuilder/internal/metrics"
	"git.home.luguber.info/inful/tagbuilder/internal/posts"
	"git.home.luguber.info/inful/tagbuilder/internal/tagindex"
	"git.home.luguber.info/inful/tagbuilder/internal/tagpage"
	"git.home.luguber.info/inful/tagbuilder/internal/tags"
	"git.home.luguber.info/inful/tagbuilder/internal/version"
)

// Status is the outcome of a run.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusDryRun   Status = "dry_run"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Result summarizes a generate run.
type Result struct {
	BuildID      string
	Status       Status
	PostsScanned int
	Tags         int
	PagesWritten int
	Pages        []tagpage.Page
	Skipped      []tagindex.Skip
	Duration     time.Duration
}

// Generator regenerates the tag directory from a configuration.
type Generator struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	gatherer prom.Gatherer
	dryRun   bool
}

// New returns a Generator for cfg with a no-op metrics recorder.
func New(cfg *config.Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{cfg: cfg, logger: logger, recorder: metrics.NoopRecorder{}}
}

// WithRecorder sets the metrics recorder.
func (g *Generator) WithRecorder(r metrics.Recorder) *Generator {
	if r != nil {
		g.recorder = r
	}
	return g
}

// WithMetricsTextfile dumps gatherer to the configured metrics.textfile
// after every run.
func (g *Generator) WithMetricsTextfile(gatherer prom.Gatherer) *Generator {
	g.gatherer = gatherer
	return g
}

// WithDryRun makes Run render pages without touching the tag directory.
func (g *Generator) WithDryRun(dryRun bool) *Generator {
	g.dryRun = dryRun
	return g
}

// Config returns the configuration the generator runs with.
func (g *Generator) Config() *config.Config { return g.cfg }

// Index discovers the posts and builds their tag index.
func (g *Generator) Index(ctx context.Context) (*tagindex.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	extractor, err := tags.NewExtractor(string(g.cfg.Extractor), g.cfg.Field)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "invalid extractor").
			WithContext("extractor", string(g.cfg.Extractor)).
			Build()
	}

	all, err := posts.Load(g.cfg.PostsDir, posts.Options{
		Extensions: g.cfg.Extensions,
		Recursive:  g.cfg.Recursive,
	})
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Discovered posts", logfields.PostsDir(g.cfg.PostsDir), logfields.Count(len(all)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return tagindex.NewBuilder(extractor, tagindex.Options{
		Normalize: g.cfg.Normalize,
		Strict:    g.cfg.Strict,
		Logger:    g.logger,
	}).Build(all)
}

// Plan builds the index and renders every page without writing.
func (g *Generator) Plan(ctx context.Context) (*tagindex.Index, []tagpage.Page, error) {
	idx, err := g.Index(ctx)
	if err != nil {
		return nil, nil, err
	}
	w, err := g.writer()
	if err != nil {
		return nil, nil, err
	}
	pages, err := w.Plan(idx)
	if err != nil {
		return nil, nil, err
	}
	return idx, pages, nil
}

// Run wipes the tag directory and writes one page per unique tag. Posts are
// read and pages rendered before anything is removed, so a failing run leaves
// the previous pages in place.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{BuildID: uuid.NewString(), Status: StatusFailed}
	log := g.logger.With(logfields.BuildID(result.BuildID))

	finish := func(status Status, err error) (*Result, error) {
		result.Status = status
		result.Duration = time.Since(start)
		g.recorder.ObserveGenerateDuration(result.Duration)
		g.recorder.IncOutcome(outcomeOf(status))
		g.writeMetrics(log)
		if err != nil {
			log.Error("Tag generation failed", logfields.Error(err))
			return result, err
		}
		log.Info("Tag generation complete",
			slog.String("status", string(status)),
			logfields.Count(result.Tags),
			logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
		return result, nil
	}

	log.Info("Generating tag pages",
		logfields.PostsDir(g.cfg.PostsDir),
		logfields.TagDir(g.cfg.TagDir),
		logfields.Extractor(string(g.cfg.Extractor)))

	idx, pages, err := g.Plan(ctx)
	if err != nil {
		return finish(statusFor(ctx), err)
	}

	result.PostsScanned = idx.Scanned
	result.Tags = idx.Len()
	result.Pages = pages
	result.Skipped = idx.Skipped
	g.recorder.SetPostsScanned(idx.Scanned)
	g.recorder.SetTagsFound(idx.Len())
	g.recordSkips(idx.Skipped)

	if g.dryRun {
		for _, p := range pages {
			log.Info("Would write tag page", logfields.Tag(p.Tag), logfields.Path(p.File))
		}
		return finish(StatusDryRun, nil)
	}

	if err := ctx.Err(); err != nil {
		return finish(StatusCanceled, err)
	}

	w, err := g.writer()
	if err != nil {
		return finish(StatusFailed, err)
	}
	if err := w.Reset(); err != nil {
		return finish(StatusFailed, err)
	}
	if err := w.Write(pages); err != nil {
		return finish(StatusFailed, err)
	}
	result.PagesWritten = len(pages)
	g.recorder.AddPagesWritten(len(pages))

	if g.cfg.Manifest != "" {
		if err := g.writeManifest(result, start); err != nil {
			return finish(StatusFailed, err)
		}
		log.Debug("Wrote build manifest", logfields.Path(g.cfg.Manifest))
	}

	return finish(StatusSuccess, nil)
}

// Check compares the tag directory with what Run would write. An out of
// sync directory is reported as a validation error carrying the drift.
func (g *Generator) Check(ctx context.Context) (*tagpage.Drift, error) {
	_, pages, err := g.Plan(ctx)
	if err != nil {
		g.recorder.IncOutcome(outcomeOf(statusFor(ctx)))
		return nil, err
	}
	w, err := g.writer()
	if err != nil {
		return nil, err
	}
	drift, err := w.Check(pages)
	if err != nil {
		g.recorder.IncOutcome(metrics.OutcomeFailed)
		return nil, err
	}
	if !drift.InSync() {
		g.recorder.IncOutcome(metrics.OutcomeDrift)
		return drift, foundationerrors.ValidationError("tag directory out of sync").
			WithContext("tag_dir", g.cfg.TagDir).
			WithContext("missing", len(drift.Missing)).
			WithContext("stale", len(drift.Stale)).
			WithContext("drifted", len(drift.Drifted)).
			Build()
	}
	g.recorder.IncOutcome(metrics.OutcomeSuccess)
	return drift, nil
}

func (g *Generator) writer() (*tagpage.Writer, error) {
	renderer, err := tagpage.NewRenderer(tagpage.RenderOptions{
		Layout:       g.cfg.Page.Layout,
		Robots:       g.cfg.Page.Robots,
		TemplatePath: g.cfg.Page.Template,
	})
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "invalid page template").
			WithContext("path", g.cfg.Page.Template).
			Build()
	}
	return tagpage.NewWriter(g.cfg.TagDir, g.cfg.Page.Extension, renderer, g.logger), nil
}

func (g *Generator) writeManifest(result *Result, start time.Time) error {
	m := manifest.New(version.Version)
	m.ID = result.BuildID
	m.Timestamp = start.UTC()

	hash, err := manifest.HashConfig(g.cfg)
	if err != nil {
		return foundationerrors.InternalError("failed to hash configuration").WithCause(err).Build()
	}
	m.Inputs = manifest.Inputs{
		PostsDir:     g.cfg.PostsDir,
		Extractor:    string(g.cfg.Extractor),
		PostsScanned: result.PostsScanned,
		ConfigHash:   hash,
	}
	m.Outputs = manifest.Outputs{TagDir: g.cfg.TagDir, Pages: result.Pages, Skipped: result.Skipped}
	m.Status = manifest.StatusSuccess
	m.Duration = time.Since(start).Milliseconds()

	if err := m.Write(g.cfg.Manifest); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to write manifest").
			WithContext("path", g.cfg.Manifest).
			Build()
	}
	return nil
}

func (g *Generator) writeMetrics(log *slog.Logger) {
	if g.gatherer == nil || g.cfg.Metrics.Textfile == "" {
		return
	}
	if err := metrics.WriteTextfile(g.cfg.Metrics.Textfile, g.gatherer); err != nil {
		log.Warn("Failed to write metrics textfile", logfields.Path(g.cfg.Metrics.Textfile), logfields.Error(err))
	}
}

func (g *Generator) recordSkips(skips []tagindex.Skip) {
	var unreadable, invalid int
	for _, s := range skips {
		if s.Tag != "" {
			invalid++
		} else {
			unreadable++
		}
	}
	g.recorder.AddPostsSkipped("unreadable_frontmatter", unreadable)
	g.recorder.AddPostsSkipped("invalid_tag", invalid)
}

func statusFor(ctx context.Context) Status {
	if ctx.Err() != nil {
		return StatusCanceled
	}
	return StatusFailed
}

func outcomeOf(s Status) metrics.Outcome {
	switch s {
	case StatusSuccess, StatusDryRun:
		return metrics.OutcomeSuccess
	case StatusCanceled:
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeFailed
	}
}
