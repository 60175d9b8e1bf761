package generator

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/tagbuilder/internal/config"
	foundationerrors "git.home.luguber.info/inful/tagbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tagbuilder/internal/manifest"
	"git.home.luguber.info/inful/tagbuilder/internal/metrics"
	helpers "git.home.luguber.info/inful/tagbuilder/internal/testutil/testutils"
	"git.home.luguber.info/inful/tagbuilder/internal/util/sets"
)

var samplePosts = map[string]string{
	"2024-01-01-hello.md":      "---\nlayout: post\ntitle: Hello\ntags: go  cli\n---\nbody\n",
	"2024-01-02-more.markdown": "---\ntags: go rust\n---\n",
	"2024-01-03-untagged.md":   "---\ntitle: Nothing\n---\n",
	"notes.txt":                "---\ntags: ignored\n---\n",
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newConfig(t *testing.T, contents map[string]string) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.PostsDir = helpers.WritePosts(t, base, contents)
	cfg.TagDir = filepath.Join(base, "tag")
	return cfg
}

func stub(tag string) string {
	return "---\nlayout: tagpage\ntag: " + tag + "\nrobots: noindex\n---"
}

func TestRun_WritesOnePagePerUniqueTag(t *testing.T) {
	cfg := newConfig(t, samplePosts)

	res, err := New(cfg, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 3, res.PostsScanned)
	assert.Equal(t, 3, res.Tags)
	assert.Equal(t, 3, res.PagesWritten)
	assert.NotEmpty(t, res.BuildID)

	helpers.NewFileAssertions(t, cfg.TagDir).
		AssertDirEntries(".", "cli.md", "go.md", "rust.md").
		AssertFileContent("go.md", stub("go")).
		AssertFileContent("cli.md", stub("cli")).
		AssertFileNotExists("ignored.md")
}

func TestRun_GeneratedFilesEqualUnionOfTags(t *testing.T) {
	contents := map[string]string{
		"a.md": "---\ntags: alpha beta\n---\n",
		"b.md": "---\ntitle: B\ntags:   beta gamma   delta\nauthor: x\n---\n",
		"c.md": "no front matter at all\n",
		"d.md": "---\ntags: alpha\n---\n",
	}
	cfg := newConfig(t, contents)

	_, err := New(cfg, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(cfg.TagDir)
	require.NoError(t, err)
	got := sets.New[string]()
	for _, e := range entries {
		got.Add(strings.TrimSuffix(e.Name(), ".md"))
	}
	assert.True(t, got.Equal(sets.New("alpha", "beta", "gamma", "delta")), "got %v", sets.Sorted(got))
}

func TestRun_WipesPreviousPages(t *testing.T) {
	cfg := newConfig(t, samplePosts)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.TagDir, "sub"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.TagDir, "old.md"), []byte("old"), 0o600))

	_, err := New(cfg, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	helpers.NewFileAssertions(t, cfg.TagDir).
		AssertFileNotExists("old.md").
		AssertFileNotExists("sub").
		AssertDirEntries(".", "cli.md", "go.md", "rust.md")
}

func TestRun_MissingPostsDirLeavesTagDirAlone(t *testing.T) {
	cfg := newConfig(t, nil)
	cfg.PostsDir = filepath.Join(t.TempDir(), "missing")
	require.NoError(t, os.MkdirAll(cfg.TagDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.TagDir, "keep.md"), []byte("keep"), 0o600))

	res, err := New(cfg, quietLogger()).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryFileSystem))
	helpers.NewFileAssertions(t, cfg.TagDir).AssertFileContent("keep.md", "keep")
}

func TestRun_StrictFailsBeforeWipe(t *testing.T) {
	cfg := newConfig(t, map[string]string{
		"good.md": "---\ntags: [go]\n---\n",
		"bad.md":  "---\ntags: [go\n---\n",
	})
	cfg.Extractor = config.ExtractorYAML
	cfg.Strict = true
	require.NoError(t, os.MkdirAll(cfg.TagDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.TagDir, "keep.md"), []byte("keep"), 0o600))

	_, err := New(cfg, quietLogger()).Run(context.Background())
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryContent))
	helpers.NewFileAssertions(t, cfg.TagDir).AssertFileExists("keep.md")
}

func TestRun_LenientSkipsMalformedPost(t *testing.T) {
	cfg := newConfig(t, map[string]string{
		"good.md": "---\ntags: [go]\n---\n",
		"bad.md":  "---\ntags: [go\n---\n",
	})
	cfg.Extractor = config.ExtractorYAML

	res, err := New(cfg, quietLogger()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "bad.md", res.Skipped[0].Post)
	helpers.NewFileAssertions(t, cfg.TagDir).AssertDirEntries(".", "go.md")
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	cfg := newConfig(t, samplePosts)
	cfg.Manifest = filepath.Join(t.TempDir(), "manifest.json")

	res, err := New(cfg, quietLogger()).WithDryRun(true).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusDryRun, res.Status)
	assert.Len(t, res.Pages, 3)
	assert.Zero(t, res.PagesWritten)

	_, err = os.Stat(cfg.TagDir)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(cfg.Manifest)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_WritesManifest(t *testing.T) {
	cfg := newConfig(t, samplePosts)
	cfg.Manifest = filepath.Join(t.TempDir(), "out", "manifest.json")

	res, err := New(cfg, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	m, err := manifest.Read(cfg.Manifest)
	require.NoError(t, err)
	assert.Equal(t, res.BuildID, m.ID)
	assert.Equal(t, manifest.StatusSuccess, m.Status)
	assert.Equal(t, 3, m.Inputs.PostsScanned)
	assert.Equal(t, "regex", m.Inputs.Extractor)
	assert.Len(t, m.Inputs.ConfigHash, 64)
	assert.Equal(t, []string{"cli", "go", "rust"}, m.Tags())
	assert.Equal(t, []string{"2024-01-01-hello.md", "2024-01-02-more.markdown"}, m.Outputs.Pages[1].Posts)
}

func TestRun_MetricsTextfile(t *testing.T) {
	cfg := newConfig(t, samplePosts)
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "tagbuilder.prom")
	reg := prom.NewRegistry()

	_, err := New(cfg, quietLogger()).
		WithRecorder(metrics.NewPrometheusRecorder(reg)).
		WithMetricsTextfile(reg).
		Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tagbuilder_tags_found 3")
	assert.Contains(t, string(data), "tagbuilder_pages_written_total 3")
	assert.Contains(t, string(data), `tagbuilder_run_outcomes_total{outcome="success"} 1`)
}

func TestRun_Canceled(t *testing.T) {
	cfg := newConfig(t, samplePosts)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(cfg, quietLogger()).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusCanceled, res.Status)
	_, statErr := os.Stat(cfg.TagDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_Normalize(t *testing.T) {
	cfg := newConfig(t, map[string]string{"a.md": "---\ntags: Go GO c++ Ünïcode\n---\n"})
	cfg.Normalize = true

	_, err := New(cfg, quietLogger()).Run(context.Background())
	require.NoError(t, err)
	helpers.NewFileAssertions(t, cfg.TagDir).AssertDirEntries(".", "c.md", "go.md", "ünïcode.md")
}

func TestCheck(t *testing.T) {
	cfg := newConfig(t, samplePosts)
	gen := New(cfg, quietLogger())

	drift, err := gen.Check(context.Background())
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryValidation))
	assert.Equal(t, []string{"cli.md", "go.md", "rust.md"}, drift.Missing)

	_, err = gen.Run(context.Background())
	require.NoError(t, err)

	drift, err = gen.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, drift.InSync())

	postsDir := cfg.PostsDir
	require.NoError(t, os.WriteFile(filepath.Join(postsDir, "new.md"), []byte("---\ntags: zig\n---\n"), 0o600))
	require.NoError(t, os.Remove(filepath.Join(postsDir, "2024-01-01-hello.md")))

	drift, err = gen.Check(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"zig.md"}, drift.Missing)
	assert.Equal(t, []string{"cli.md"}, drift.Stale)
	assert.Empty(t, drift.Drifted)
}

func TestIndex(t *testing.T) {
	cfg := newConfig(t, samplePosts)

	idx, err := New(cfg, quietLogger()).Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cli", "go", "rust"}, idx.Tags())
	assert.Equal(t, "Hello", idx.Title("2024-01-01-hello.md"))
}
