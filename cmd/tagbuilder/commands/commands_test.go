package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/tagbuilder/internal/config"
	foundationerrors "git.home.luguber.info/inful/tagbuilder/internal/foundation/errors"
	helpers "git.home.luguber.info/inful/tagbuilder/internal/testutil/testutils"
)

var blog = map[string]string{
	"2024-01-01-hello.md":      "---\nlayout: post\ntags: go cli\n---\n# Hello\n",
	"2024-01-02-more.markdown": "---\ntags: go rust\n---\n",
}

// runCLI parses args like the binary does and runs the selected command.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("tagbuilder"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)

	ctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	err = ctx.Run(&Global{Out: &out, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}, cli)
	return out.String(), err
}

// inBlog creates a blog with posts and makes it the working directory.
func inBlog(t *testing.T, posts map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	helpers.WritePosts(t, dir, posts)
	t.Chdir(dir)
	return dir
}

func TestGenerate_DefaultCommandWithoutConfig(t *testing.T) {
	dir := inBlog(t, blog)

	out, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 3 tag pages from 2 posts to tag")

	helpers.NewFileAssertions(t, dir).
		AssertDirEntries("tag", "cli.md", "go.md", "rust.md").
		AssertFileContent("tag/rust.md", "---\nlayout: tagpage\ntag: rust\nrobots: noindex\n---")
}

func TestGenerate_FlagsOverrideConfig(t *testing.T) {
	dir := inBlog(t, blog)
	require.NoError(t, os.WriteFile("tagbuilder.yaml", []byte("tag_dir: from-config\npage:\n  layout: custom\n"), 0o600))

	_, err := runCLI(t, "generate", "--tag-dir", "from-flag", "--manifest", "build/manifest.json")
	require.NoError(t, err)

	helpers.NewFileAssertions(t, dir).
		AssertFileNotExists("from-config").
		AssertFileContent("from-flag/go.md", "---\nlayout: custom\ntag: go\nrobots: noindex\n---").
		AssertFileExists("build/manifest.json")
}

func TestGenerate_DryRun(t *testing.T) {
	dir := inBlog(t, blog)

	out, err := runCLI(t, "generate", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "would write go.md")
	assert.Contains(t, out, "3 tag pages from 2 posts (dry run)")
	helpers.NewFileAssertions(t, dir).AssertFileNotExists("tag")
}

func TestGenerate_UnknownExtractor(t *testing.T) {
	inBlog(t, blog)

	_, err := runCLI(t, "generate", "--extractor", "toml")
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryValidation))
}

func TestGenerate_MissingPostsDir(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := runCLI(t, "generate")
	require.Error(t, err)
	assert.Equal(t, foundationerrors.ExitBuild, foundationerrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestGenerate_ExplicitConfigMustExist(t *testing.T) {
	inBlog(t, blog)

	_, err := runCLI(t, "--config", "missing.yaml", "generate")
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryNotFound))
}

func TestCheck(t *testing.T) {
	dir := inBlog(t, blog)

	out, err := runCLI(t, "check")
	require.Error(t, err)
	assert.Equal(t, foundationerrors.ExitValidation, foundationerrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	assert.Contains(t, out, "missing  go.md")
	assert.Contains(t, out, "3 missing, 0 stale, 0 drifted")

	_, err = runCLI(t, "generate")
	require.NoError(t, err)

	out, err = runCLI(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "tag is up to date")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tag", "go.md"), []byte("edited"), 0o600))
	out, err = runCLI(t, "check")
	require.Error(t, err)
	assert.Contains(t, out, "drifted  go.md")
}

func TestList(t *testing.T) {
	inBlog(t, blog)

	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "cli   1\ngo    2\nrust  1\n", out)

	out, err = runCLI(t, "list", "--format", "json")
	require.NoError(t, err)
	var entries []TagEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, TagEntry{Tag: "go", Count: 2, Posts: []string{"2024-01-01-hello.md", "2024-01-02-more.markdown"}}, entries[1])
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")

	out, err := runCLI(t, "--config", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Example(), cfg)

	_, err = runCLI(t, "--config", path, "init")
	require.Error(t, err)

	_, err = runCLI(t, "--config", path, "init", "--force")
	require.NoError(t, err)
}

func TestNewLogger_FlagsWinOverConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = config.LogFormatJSON
	cfg.Logging.Level = config.LogLevelWarn

	var buf bytes.Buffer
	(&CLI{LogFormat: "auto"}).newLogger(&buf, cfg).Info("hidden")
	(&CLI{LogFormat: "auto"}).newLogger(&buf, cfg).Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	(&CLI{LogFormat: "text", Verbose: true}).newLogger(&buf, cfg).Debug("debug line")
	assert.Contains(t, buf.String(), "msg=\"debug line\"")
}

func TestRunWatch_RegeneratesOnChange(t *testing.T) {
	dir := inBlog(t, blog)
	cfg := config.Default()
	cfg.Watch.Debounce = "20ms"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, cfg, logger) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watch did not stop")
		}
	})

	tagDir := filepath.Join(dir, "tag")
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(tagDir, "rust.md"))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	// The watcher may still be starting; keep touching the post until it is seen.
	post := filepath.Join(dir, "_posts", "2024-01-03-new.md")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(post, []byte("---\ntags: zig\n---\n"), 0o600)
		_, err := os.Stat(filepath.Join(tagDir, "zig.md"))
		return err == nil
	}, 3*time.Second, 50*time.Millisecond)
}

func TestRunWatch_StartupFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := config.Default()

	err := runWatch(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}

func TestWatch_RejectsTagDirInsideRecursivePosts(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("post.md", []byte("---\ntags: go\n---\n"), 0o600))
	require.NoError(t, os.WriteFile("tagbuilder.yaml", []byte("posts_dir: .\nrecursive: true\n"), 0o600))

	_, err := runCLI(t, "watch", "--debounce", "50ms")
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryValidation))
	helpers.NewFileAssertions(t, dir).AssertFileNotExists("tag")
}
