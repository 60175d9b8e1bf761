package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	SourceFlags `embed:""`
	OutputFlags `embed:""`

	DryRun bool `name:"dry-run" help:"Show the pages that would be written without touching the tag directory"`
}

func (c *GenerateCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := loadConfig(g, root, c.SourceFlags.apply, c.OutputFlags.apply)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := newGenerator(cfg, logger).WithDryRun(c.DryRun).Run(ctx)
	if err != nil {
		return err
	}

	out := g.out()
	if c.DryRun {
		for _, p := range res.Pages {
			_, _ = fmt.Fprintf(out, "would write %s\n", p.File)
		}
		_, _ = fmt.Fprintf(out, "%d tag pages from %d posts (dry run)\n", len(res.Pages), res.PostsScanned)
		return nil
	}
	_, _ = fmt.Fprintf(out, "Wrote %d tag pages from %d posts to %s\n", res.PagesWritten, res.PostsScanned, cfg.TagDir)
	if n := len(res.Skipped); n > 0 {
		_, _ = fmt.Fprintf(out, "Skipped %d entries (see warnings)\n", n)
	}
	return nil
}
