package commands

import (
	"context"
	"fmt"
)

// CheckCmd implements the 'check' command. It exits with status 2 when the
// tag directory is out of sync, which makes it usable as a CI gate.
type CheckCmd struct {
	SourceFlags `embed:""`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := loadConfig(g, root, c.SourceFlags.apply)
	if err != nil {
		return err
	}

	drift, err := newGenerator(cfg, logger).Check(context.Background())
	if drift == nil {
		return err
	}

	out := g.out()
	for _, f := range drift.Missing {
		_, _ = fmt.Fprintf(out, "missing  %s\n", f)
	}
	for _, f := range drift.Stale {
		_, _ = fmt.Fprintf(out, "stale    %s\n", f)
	}
	for _, f := range drift.Drifted {
		_, _ = fmt.Fprintf(out, "drifted  %s\n", f)
	}
	if drift.InSync() {
		_, _ = fmt.Fprintf(out, "%s is up to date\n", cfg.TagDir)
	} else {
		_, _ = fmt.Fprintf(out, "%s is out of sync: %s\n", cfg.TagDir, drift.Summary())
	}
	return err
}
