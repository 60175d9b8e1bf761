package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	SourceFlags `embed:""`

	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

// TagEntry is one tag in the JSON listing.
type TagEntry struct {
	Tag   string   `json:"tag"`
	Count int      `json:"count"`
	Posts []string `json:"posts"`
}

func (c *ListCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := loadConfig(g, root, c.SourceFlags.apply)
	if err != nil {
		return err
	}

	idx, err := newGenerator(cfg, logger).Index(context.Background())
	if err != nil {
		return err
	}

	entries := make([]TagEntry, 0, idx.Len())
	for _, tag := range idx.Tags() {
		p := idx.Posts(tag)
		entries = append(entries, TagEntry{Tag: tag, Count: len(p), Posts: p})
	}

	out := g.out()
	if c.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", e.Tag, e.Count)
	}
	return tw.Flush()
}
