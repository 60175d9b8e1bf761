package commands

import (
	"fmt"

	"git.home.luguber.info/inful/tagbuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (c *InitCmd) Run(g *Global, root *CLI) error {
	path, _ := root.configPath()
	if err := config.Init(path, c.Force); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "Wrote example configuration to %s\n", path)
	return nil
}
