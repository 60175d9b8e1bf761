// Command tagbuilder regenerates the tag index pages of a static blog.
package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/tagbuilder/cmd/tagbuilder/commands"
	foundationerrors "git.home.luguber.info/inful/tagbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tagbuilder/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("tagbuilder"),
		kong.Description("Regenerate tag index pages from blog post front matter."),
		kong.Vars{"version": version.String()},
	)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return foundationerrors.ExitValidation
	}

	err = ctx.Run(&commands.Global{Out: os.Stdout}, cli)
	return foundationerrors.NewCLIErrorAdapter(cli.Verbose, nil).Report(err)
}
