package commands

import (
	"fmt"

	"git.home.luguber.info/inful/recipebuilder/internal/build"
	"git.home.luguber.info/inful/recipebuilder/internal/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory (overrides output.directory)"`
	Clean  bool   `help:"Remove pages of recipes that no longer exist (overrides output.clean)"`
	Verify bool   `help:"Check internal links after the build (overrides build.verify_links)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}
	if b.Clean {
		cfg.Output.Clean = true
	}
	if b.Verify {
		cfg.Build.VerifyLinks = true
	}

	res, err := build.New(cfg, build.WithLogger(g.Logger)).Run()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.Stdout, "Built %d recipes into %s\n", res.Recipes, res.OutputDir)
	return err
}
