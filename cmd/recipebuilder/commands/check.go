package commands

import (
	"fmt"

	"git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/recipebuilder/internal/linkverify"
	"git.home.luguber.info/inful/recipebuilder/internal/manifest"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Output string `short:"o" help:"Output directory to check (overrides output.directory)"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	out := cfg.Output.Directory
	if c.Output != "" {
		out = c.Output
	}

	report, err := linkverify.VerifyTree(out)
	if err != nil {
		return err
	}
	drifts, err := manifest.Verify(out)
	if err != nil {
		return err
	}

	for _, b := range report.Broken {
		_, _ = fmt.Fprintf(g.Stdout, "broken link: %s -> %s (%s)\n", b.Page, b.Link.URL, b.Target)
	}
	for _, d := range drifts {
		_, _ = fmt.Fprintf(g.Stdout, "%s page: %s\n", d.Reason, d.Path)
	}

	if problems := len(report.Broken) + len(drifts); problems > 0 {
		return errors.ValidationError(fmt.Sprintf("check found %d problem(s) in %s", problems, out)).
			WithContext("path", out).
			Build()
	}
	_, err = fmt.Fprintf(g.Stdout, "Checked %d pages in %s\n", report.Pages, out)
	return err
}
