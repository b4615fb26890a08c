package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/recipebuilder/internal/config"
	"git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/recipebuilder/internal/version"
)

// Global carries the process streams and the active logger to every command.
type Global struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: recipebuilder.yaml when present)"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"withargs" help:"Render recipe pages and the index (default command)"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file"`
	Check CheckCmd `cmd:"" help:"Verify internal links and detect hand-edited pages"`
}

// AfterApply runs after flag parsing and installs the flag-driven logger.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	g.Logger = newLogger(g.Stderr, config.LogLevelInfo, config.LogFormatText, c.Verbose)
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig resolves the configuration and reconfigures logging from it.
// The verbose flag always wins over the configured level.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Resolve(c.Config)
	if err != nil {
		return nil, err
	}
	g.Logger = newLogger(g.Stderr, cfg.Logging.Level, cfg.Logging.Format, c.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

func newLogger(w io.Writer, level config.LogLevel, format config.LogFormat, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// exitSignal unwinds out of kong when it asks to exit (help, --version).
type exitSignal int

// Execute parses args, runs the selected command and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) (code int) {
	g := &Global{
		Stdout: stdout,
		Stderr: stderr,
		Logger: newLogger(stderr, config.LogLevelInfo, config.LogFormatText, false),
	}

	defer func() {
		if r := recover(); r != nil {
			exit, ok := r.(exitSignal)
			if !ok {
				panic(r)
			}
			code = int(exit)
		}
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("recipebuilder"),
		kong.Description("Generate static recipe pages with schema.org data and shopping-list import links."),
		kong.Vars{"version": version.String()},
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitSignal(c)) }),
		kong.Bind(g),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	err = ctx.Run(&cli)
	return errors.NewCLIErrorAdapter(cli.Verbose, g.Logger).WithOutput(stderr).Report(err)
}
