package build

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/recipebuilder/internal/config"
	"git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/recipebuilder/internal/linkverify"
	"git.home.luguber.info/inful/recipebuilder/internal/logfields"
	"git.home.luguber.info/inful/recipebuilder/internal/manifest"
	"git.home.luguber.info/inful/recipebuilder/internal/metrics"
	"git.home.luguber.info/inful/recipebuilder/internal/recipe"
	"git.home.luguber.info/inful/recipebuilder/internal/render"
)

// Result describes a finished build.
type Result struct {
	BuildID     string
	Recipes     int
	Pages       []string // written page paths, in load order
	Pruned      []string // removed stale pages, relative to OutputDir
	BrokenLinks int
	OutputDir   string
	Duration    time.Duration
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// textfileWriter is implemented by recorders that can export to a file.
type textfileWriter interface {
	WriteTextfile(path string) error
}

// Builder produces the static site described by a configuration.
type Builder struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	newID    func() string
}

// New creates a Builder. When cfg asks for a metrics textfile and no recorder
// is given, a Prometheus recorder is used.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg, newID: uuid.NewString}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.recorder == nil {
		if cfg != nil && cfg.Metrics.Textfile != "" {
			b.recorder = metrics.NewPrometheusRecorder(nil)
		} else {
			b.recorder = metrics.NoopRecorder{}
		}
	}
	return b
}

// run carries the state of a single build.
type run struct {
	*Builder
	logger *slog.Logger
	result *Result
}

// Run executes the pipeline.
func (b *Builder) Run() (*Result, error) {
	start := time.Now()
	if b.cfg == nil {
		b.recorder.IncBuildOutcome(metrics.OutcomeFailed)
		return nil, errors.ConfigError("config required").Build()
	}

	id := b.newID()
	r := &run{
		Builder: b,
		logger:  b.logger.With(logfields.BuildID(id)),
		result:  &Result{BuildID: id, OutputDir: b.cfg.Output.Directory},
	}

	err := r.execute()
	r.result.Duration = time.Since(start)
	b.recorder.ObserveBuildDuration(r.result.Duration)

	switch {
	case err != nil:
		b.recorder.IncBuildOutcome(metrics.OutcomeFailed)
		r.logger.Debug("Build failed", logfields.Error(err), logfields.DurationMS(millis(r.result.Duration)))
	case r.result.BrokenLinks > 0:
		b.recorder.IncBuildOutcome(metrics.OutcomeWarning)
	default:
		b.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
	}

	if textErr := r.writeTextfile(); textErr != nil && err == nil {
		err = textErr
	}
	if err != nil {
		return r.result, err
	}

	r.logger.Info("Build complete",
		logfields.Count(r.result.Recipes),
		logfields.Path(r.result.OutputDir),
		logfields.DurationMS(millis(r.result.Duration)))
	return r.result, nil
}

func (r *run) execute() error {
	recipes, err := r.load()
	if err != nil {
		return err
	}

	rd, err := render.New(render.OptionsFromConfig(r.cfg))
	if err != nil {
		return err
	}

	out := r.cfg.Output.Directory
	if err := os.MkdirAll(out, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", out).
			Build()
	}

	pages, err := r.writePages(rd, recipes)
	if err != nil {
		return err
	}
	if err := r.writeIndex(rd, recipes); err != nil {
		return err
	}
	if err := r.updateManifest(pages); err != nil {
		return err
	}
	if r.cfg.Build.VerifyLinks {
		r.verifyLinks()
	}
	return nil
}

// stage times fn and records its duration.
func (r *run) stage(name string, fn func(logger *slog.Logger) error) error {
	start := time.Now()
	logger := r.logger.With(logfields.Stage(name))
	err := fn(logger)
	elapsed := time.Since(start)
	r.recorder.ObserveStageDuration(name, elapsed)
	logger.Debug("Stage finished", logfields.DurationMS(millis(elapsed)))
	return err
}

func (r *run) load() ([]recipe.Recipe, error) {
	var recipes []recipe.Recipe
	err := r.stage(metrics.StageLoad, func(logger *slog.Logger) error {
		logger.Info("Loading recipes", logfields.Path(r.cfg.RecipesDir))
		var err error
		recipes, err = recipe.Load(r.cfg.RecipesDir, recipe.LoadOptions{
			DuplicateSlugs: r.cfg.Build.DuplicateSlugs,
			Logger:         logger,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	r.result.Recipes = len(recipes)
	r.recorder.SetRecipesLoaded(len(recipes))
	return recipes, nil
}

func (r *run) writePages(rd *render.Renderer, recipes []recipe.Recipe) ([]manifest.Page, error) {
	pages := make([]manifest.Page, 0, len(recipes))
	err := r.stage(metrics.StagePages, func(logger *slog.Logger) error {
		for _, rec := range recipes {
			content, err := rd.RenderPage(rec)
			if err != nil {
				return err
			}
			rel := render.PagePath(rec.Slug)
			path, err := render.WriteOutputFile(r.cfg.Output.Directory, rel, content)
			if err != nil {
				return err
			}
			logger.Debug("Wrote page", logfields.Slug(rec.Slug), logfields.Path(path))
			r.result.Pages = append(r.result.Pages, path)
			pages = append(pages, manifest.Page{
				Slug:        rec.Slug,
				Path:        rel,
				Source:      rec.Source,
				Fingerprint: manifest.Fingerprint(content),
			})
		}
		return nil
	})
	r.recorder.IncPagesWritten(len(r.result.Pages))
	return pages, err
}

func (r *run) writeIndex(rd *render.Renderer, recipes []recipe.Recipe) error {
	return r.stage(metrics.StageIndex, func(logger *slog.Logger) error {
		path, err := rd.WriteIndex(r.cfg.Output.Directory, recipes)
		if err != nil {
			return err
		}
		logger.Debug("Wrote index", logfields.Path(path), logfields.Count(len(recipes)))
		return nil
	})
}

func (r *run) updateManifest(pages []manifest.Page) error {
	return r.stage(metrics.StageManifest, func(logger *slog.Logger) error {
		out := r.cfg.Output.Directory
		current := manifest.New(pages)

		previous, err := manifest.Read(out)
		if err != nil {
			logger.Warn("Ignoring unreadable manifest", logfields.Error(err))
			previous = &manifest.Manifest{}
		}

		if r.cfg.Output.Clean {
			pruned, err := manifest.Prune(out, previous, current)
			r.result.Pruned = pruned
			for _, p := range pruned {
				logger.Info("Removed stale page", logfields.Path(p))
			}
			if err != nil {
				return err
			}
		} else if stale := manifest.Stale(previous, current); len(stale) > 0 {
			// Kept pages stay listed so a later clean build can still remove them.
			logger.Info("Keeping pages of removed recipes (enable output.clean to prune)",
				logfields.Count(len(stale)))
			current = manifest.New(append(stale, current.Pages...))
		}

		return current.Write(out)
	})
}

// verifyLinks reports broken internal links. Findings never fail the build.
func (r *run) verifyLinks() {
	_ = r.stage(metrics.StageVerify, func(logger *slog.Logger) error {
		report, err := linkverify.VerifyTree(r.cfg.Output.Directory)
		if err != nil {
			logger.Warn("Link verification failed", logfields.Error(err))
			return err
		}
		for _, b := range report.Broken {
			logger.Warn("Broken link",
				logfields.Path(b.Page),
				slog.String("link", b.Link.URL),
				slog.String("target", b.Target))
		}
		r.result.BrokenLinks = len(report.Broken)
		r.recorder.SetBrokenLinks(len(report.Broken))
		return nil
	})
}

func (r *run) writeTextfile() error {
	path := r.cfg.Metrics.Textfile
	if path == "" {
		return nil
	}
	w, ok := r.recorder.(textfileWriter)
	if !ok {
		r.logger.Warn("Metrics recorder cannot write a textfile", logfields.Path(path))
		return nil
	}
	return w.WriteTextfile(path)
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
