package build

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/recipebuilder/internal/config"
	"git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/recipebuilder/internal/manifest"
	"git.home.luguber.info/inful/recipebuilder/internal/metrics"
	"git.home.luguber.info/inful/recipebuilder/internal/testutil"
)

const (
	soupJSON  = `{"slug":"soup","name":"Tomatensuppe","ingredients":["Tomaten","Salz"],"instructions":["Kochen"],"yield":"4 Portionen"}`
	cakeJSON  = `{"slug":"cake","name":"Apfelkuchen","ingredients":["Äpfel"],"instructions":["Backen","Essen"],"image_file":"cake.jpg"}`
	saladYAML = "slug: salad\nname: Gurkensalat\ningredients: [Gurke]\ninstructions: [Schneiden]\n"
)

type fixture struct {
	root   string
	input  string
	output string
	cfg    *config.Config
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:   root,
		input:  filepath.Join(root, "recipes"),
		output: filepath.Join(root, "docs"),
	}
	require.NoError(t, os.MkdirAll(f.input, 0o750))
	testutil.WriteFiles(t, f.input, files)

	f.cfg = config.Default()
	f.cfg.BaseURL = "https://cook.example.org"
	f.cfg.RecipesDir = f.input
	f.cfg.Output.Directory = f.output
	return f
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func (f *fixture) run(t *testing.T, opts ...Option) *Result {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	res, err := New(f.cfg, opts...).Run()
	require.NoError(t, err)
	return res
}

func indexLinks(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := html.Parse(bytes.NewReader(data))
	require.NoError(t, err)

	var hrefs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" {
					hrefs = append(hrefs, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hrefs
}

func TestRun_WritesPagesIndexAndManifest(t *testing.T) {
	f := newFixture(t, map[string]string{
		"b-soup.json":  soupJSON,
		"a-cake.json":  cakeJSON,
		"c-salad.yaml": saladYAML,
	})

	res := f.run(t)
	assert.Equal(t, 3, res.Recipes)
	assert.Equal(t, f.output, res.OutputDir)
	assert.NotEmpty(t, res.BuildID)
	assert.Equal(t, []string{
		filepath.Join(f.output, "cake", "index.html"),
		filepath.Join(f.output, "soup", "index.html"),
		filepath.Join(f.output, "salad", "index.html"),
	}, res.Pages)

	testutil.NewFileAssertions(t, f.output).
		AssertFileExists("index.html").
		AssertFileExists(manifest.FileName).
		AssertFileContains("soup/index.html", "<li>Tomaten</li>").
		AssertFileContains("cake/index.html", `src="../assets/images/cake.jpg"`)

	assert.Equal(t, []string{"./cake/", "./soup/", "./salad/"}, indexLinks(t, filepath.Join(f.output, "index.html")))

	drifts, err := manifest.Verify(f.output)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestRun_MissingFieldFailsBeforeOutput(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a-soup.json": soupJSON,
		"b-bad.json":  `{"slug":"bad","ingredients":[],"instructions":[]}`,
	})

	_, err := New(f.cfg, WithLogger(quietLogger())).Run()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Contains(t, err.Error(), "b-bad.json")
	assert.Contains(t, err.Error(), "name")

	assert.NoDirExists(t, f.output)
}

func TestRun_EmptyInputWritesEmptyIndex(t *testing.T) {
	f := newFixture(t, nil)
	res := f.run(t)
	assert.Zero(t, res.Recipes)
	assert.Empty(t, indexLinks(t, filepath.Join(f.output, "index.html")))
}

func TestRun_IsByteIdentical(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a-cake.json": cakeJSON,
		"b-soup.json": soupJSON,
	})

	f.run(t)
	first := testutil.Snapshot(t, f.output)
	f.run(t)
	second := testutil.Snapshot(t, f.output)

	assert.Equal(t, first, second)
	assert.Len(t, first, 4)
}

func TestRun_StalePages(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a-cake.json": cakeJSON,
		"b-soup.json": soupJSON,
	})
	f.run(t)
	testutil.WriteFiles(t, f.output, map[string]string{"CNAME": "cook.example.org"})
	require.NoError(t, os.Remove(filepath.Join(f.input, "a-cake.json")))

	t.Run("kept by default", func(t *testing.T) {
		res := f.run(t)
		assert.Empty(t, res.Pruned)
		testutil.NewFileAssertions(t, f.output).AssertFileExists("cake/index.html")
	})

	t.Run("pruned by a later clean build", func(t *testing.T) {
		f.cfg.Output.Clean = true
		res := f.run(t)
		assert.Equal(t, []string{"cake/index.html"}, res.Pruned)
		testutil.NewFileAssertions(t, f.output).
			AssertNotExists("cake").
			AssertFileExists("CNAME")
	})
}

func TestRun_CleanPrunesRemovedRecipe(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a-cake.json": cakeJSON,
		"b-soup.json": soupJSON,
	})
	f.cfg.Output.Clean = true
	f.run(t)
	testutil.WriteFiles(t, f.output, map[string]string{"CNAME": "cook.example.org"})
	require.NoError(t, os.Remove(filepath.Join(f.input, "a-cake.json")))

	res := f.run(t)
	assert.Equal(t, []string{"cake/index.html"}, res.Pruned)
	testutil.NewFileAssertions(t, f.output).
		AssertNotExists("cake").
		AssertFileExists("soup/index.html").
		AssertFileExists("CNAME")
	assert.Equal(t, []string{"./soup/"}, indexLinks(t, filepath.Join(f.output, "index.html")))
}

func TestRun_DuplicateSlugs(t *testing.T) {
	files := map[string]string{
		"a.json": `{"slug":"soup","name":"Erste","ingredients":[],"instructions":[]}`,
		"b.json": `{"slug":"soup","name":"Zweite","ingredients":[],"instructions":[]}`,
	}

	t.Run("error", func(t *testing.T) {
		f := newFixture(t, files)
		_, err := New(f.cfg, WithLogger(quietLogger())).Run()
		require.Error(t, err)
		assert.NoDirExists(t, f.output)
	})

	t.Run("last wins", func(t *testing.T) {
		f := newFixture(t, files)
		f.cfg.Build.DuplicateSlugs = config.DuplicateSlugsLastWins
		f.run(t)
		testutil.NewFileAssertions(t, f.output).AssertFileContains("soup/index.html", "<h1>Zweite</h1>")

		m, err := manifest.Read(f.output)
		require.NoError(t, err)
		require.Len(t, m.Pages, 1)
		assert.Equal(t, "b.json", filepath.Base(m.Pages[0].Source))
	})
}

func TestRun_VerifyLinks(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a-cake.json": cakeJSON,
		"b-soup.json": soupJSON,
	})
	testutil.WriteFiles(t, f.output, map[string]string{"assets/style.css": "body{}"})
	f.cfg.Build.VerifyLinks = true

	var logs bytes.Buffer
	res, err := New(f.cfg, WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))).Run()
	require.NoError(t, err)

	// The cake image is referenced but never copied into the output.
	assert.Equal(t, 1, res.BrokenLinks)
	assert.Contains(t, logs.String(), "Broken link")
	assert.Contains(t, logs.String(), "assets/images/cake.jpg")
}

type recordingRecorder struct {
	mu       sync.Mutex
	stages   []string
	outcomes []metrics.Outcome
	pages    int
	recipes  int
}

func (r *recordingRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}
func (r *recordingRecorder) ObserveBuildDuration(time.Duration) {}
func (r *recordingRecorder) IncBuildOutcome(o metrics.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}
func (r *recordingRecorder) IncPagesWritten(n int) { r.pages += n }
func (r *recordingRecorder) SetRecipesLoaded(n int) { r.recipes = n }
func (r *recordingRecorder) SetBrokenLinks(int)     {}

func TestRun_RecordsMetrics(t *testing.T) {
	f := newFixture(t, map[string]string{"b-soup.json": soupJSON})
	rec := &recordingRecorder{}
	f.run(t, WithRecorder(rec))

	assert.Equal(t, []string{metrics.StageLoad, metrics.StagePages, metrics.StageIndex, metrics.StageManifest}, rec.stages)
	assert.Equal(t, []metrics.Outcome{metrics.OutcomeSuccess}, rec.outcomes)
	assert.Equal(t, 1, rec.pages)
	assert.Equal(t, 1, rec.recipes)

	f.cfg.RecipesDir = filepath.Join(f.root, "absent")
	_, err := New(f.cfg, WithLogger(quietLogger()), WithRecorder(rec)).Run()
	require.Error(t, err)
	assert.Equal(t, metrics.OutcomeFailed, rec.outcomes[len(rec.outcomes)-1])
}

func TestRun_MetricsTextfile(t *testing.T) {
	f := newFixture(t, map[string]string{"b-soup.json": soupJSON})
	f.cfg.Metrics.Textfile = filepath.Join(f.root, "recipebuilder.prom")
	f.run(t)

	data, err := os.ReadFile(f.cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "recipebuilder_recipes_loaded 1"))
	assert.Contains(t, string(data), `recipebuilder_build_outcomes_total{outcome="success"} 1`)
}

func TestRun_NilConfig(t *testing.T) {
	_, err := New(nil).Run()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}
