package recipe

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/recipebuilder/internal/config"
	"git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestLoad_OrderedByFilename(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"b-soup.json":  `{"slug":"soup","name":"Suppe","ingredients":["Wasser"],"instructions":["Kochen"],"yield":"4 Portionen"}`,
		"a-cake.json":  `{"slug":"cake","name":"Kuchen","ingredients":[],"instructions":["Backen","Essen"],"time":"1 h","image_file":"cake.jpg"}`,
		"c-salad.yaml": "slug: salad\nname: Salat\ningredients:\n  - Gurke\ninstructions:\n  - Schneiden\nnotes: \"*frisch*\"\n",
		"README.md":    "# Rezepte\n\nignored",
		"notes.txt":    "ignored",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o750))

	recipes, err := Load(dir, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, recipes, 3)

	assert.Equal(t, []string{"cake", "soup", "salad"}, []string{recipes[0].Slug, recipes[1].Slug, recipes[2].Slug})

	cake := recipes[0]
	assert.Equal(t, "Kuchen", cake.Name)
	assert.NotNil(t, cake.Ingredients)
	assert.Empty(t, cake.Ingredients)
	assert.Equal(t, []string{"Backen", "Essen"}, cake.Instructions)
	assert.Equal(t, "1 h", cake.Time)
	assert.True(t, cake.HasImage())
	assert.Equal(t, filepath.Join(dir, "a-cake.json"), cake.Source)

	assert.Equal(t, "4 Portionen", recipes[1].Yield)
	assert.False(t, recipes[1].HasImage())
	assert.Equal(t, "*frisch*", recipes[2].Notes)
}

func TestLoad_MissingRequiredField(t *testing.T) {
	for _, field := range RequiredFields {
		t.Run(field, func(t *testing.T) {
			fields := map[string]string{
				"slug":         `"x"`,
				"name":         `"X"`,
				"ingredients":  `[]`,
				"instructions": `[]`,
			}
			delete(fields, field)
			body := "{"
			first := true
			for _, k := range RequiredFields {
				v, ok := fields[k]
				if !ok {
					continue
				}
				if !first {
					body += ","
				}
				body += `"` + k + `":` + v
				first = false
			}
			body += "}"

			dir := writeFiles(t, map[string]string{
				"a-ok.json":  `{"slug":"ok","name":"Ok","ingredients":[],"instructions":[]}`,
				"b-bad.json": body,
			})

			_, err := Load(dir, LoadOptions{})
			require.Error(t, err)

			classified, ok := errors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, errors.CategoryValidation, classified.Category())
			file, _ := classified.Context().GetString("file")
			assert.Equal(t, filepath.Join(dir, "b-bad.json"), file)
			got, _ := classified.Context().GetString("field")
			assert.Equal(t, field, got)
			assert.Contains(t, err.Error(), "b-bad.json")
			assert.Contains(t, err.Error(), field)
		})
	}
}

func TestLoad_NullRequiredFieldIsMissing(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.json": `{"slug":"a","name":null,"ingredients":[],"instructions":[]}`,
	})
	_, err := Load(dir, LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required field "name"`)
}

func TestLoad_MalformedInputPropagates(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"broken.json": `{"slug": "a",`,
	})
	_, err := Load(dir, LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
	assert.False(t, errors.HasCategory(err, errors.CategoryValidation))

	dir = writeFiles(t, map[string]string{
		"typed.json": `{"slug":"a","name":"A","ingredients":"salt","instructions":[]}`,
	})
	_, err = Load(dir, LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "typed.json")
}

func TestLoad_UnsafeSlug(t *testing.T) {
	for _, slug := range []string{"", "..", "a/b", `a\b`, "/abs"} {
		t.Run(slug, func(t *testing.T) {
			dir := writeFiles(t, map[string]string{
				"a.json": `{"slug":"` + escapeJSON(slug) + `","name":"A","ingredients":[],"instructions":[]}`,
			})
			_, err := Load(dir, LoadOptions{})
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
		})
	}
}

func escapeJSON(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '\\' || r == '"' {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestLoad_DuplicateSlugs(t *testing.T) {
	files := map[string]string{
		"a.json": `{"slug":"soup","name":"First","ingredients":[],"instructions":[]}`,
		"b.json": `{"slug":"soup","name":"Second","ingredients":[],"instructions":[]}`,
	}

	t.Run("rejected by default", func(t *testing.T) {
		dir := writeFiles(t, files)
		_, err := Load(dir, LoadOptions{})
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
		assert.Contains(t, err.Error(), "duplicate slug")
		assert.Contains(t, err.Error(), "a.json")
		assert.Contains(t, err.Error(), "b.json")
	})

	t.Run("last wins", func(t *testing.T) {
		dir := writeFiles(t, files)
		var logs bytes.Buffer
		recipes, err := Load(dir, LoadOptions{
			DuplicateSlugs: config.DuplicateSlugsLastWins,
			Logger:         slog.New(slog.NewTextHandler(&logs, nil)),
		})
		require.NoError(t, err)
		require.Len(t, recipes, 2)
		assert.Equal(t, "Second", recipes[1].Name)
		assert.Contains(t, logs.String(), "Duplicate slug")
	})
}

func TestLoad_MarkdownRecipe(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bread.md": "---\nslug: bread\nname: Brot\ningredients: [Mehl, Wasser]\ninstructions: [Kneten, Backen]\nnotes: ignored\n---\n\nTeig über Nacht *gehen* lassen.\n",
		"plain.md": "---\nslug: plain\nname: Plain\ningredients: []\ninstructions: []\nnotes: kept\n---\n",
	})

	recipes, err := Load(dir, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "bread", recipes[0].Slug)
	assert.Equal(t, []string{"Mehl", "Wasser"}, recipes[0].Ingredients)
	assert.Equal(t, "Teig über Nacht *gehen* lassen.", recipes[0].Notes)
	assert.Equal(t, "kept", recipes[1].Notes)
}

func TestLoad_MarkdownMissingField(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bread.md": "---\nslug: bread\ningredients: []\ninstructions: []\n---\nbody\n",
	})
	_, err := Load(dir, LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required field "name"`)

	dir = writeFiles(t, map[string]string{
		"broken.md": "---\nslug: bread\n",
	})
	_, err = Load(dir, LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.md")
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"), LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("a.json"))
	assert.True(t, SupportedExtension("a.YAML"))
	assert.True(t, SupportedExtension("a.yml"))
	assert.True(t, SupportedExtension("a.md"))
	assert.False(t, SupportedExtension("a.txt"))
}
