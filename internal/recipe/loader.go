package recipe

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/recipebuilder/internal/config"
	"git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/recipebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/recipebuilder/internal/logfields"
)

// LoadOptions tunes Load.
type LoadOptions struct {
	DuplicateSlugs config.DuplicateSlugPolicy
	Logger         *slog.Logger
}

type format struct {
	generic func(data []byte) (map[string]any, error)
	typed   func(data []byte, r *Recipe) error
}

var formats = map[string]format{
	".json": {
		generic: func(data []byte) (map[string]any, error) {
			var m map[string]any
			err := json.Unmarshal(data, &m)
			return m, err
		},
		typed: func(data []byte, r *Recipe) error { return json.Unmarshal(data, r) },
	},
	".yaml": yamlFormat,
	".yml":  yamlFormat,
	".md":   markdownFormat,
}

// ErrNoFrontmatter marks a Markdown file without a YAML block. Load skips
// such files so READMEs can live next to the recipes.
var ErrNoFrontmatter = stderrors.New("markdown file has no frontmatter")

var yamlFormat = format{
	generic: func(data []byte) (map[string]any, error) {
		var m map[string]any
		err := yaml.Unmarshal(data, &m)
		return m, err
	},
	typed: func(data []byte, r *Recipe) error { return yaml.Unmarshal(data, r) },
}

// markdownFormat reads the record from the YAML frontmatter. A non-empty body
// replaces the notes field.
var markdownFormat = format{
	generic: func(data []byte) (map[string]any, error) {
		fm, _, had, err := frontmatter.Split(data)
		if err != nil {
			return nil, err
		}
		if !had {
			return nil, ErrNoFrontmatter
		}
		return frontmatter.ParseYAML(fm)
	},
	typed: func(data []byte, r *Recipe) error {
		fm, body, _, err := frontmatter.Split(data)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(fm, r); err != nil {
			return err
		}
		if notes := strings.TrimSpace(string(body)); notes != "" {
			r.Notes = notes
		}
		return nil
	},
}

// SupportedExtension reports whether files with name are read by Load.
func SupportedExtension(name string) bool {
	_, ok := formats[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Load reads every recipe file in dir, ordered by filename.
//
// The first invalid file aborts the load. A required key that is absent or null
// yields a validation error naming the file and the key.
func Load(dir string, opts LoadOptions) ([]Recipe, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	policy := opts.DuplicateSlugs
	if policy == "" {
		policy = config.DuplicateSlugsError
	}

	// os.ReadDir returns entries sorted by filename.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read recipes directory").
			WithContext("path", dir).
			Fatal().
			Build()
	}

	recipes := make([]Recipe, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !SupportedExtension(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		r, err := LoadFile(path)
		if stderrors.Is(err, ErrNoFrontmatter) {
			logger.Debug("Skipping Markdown file without frontmatter", logfields.File(path))
			continue
		}
		if err != nil {
			return nil, err
		}

		if previous, dup := seen[r.Slug]; dup {
			if policy == config.DuplicateSlugsError {
				return nil, errors.ValidationError(
					fmt.Sprintf("%s: duplicate slug %q (already defined in %s)", path, r.Slug, previous)).
					WithContext("file", path).
					WithContext("slug", r.Slug).
					WithContext("previous", previous).
					Build()
			}
			logger.Warn("Duplicate slug, later file overwrites earlier page",
				logfields.Slug(r.Slug), logfields.File(path), slog.String("previous", previous))
		}
		seen[r.Slug] = path

		logger.Debug("Loaded recipe", logfields.Slug(r.Slug), logfields.File(path))
		recipes = append(recipes, r)
	}

	return recipes, nil
}

// LoadFile reads and validates a single recipe file.
func LoadFile(path string) (Recipe, error) {
	f, ok := formats[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return Recipe{}, errors.ValidationError(fmt.Sprintf("%s: unsupported recipe file type", path)).
			WithContext("file", path).
			Build()
	}

	// #nosec G304 -- path comes from the configured recipes directory.
	data, err := os.ReadFile(path)
	if err != nil {
		return Recipe{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to read recipe file").
			WithContext("file", path).
			Fatal().
			Build()
	}

	fields, err := f.generic(data)
	if err != nil {
		return Recipe{}, fmt.Errorf("%s: %w", path, err)
	}
	for _, key := range RequiredFields {
		if v, present := fields[key]; !present || v == nil {
			return Recipe{}, missingField(path, key)
		}
	}

	var r Recipe
	if err := f.typed(data, &r); err != nil {
		return Recipe{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := validateSlug(path, r.Slug); err != nil {
		return Recipe{}, err
	}
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Instructions == nil {
		r.Instructions = []string{}
	}
	r.Source = path
	return r, nil
}

func missingField(path, field string) error {
	return errors.ValidationError(fmt.Sprintf("%s: missing required field %q", path, field)).
		WithContext("file", path).
		WithContext("field", field).
		Build()
}

// validateSlug rejects slugs that would not map to a single directory below the output root.
func validateSlug(path, slug string) error {
	var reason string
	switch {
	case strings.TrimSpace(slug) == "":
		reason = "is empty"
	case slug == "." || slug == "..":
		reason = "is a relative directory reference"
	case strings.ContainsAny(slug, `/\`):
		reason = "contains a path separator"
	case filepath.IsAbs(slug) || filepath.VolumeName(slug) != "":
		reason = "is an absolute path"
	default:
		return nil
	}
	return errors.ValidationError(fmt.Sprintf("%s: slug %q %s", path, slug, reason)).
		WithContext("file", path).
		WithContext("field", "slug").
		WithContext("slug", slug).
		Build()
}
