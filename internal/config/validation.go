package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	foundationerrors "git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
)

// URLPlaceholder marks where the encoded page URL goes in Import.Endpoint.
const URLPlaceholder = "{url}"

// Validate checks a configuration that already had defaults applied.
func Validate(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	for _, check := range []func() error{
		v.validateBaseURL,
		v.validateImport,
		v.validatePaths,
		v.validateSite,
		v.validateBuild,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) fail(field, message string) error {
	return foundationerrors.ConfigError(fmt.Sprintf("%s: %s", field, message)).
		WithContext("field", field).
		Build()
}

func (cv *configurationValidator) validateBaseURL() error {
	u, err := url.Parse(cv.config.BaseURL)
	if err != nil {
		return cv.fail("base_url", err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return cv.fail("base_url", fmt.Sprintf("must be an absolute http(s) URL, got %q", cv.config.BaseURL))
	}
	if u.Host == "" {
		return cv.fail("base_url", "missing host")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return cv.fail("base_url", "must not contain a query or fragment")
	}
	return nil
}

func (cv *configurationValidator) validateImport() error {
	endpoint := cv.config.Import.Endpoint
	if strings.Count(endpoint, URLPlaceholder) != 1 {
		return cv.fail("import.endpoint", fmt.Sprintf("must contain %s exactly once", URLPlaceholder))
	}
	u, err := url.Parse(strings.Replace(endpoint, URLPlaceholder, "x", 1))
	if err != nil {
		return cv.fail("import.endpoint", err.Error())
	}
	if !u.IsAbs() {
		return cv.fail("import.endpoint", "must be an absolute URL")
	}
	return nil
}

func (cv *configurationValidator) validatePaths() error {
	for field, p := range map[string]string{
		"assets.images_path": cv.config.Assets.ImagesPath,
		"assets.stylesheet":  cv.config.Assets.Stylesheet,
	} {
		clean := filepath.ToSlash(filepath.Clean(p))
		if clean == ".." || strings.HasPrefix(clean, "../") {
			return cv.fail(field, "must stay inside the output directory")
		}
	}
	if filepath.Clean(cv.config.RecipesDir) == filepath.Clean(cv.config.Output.Directory) {
		return cv.fail("output.directory", "must differ from recipes_dir")
	}
	return nil
}

func (cv *configurationValidator) validateSite() error {
	tag, err := language.Parse(cv.config.Site.Language)
	if err != nil {
		return cv.fail("site.language", fmt.Sprintf("invalid BCP 47 tag %q: %v", cv.config.Site.Language, err))
	}
	cv.config.Site.Language = tag.String()
	return nil
}

func (cv *configurationValidator) validateBuild() error {
	if !duplicateSlugNormalizer.Valid(cv.config.Build.DuplicateSlugs) {
		return cv.fail("build.duplicate_slugs", fmt.Sprintf("unknown policy %q", cv.config.Build.DuplicateSlugs))
	}
	return nil
}
