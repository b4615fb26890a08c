package config

import (
	"fmt"
	"strings"

	foundationerrors "git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
)

// Built-in defaults. The user-visible strings match the German site the tool was written for.
const (
	DefaultBaseURL        = "https://example.github.io/recipes"
	DefaultRecipesDir     = "recipes"
	DefaultOutputDir      = "docs"
	DefaultImagesPath     = "assets/images"
	DefaultStylesheet     = "assets/style.css"
	DefaultImportEndpoint = "https://api.getbring.com/rest/bringrecipes/deeplink?url={url}&source=web"
	DefaultMetaFallback   = "Bring!-Import kompatibel"
)

// defaultApplier fills unset values for one configuration domain.
type defaultApplier struct {
	domain string
	apply  func(cfg *Config) error
}

var defaultAppliers = []defaultApplier{
	{"paths", applyPathDefaults},
	{"import", applyImportDefaults},
	{"site", applySiteDefaults},
	{"build", applyBuildDefaults},
	{"logging", applyLoggingDefaults},
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.apply(cfg); err != nil {
			return foundationerrors.WrapError(err, foundationerrors.CategoryConfig,
				fmt.Sprintf("invalid %s configuration", a.domain)).
				WithContext("domain", a.domain).
				Fatal().
				Build()
		}
	}
	return nil
}

func applyPathDefaults(cfg *Config) error {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.RecipesDir == "" {
		cfg.RecipesDir = DefaultRecipesDir
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDir
	}
	if cfg.Assets.ImagesPath == "" {
		cfg.Assets.ImagesPath = DefaultImagesPath
	}
	cfg.Assets.ImagesPath = strings.Trim(cfg.Assets.ImagesPath, "/")
	if cfg.Assets.Stylesheet == "" {
		cfg.Assets.Stylesheet = DefaultStylesheet
	}
	cfg.Assets.Stylesheet = strings.TrimLeft(cfg.Assets.Stylesheet, "/")
	return nil
}

func applyImportDefaults(cfg *Config) error {
	if cfg.Import.Endpoint == "" {
		cfg.Import.Endpoint = DefaultImportEndpoint
	}
	if cfg.Import.Label == "" {
		cfg.Import.Label = "🛒 In Bring! importieren"
	}
	return nil
}

func applySiteDefaults(cfg *Config) error {
	s := &cfg.Site
	setDefault(&s.Language, "de")
	setDefault(&s.IndexTitle, "Rezepte")
	setDefault(&s.IndexSubtitle, "Private Rezeptseiten für Bring!-Import")
	setDefault(&s.ListHeading, "📚 Liste")
	setDefault(&s.FooterTip, "Öffne ein Rezept und tippe auf „In Bring! importieren“.")
	setDefault(&s.MetaFallback, DefaultMetaFallback)
	setDefault(&s.DescriptionPrefix, "Privates Rezept: ")
	setDefault(&s.BackLabel, "← zurück")
	setDefault(&s.IngredientsLabel, "🧾 Zutaten")
	setDefault(&s.InstructionsLabel, "👨‍🍳 Zubereitung")
	setDefault(&s.NotesLabel, "📝 Notizen")
	return nil
}

func applyBuildDefaults(cfg *Config) error {
	policy, err := ParseDuplicateSlugPolicy(string(cfg.Build.DuplicateSlugs))
	if err != nil {
		return fmt.Errorf("duplicate_slugs: %w", err)
	}
	cfg.Build.DuplicateSlugs = policy
	return nil
}

func applyLoggingDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
