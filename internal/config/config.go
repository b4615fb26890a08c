package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	foundationerrors "git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
)

// DefaultPath is the config file looked up when no path is given.
const DefaultPath = "recipebuilder.yaml"

// Config represents the application configuration.
type Config struct {
	// BaseURL is the public URL the output directory is served from.
	BaseURL    string        `yaml:"base_url"`
	RecipesDir string        `yaml:"recipes_dir"`
	Output     OutputConfig  `yaml:"output"`
	Assets     AssetsConfig  `yaml:"assets"`
	Import     ImportConfig  `yaml:"import"`
	Site       SiteConfig    `yaml:"site"`
	Build      BuildConfig   `yaml:"build"`
	Logging    LoggingConfig `yaml:"logging"`
	Metrics    MetricsConfig `yaml:"metrics"`
}

// OutputConfig controls where pages are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	// Clean removes pages of recipes that no longer exist in the input.
	Clean bool `yaml:"clean"`
}

// AssetsConfig describes pre-existing static assets under the output root.
type AssetsConfig struct {
	ImagesPath string `yaml:"images_path"`
	Stylesheet string `yaml:"stylesheet"`
}

// ImportConfig describes the third-party "import recipe" deeplink.
type ImportConfig struct {
	// Endpoint must contain the {url} placeholder.
	Endpoint string `yaml:"endpoint"`
	Label    string `yaml:"label"`
}

// SiteConfig holds the page language and the user-visible strings.
type SiteConfig struct {
	Language          string `yaml:"language"`
	IndexTitle        string `yaml:"index_title"`
	IndexSubtitle     string `yaml:"index_subtitle"`
	ListHeading       string `yaml:"list_heading"`
	FooterTip         string `yaml:"footer_tip"`
	MetaFallback      string `yaml:"meta_fallback"`
	DescriptionPrefix string `yaml:"description_prefix"`
	BackLabel         string `yaml:"back_label"`
	IngredientsLabel  string `yaml:"ingredients_label"`
	InstructionsLabel string `yaml:"instructions_label"`
	NotesLabel        string `yaml:"notes_label"`
}

// BuildConfig holds build behavior switches.
type BuildConfig struct {
	DuplicateSlugs DuplicateSlugPolicy `yaml:"duplicate_slugs"`
	VerifyLinks    bool                `yaml:"verify_links"`
}

// LoggingConfig selects log level and handler format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Load loads configuration from the specified file, applies defaults and validates it.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, foundationerrors.NewError(foundationerrors.CategoryNotFound,
				fmt.Sprintf("configuration file not found: %s", configPath)).
				WithContext("path", configPath).
				Build()
		}
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to unmarshal config").
			WithContext("path", configPath).
			Build()
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve loads configPath when set. Otherwise it loads DefaultPath if that file
// exists and falls back to the built-in defaults.
func Resolve(configPath string) (*Config, error) {
	if configPath != "" {
		return Load(configPath)
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return Load(DefaultPath)
	}
	loadEnvFile()
	return Default(), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	// Built-in values always normalize cleanly.
	_ = applyDefaults(&cfg)
	return &cfg
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return foundationerrors.ConfigError(
			fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			WithContext("path", configPath).
			Build()
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
