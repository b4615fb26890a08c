// Package render turns validated recipes into static HTML pages and the index page.
//
// Pages embed a schema.org Recipe JSON-LD block and a deeplink to a third-party
// import endpoint carrying the page's canonical URL. Free text is escaped by
// html/template; the JSON-LD payload is serialized so it cannot terminate the
// enclosing script element.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"git.home.luguber.info/inful/recipebuilder/internal/config"
	"git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/recipebuilder/internal/recipe"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Options configures a Renderer. BaseURL is the public URL of the output root.
type Options struct {
	BaseURL        string
	ImagesPath     string
	Stylesheet     string
	ImportEndpoint string
	ImportLabel    string
	Site           config.SiteConfig
}

// OptionsFromConfig derives renderer options from a loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:        cfg.BaseURL,
		ImagesPath:     cfg.Assets.ImagesPath,
		Stylesheet:     cfg.Assets.Stylesheet,
		ImportEndpoint: cfg.Import.Endpoint,
		ImportLabel:    cfg.Import.Label,
		Site:           cfg.Site,
	}
}

// Renderer renders recipe pages and the index page.
type Renderer struct {
	opts  Options
	links linkBuilder
	page  *template.Template
	index *template.Template
}

// New parses the embedded templates and returns a Renderer.
func New(opts Options) (*Renderer, error) {
	if opts.ImagesPath == "" {
		opts.ImagesPath = config.DefaultImagesPath
	}
	if opts.Stylesheet == "" {
		opts.Stylesheet = config.DefaultStylesheet
	}
	if opts.ImportEndpoint == "" {
		opts.ImportEndpoint = config.DefaultImportEndpoint
	}
	if opts.Site.MetaFallback == "" {
		opts.Site.MetaFallback = config.DefaultMetaFallback
	}

	links, err := newLinkBuilder(opts.BaseURL, opts.ImagesPath, opts.ImportEndpoint)
	if err != nil {
		return nil, err
	}

	page, err := template.ParseFS(templateFS, "templates/page.html.tmpl")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "parse page template").Build()
	}
	index, err := template.ParseFS(templateFS, "templates/index.html.tmpl")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "parse index template").Build()
	}

	return &Renderer{opts: opts, links: links, page: page, index: index}, nil
}

type pageData struct {
	Lang              string
	Title             string
	Description       string
	Stylesheet        string
	StructuredData    template.JS
	Meta              string
	ImportLink        string
	ImportLabel       string
	BackLabel         string
	ImagesPath        string
	ImageFile         string
	IngredientsLabel  string
	Ingredients       []string
	InstructionsLabel string
	Instructions      []string
	NotesLabel        string
	Notes             template.HTML
}

// RenderPage renders the complete HTML document for r.
func (rd *Renderer) RenderPage(r recipe.Recipe) ([]byte, error) {
	jsonld, err := StructuredData(r, rd.links.ImageURL(r.ImageFile))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "encode structured data").
			WithContext("slug", r.Slug).
			Build()
	}
	notes, err := renderNotes(r.Notes)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "render notes").
			WithContext("slug", r.Slug).
			Build()
	}

	site := rd.opts.Site
	data := pageData{
		Lang:              site.Language,
		Title:             r.Name,
		Description:       site.DescriptionPrefix + r.Name,
		Stylesheet:        rd.opts.Stylesheet,
		StructuredData:    template.JS(jsonld), // #nosec G203 -- JSON encoder escapes <, > and &.
		Meta:              MetaLine(r.Yield, r.Time, site.MetaFallback),
		ImportLink:        rd.links.ImportLink(r.Slug),
		ImportLabel:       rd.opts.ImportLabel,
		BackLabel:         site.BackLabel,
		ImagesPath:        rd.opts.ImagesPath,
		ImageFile:         r.ImageFile,
		IngredientsLabel:  site.IngredientsLabel,
		Ingredients:       r.Ingredients,
		InstructionsLabel: site.InstructionsLabel,
		Instructions:      r.Instructions,
		NotesLabel:        site.NotesLabel,
		Notes:             notes,
	}

	var buf bytes.Buffer
	if err := rd.page.Execute(&buf, data); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "render page").
			WithContext("slug", r.Slug).
			Build()
	}
	return buf.Bytes(), nil
}

type indexEntry struct {
	Slug string
	Name string
}

type indexData struct {
	Lang        string
	Title       string
	Subtitle    string
	Stylesheet  string
	ListHeading string
	FooterTip   string
	Entries     []indexEntry
}

// RenderIndex renders the listing page with one link per recipe, in the given order.
func (rd *Renderer) RenderIndex(recipes []recipe.Recipe) ([]byte, error) {
	site := rd.opts.Site
	data := indexData{
		Lang:        site.Language,
		Title:       site.IndexTitle,
		Subtitle:    site.IndexSubtitle,
		Stylesheet:  rd.opts.Stylesheet,
		ListHeading: site.ListHeading,
		FooterTip:   site.FooterTip,
		Entries:     make([]indexEntry, 0, len(recipes)),
	}
	for _, r := range recipes {
		data.Entries = append(data.Entries, indexEntry{Slug: r.Slug, Name: r.Name})
	}

	var buf bytes.Buffer
	if err := rd.index.Execute(&buf, data); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "render index").Build()
	}
	return buf.Bytes(), nil
}

// PagePath returns the page location for slug relative to the output root.
func PagePath(slug string) string {
	return slug + "/index.html"
}

// WritePage renders r and writes it to {outputRoot}/{slug}/index.html,
// replacing any existing file. It returns the written path.
func (rd *Renderer) WritePage(outputRoot string, r recipe.Recipe) (string, error) {
	content, err := rd.RenderPage(r)
	if err != nil {
		return "", err
	}
	path, err := WriteOutputFile(outputRoot, PagePath(r.Slug), content)
	if err != nil {
		return "", fmt.Errorf("write page %q: %w", r.Slug, err)
	}
	return path, nil
}

// WriteIndex renders the index and writes it to {outputRoot}/index.html.
func (rd *Renderer) WriteIndex(outputRoot string, recipes []recipe.Recipe) (string, error) {
	content, err := rd.RenderIndex(recipes)
	if err != nil {
		return "", err
	}
	return WriteOutputFile(outputRoot, "index.html", content)
}
