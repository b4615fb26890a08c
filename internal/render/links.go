package render

import (
	"fmt"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/recipebuilder/internal/config"
	"git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
)

// linkBuilder derives the absolute URLs a page refers to.
type linkBuilder struct {
	baseURL    string
	imagesPath string
	endpoint   string
}

func newLinkBuilder(baseURL, imagesPath, endpoint string) (linkBuilder, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return linkBuilder{}, errors.ConfigError(fmt.Sprintf("base URL must be absolute, got %q", baseURL)).
			WithContext("field", "base_url").
			Build()
	}
	if strings.Count(endpoint, config.URLPlaceholder) != 1 {
		return linkBuilder{}, errors.ConfigError(
			fmt.Sprintf("import endpoint must contain %s exactly once", config.URLPlaceholder)).
			WithContext("field", "import.endpoint").
			Build()
	}
	return linkBuilder{
		baseURL:    baseURL,
		imagesPath: strings.Trim(imagesPath, "/"),
		endpoint:   endpoint,
	}, nil
}

// CanonicalURL is the public URL of the page for slug.
func (l linkBuilder) CanonicalURL(slug string) string {
	return l.baseURL + "/" + slug + "/"
}

// ImportLink embeds the percent-encoded canonical URL into the import endpoint.
func (l linkBuilder) ImportLink(slug string) string {
	return strings.Replace(l.endpoint, config.URLPlaceholder, EncodeComponent(l.CanonicalURL(slug)), 1)
}

// ImageURL is the absolute hero image URL, or "" when no image is configured.
func (l linkBuilder) ImageURL(imageFile string) string {
	if imageFile == "" {
		return ""
	}
	return l.baseURL + "/" + l.imagesPath + "/" + imageFile
}

// EncodeComponent percent-encodes every byte outside the RFC 3986 unreserved set.
// Spaces become %20, never '+'.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
