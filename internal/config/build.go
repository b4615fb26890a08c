package config

import "git.home.luguber.info/inful/recipebuilder/internal/foundation/normalization"

// DuplicateSlugPolicy decides what happens when two recipe files share a slug.
type DuplicateSlugPolicy string

const (
	// DuplicateSlugsError rejects the input before anything is written.
	DuplicateSlugsError DuplicateSlugPolicy = "error"
	// DuplicateSlugsLastWins lets the later file overwrite the earlier page.
	DuplicateSlugsLastWins DuplicateSlugPolicy = "last_wins"
)

var duplicateSlugNormalizer = normalization.NewNormalizer(map[string]DuplicateSlugPolicy{
	"error":     DuplicateSlugsError,
	"reject":    DuplicateSlugsError,
	"last_wins": DuplicateSlugsLastWins,
	"overwrite": DuplicateSlugsLastWins,
}, DuplicateSlugsError)

// ParseDuplicateSlugPolicy parses raw, rejecting unknown values. Empty input
// yields DuplicateSlugsError.
func ParseDuplicateSlugPolicy(raw string) (DuplicateSlugPolicy, error) {
	return duplicateSlugNormalizer.Parse(raw)
}
