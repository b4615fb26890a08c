package render

import (
	"bytes"
	"encoding/json"
	"strings"

	"git.home.luguber.info/inful/recipebuilder/internal/recipe"
)

// Recipe is the schema.org Recipe object embedded in every page.
// Empty optional values are omitted rather than emitted as null.
type Recipe struct {
	Context            string      `json:"@context"`
	Type               string      `json:"@type"`
	Name               string      `json:"name,omitempty"`
	Image              string      `json:"image,omitempty"`
	RecipeYield        string      `json:"recipeYield,omitempty"`
	RecipeIngredient   []string    `json:"recipeIngredient"`
	RecipeInstructions []HowToStep `json:"recipeInstructions"`
}

// HowToStep wraps one instruction.
type HowToStep struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

// NewStructuredRecipe builds the JSON-LD object for r. imageURL may be empty.
func NewStructuredRecipe(r recipe.Recipe, imageURL string) Recipe {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	steps := make([]HowToStep, 0, len(r.Instructions))
	for _, text := range r.Instructions {
		steps = append(steps, HowToStep{Type: "HowToStep", Text: text})
	}
	return Recipe{
		Context:            "https://schema.org",
		Type:               "Recipe",
		Name:               r.Name,
		Image:              imageURL,
		RecipeYield:        r.Yield,
		RecipeIngredient:   ingredients,
		RecipeInstructions: steps,
	}
}

// StructuredData serializes the JSON-LD block with two-space indentation and
// every line indented by two more spaces to sit inside the script element.
// The encoder escapes <, > and & so the text cannot close the element early.
func StructuredData(r recipe.Recipe, imageURL string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewStructuredRecipe(r, imageURL)); err != nil {
		return "", err
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n"), nil
}
