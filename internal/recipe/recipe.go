// Package recipe loads and validates recipe records from a directory of data files.
package recipe

// Recipe is one validated recipe record.
type Recipe struct {
	Slug         string   `json:"slug" yaml:"slug"`
	Name         string   `json:"name" yaml:"name"`
	Ingredients  []string `json:"ingredients" yaml:"ingredients"`
	Instructions []string `json:"instructions" yaml:"instructions"`
	Yield        string   `json:"yield,omitempty" yaml:"yield,omitempty"`
	Time         string   `json:"time,omitempty" yaml:"time,omitempty"`
	ImageFile    string   `json:"image_file,omitempty" yaml:"image_file,omitempty"`
	// Notes is optional Markdown shown below the instructions.
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`

	// Source is the file the record was read from.
	Source string `json:"-" yaml:"-"`
}

// RequiredFields lists the keys every recipe file must define with a non-null value.
var RequiredFields = []string{"slug", "name", "ingredients", "instructions"}

// HasImage reports whether a hero image is configured.
func (r Recipe) HasImage() bool {
	return r.ImageFile != ""
}
