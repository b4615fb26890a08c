// Package errors provides the classified error type used across recipebuilder.
//
// Every failure the build knows how to describe is a ClassifiedError carrying a
// category, a severity and a small context map (file, field, slug, path). The CLI
// adapter turns categories into process exit codes.
//
// Example usage:
//
//	err := errors.ValidationError(fmt.Sprintf("%s: missing required field %q", path, "slug")).
//		WithContext("file", path).
//		WithContext("field", "slug").
//		Build()
package errors
