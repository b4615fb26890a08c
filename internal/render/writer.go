package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
)

// WriteOutputFile writes content to relativePath below outputRoot.
//
// Parent directories are created as needed and an existing file is replaced.
// The path must stay inside outputRoot.
func WriteOutputFile(outputRoot, relativePath string, content []byte) (string, error) {
	if outputRoot == "" {
		return "", errors.InternalError("output directory is required").Build()
	}
	cleanRel := filepath.Clean(filepath.FromSlash(relativePath))
	if relativePath == "" || filepath.IsAbs(cleanRel) || cleanRel == ".." ||
		strings.HasPrefix(cleanRel, ".."+string(filepath.Separator)) {
		return "", errors.ValidationError(fmt.Sprintf("output path %q escapes the output directory", relativePath)).
			WithContext("path", relativePath).
			Build()
	}

	fullPath := filepath.Join(outputRoot, cleanRel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			WithContext("path", filepath.Dir(fullPath)).
			Fatal().
			Build()
	}
	// #nosec G306 -- generated pages are published as-is.
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "write output file").
			WithContext("path", fullPath).
			Fatal().
			Build()
	}
	return fullPath, nil
}
