// Package manifest records which pages a build produced so later builds can
// prune pages of removed recipes and `check` can detect hand-edited output.
package manifest

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
)

// FileName is the manifest location relative to the output root.
const FileName = ".recipebuilder-manifest.json"

const currentVersion = 1

// Manifest lists the generated recipe pages. It carries no timestamps so an
// unchanged input produces a byte-identical manifest.
type Manifest struct {
	Version int    `json:"version"`
	Pages   []Page `json:"pages"`
}

// Page is one generated recipe page.
type Page struct {
	Slug        string `json:"slug"`
	Path        string `json:"path"`
	Source      string `json:"source"`
	Fingerprint string `json:"fingerprint"`
}

// Fingerprint returns the content fingerprint stored for a rendered page.
func Fingerprint(content []byte) string {
	return mdfp.CalculateFingerprintFromParts("", string(content))
}

// New builds a manifest from pages. Later entries replace earlier ones with
// the same slug; the result is sorted by slug.
func New(pages []Page) *Manifest {
	bySlug := make(map[string]Page, len(pages))
	for _, p := range pages {
		p.Path = filepath.ToSlash(p.Path)
		p.Source = filepath.ToSlash(p.Source)
		bySlug[p.Slug] = p
	}
	out := make([]Page, 0, len(bySlug))
	for _, p := range bySlug {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return &Manifest{Version: currentVersion, Pages: out}
}

// Read loads the manifest under root. A missing manifest yields an empty one.
func Read(root string) (*Manifest, error) {
	path := filepath.Join(root, FileName)
	// #nosec G304 -- path is the fixed manifest name below the output root.
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return &Manifest{Version: currentVersion}, nil
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read manifest").
			WithContext("path", path).
			Build()
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "parse manifest").
			WithContext("path", path).
			Build()
	}
	if m.Version != currentVersion {
		return nil, errors.ValidationError(fmt.Sprintf("unsupported manifest version %d", m.Version)).
			WithContext("path", path).
			Build()
	}
	return &m, nil
}

// Write stores the manifest under root.
func (m *Manifest) Write(root string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal manifest").Build()
	}
	path := filepath.Join(root, FileName)
	// #nosec G306 -- published alongside the pages.
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write manifest").
			WithContext("path", path).
			Build()
	}
	return nil
}

// Has reports whether slug is listed.
func (m *Manifest) Has(slug string) bool {
	for _, p := range m.Pages {
		if p.Slug == slug {
			return true
		}
	}
	return false
}

// Stale returns pages listed in previous but absent from current.
func Stale(previous, current *Manifest) []Page {
	var stale []Page
	for _, p := range previous.Pages {
		if !current.Has(p.Slug) {
			stale = append(stale, p)
		}
	}
	return stale
}

// Prune deletes the stale pages of previous below root and removes their
// directories when they end up empty. Nothing else is touched. It returns
// the relative paths that were removed.
func Prune(root string, previous, current *Manifest) ([]string, error) {
	var removed []string
	for _, p := range Stale(previous, current) {
		if !ownedPath(p) {
			return removed, errors.ValidationError(
				fmt.Sprintf("manifest entry %q has unexpected path %q", p.Slug, p.Path)).
				WithContext("slug", p.Slug).
				WithContext("path", p.Path).
				Build()
		}
		full := filepath.Join(root, filepath.FromSlash(p.Path))
		if err := os.Remove(full); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return removed, errors.WrapError(err, errors.CategoryFileSystem, "remove stale page").
				WithContext("path", full).
				Build()
		}
		// Only succeeds when the directory is empty.
		_ = os.Remove(filepath.Dir(full))
		removed = append(removed, p.Path)
	}
	return removed, nil
}

// ownedPath accepts only the {slug}/index.html layout the builder writes.
func ownedPath(p Page) bool {
	if p.Slug == "" || strings.ContainsAny(p.Slug, `/\`) || p.Slug == "." || p.Slug == ".." {
		return false
	}
	return p.Path == p.Slug+"/index.html"
}

// DriftReason explains why a page no longer matches the manifest.
type DriftReason string

const (
	DriftMissing  DriftReason = "missing"
	DriftModified DriftReason = "modified"
)

// Drift is a page whose file differs from what the last build wrote.
type Drift struct {
	Slug   string
	Path   string
	Reason DriftReason
}

// Verify recomputes the fingerprint of every listed page under root.
func Verify(root string) ([]Drift, error) {
	m, err := Read(root)
	if err != nil {
		return nil, err
	}
	var drifts []Drift
	for _, p := range m.Pages {
		full := filepath.Join(root, filepath.FromSlash(p.Path))
		// #nosec G304 -- path comes from the manifest below root.
		content, err := os.ReadFile(full)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				drifts = append(drifts, Drift{Slug: p.Slug, Path: p.Path, Reason: DriftMissing})
				continue
			}
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "read page").
				WithContext("path", full).
				Build()
		}
		if Fingerprint(content) != p.Fingerprint {
			drifts = append(drifts, Drift{Slug: p.Slug, Path: p.Path, Reason: DriftModified})
		}
	}
	return drifts, nil
}
