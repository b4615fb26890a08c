package linkverify

import (
	stderrors "errors"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/recipebuilder/internal/foundation/errors"
)

// BrokenLink is an internal link whose target does not exist.
type BrokenLink struct {
	Page   string // page containing the link, relative to the root
	Link   Link
	Target string // resolved target, relative to the root
}

// Report summarizes a verification run.
type Report struct {
	Pages   int
	Checked int
	Broken  []BrokenLink
}

// OK reports whether no broken links were found.
func (r *Report) OK() bool { return len(r.Broken) == 0 }

// VerifyTree walks every HTML file below root and checks that each internal
// link resolves to an existing file. Relative links resolve against the
// directory of the page; root-relative links against root. A link ending in
// "/" refers to index.html inside that directory.
func VerifyTree(root string) (*Report, error) {
	var pages []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(p), ".html") {
			pages = append(pages, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk output tree").
			WithContext("path", root).
			Build()
	}
	sort.Strings(pages)

	report := &Report{Pages: len(pages)}
	for _, page := range pages {
		links, err := ExtractLinks(page)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, page)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryInternal, "relativize page path").Build()
		}
		rel = filepath.ToSlash(rel)

		for _, link := range links {
			if !IsInternal(link.URL) {
				continue
			}
			target, ok := resolve(rel, link.URL)
			if !ok {
				continue
			}
			report.Checked++
			exists, err := fileExists(filepath.Join(root, filepath.FromSlash(target)))
			if err != nil {
				return nil, err
			}
			if !exists {
				report.Broken = append(report.Broken, BrokenLink{Page: rel, Link: link, Target: target})
			}
		}
	}
	return report, nil
}

// resolve maps link, found in page, to a slash-separated path below the root.
// False means the link has no path component to check.
func resolve(page, link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil || u.Path == "" {
		return "", false
	}
	var target string
	if strings.HasPrefix(u.Path, "/") {
		target = path.Clean(u.Path)
	} else {
		target = path.Join("/", path.Dir(page), u.Path)
	}
	if strings.HasSuffix(u.Path, "/") || target == "/" {
		target = path.Join(target, "index.html")
	}
	return strings.TrimPrefix(target, "/"), true
}

func fileExists(p string) (bool, error) {
	info, err := os.Stat(p)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.WrapError(err, errors.CategoryFileSystem, "stat link target").
			WithContext("path", p).
			Build()
	}
	if info.IsDir() {
		return fileExists(filepath.Join(p, "index.html"))
	}
	return true, nil
}
