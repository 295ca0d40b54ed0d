// Package pages resolves the static HTML pages a benchmark run loads and
// generates deterministic fixture pages for trying the tool out.
package pages

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Default is the page list benchmarked when none is configured.
var Default = []string{
	"index.html",
	"enquiry.html",
	"register.html",
	"profile.html",
	"product1.html",
	"product2.html",
	"workshop.html",
	"promotion.html",
	"enhancement.html",
	"enhancement2.html",
}

// Page is a page file resolved against a base directory.
type Page struct {
	Name string
	Path string
	URL  string
}

// Resolve returns the absolute path and file URL for name under baseDir.
func Resolve(baseDir, name string) (Page, error) {
	abs, err := filepath.Abs(filepath.Join(baseDir, name))
	if err != nil {
		return Page{}, fmt.Errorf("resolve %s: %w", name, err)
	}

	return Page{
		Name: name,
		Path: abs,
		URL:  FileURL(abs),
	}, nil
}

// Exists reports whether the page file is present on disk.
func (p Page) Exists() (bool, error) {
	info, err := os.Stat(p.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", p.Path, err)
	}

	return !info.IsDir(), nil
}

// FileURL converts an absolute filesystem path into a file:// URL.
func FileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		// Windows drive paths need a leading slash: file:///C:/...
		p = "/" + p
	}

	u := url.URL{Scheme: "file", Path: p}

	return u.String()
}

// Label strips the .html suffix for chart categories.
func Label(name string) string {
	return strings.TrimSuffix(name, ".html")
}
