// Package staticfiles locates the prebuilt frontend bundle and answers
// whether a requested asset exists in it.
package staticfiles

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IndexFile is served for client-side routes.
const IndexFile = "index.html"

// DefaultCandidates are the build directories tried after STATIC_DIR.
var DefaultCandidates = []string{"public", filepath.Join("shruggbot-ui", "build")}

// ErrNoBuild indicates none of the candidate directories holds a bundle.
var ErrNoBuild = errors.New("no frontend build found")

// Lookup is the outcome of an asset lookup.
type Lookup int

// Lookup outcomes.
const (
	NotFound Lookup = iota
	Found
)

func (l Lookup) String() string {
	if l == Found {
		return "found"
	}

	return "not_found"
}

// Bundle is a resolved build directory.
type Bundle struct {
	root string
	fsys fs.FS
}

// Resolve returns the first directory containing IndexFile, trying
// staticDir first when set and then DefaultCandidates.
func Resolve(staticDir string) (*Bundle, error) {
	candidates := make([]string, 0, len(DefaultCandidates)+1)
	if staticDir != "" {
		candidates = append(candidates, staticDir)
	}

	candidates = append(candidates, DefaultCandidates...)

	for _, dir := range candidates {
		if isFile(filepath.Join(dir, IndexFile)) {
			return NewBundle(dir), nil
		}
	}

	return nil, ErrNoBuild
}

// NewBundle wraps dir without checking it.
func NewBundle(dir string) *Bundle {
	return &Bundle{root: dir, fsys: os.DirFS(dir)}
}

// Root returns the bundle directory.
func (b *Bundle) Root() string {
	return b.root
}

// FS returns the bundle as a file system.
func (b *Bundle) FS() fs.FS {
	return b.fsys
}

// Lookup reports whether urlPath names a regular file inside the bundle.
// It returns the bundle-relative name for Found results.
func (b *Bundle) Lookup(urlPath string) (string, Lookup) {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" || !fs.ValidPath(name) {
		return "", NotFound
	}

	info, err := fs.Stat(b.fsys, name)
	if err != nil || !info.Mode().IsRegular() {
		return "", NotFound
	}

	return name, Found
}

func isFile(p string) bool {
	info, err := os.Stat(p)

	return err == nil && info.Mode().IsRegular()
}
