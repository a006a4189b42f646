package staticfiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestResolvePrefersStaticDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, IndexFile), "<html></html>")

	b, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, b.Root())
}

func TestResolveFallsBackToCandidates(t *testing.T) {
	wd := t.TempDir()
	t.Chdir(wd)

	_, err := Resolve("")
	require.ErrorIs(t, err, ErrNoBuild)

	writeFile(t, filepath.Join(wd, "shruggbot-ui", "build", IndexFile), "<html></html>")

	b, err := Resolve(filepath.Join(wd, "missing"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("shruggbot-ui", "build"), b.Root())

	writeFile(t, filepath.Join(wd, "public", IndexFile), "<html></html>")

	b, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "public", b.Root())
}

func TestBundleLookup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, IndexFile), "<html></html>")
	writeFile(t, filepath.Join(dir, "static", "js", "main.js"), "console.log(1)")

	b := NewBundle(dir)

	tests := []struct {
		path     string
		wantName string
		want     Lookup
	}{
		{path: "/index.html", wantName: "index.html", want: Found},
		{path: "/static/js/main.js", wantName: "static/js/main.js", want: Found},
		{path: "/static/js", want: NotFound},
		{path: "/", want: NotFound},
		{path: "/achievements", want: NotFound},
		{path: "/../../etc/passwd", want: NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			name, got := b.Lookup(tt.path)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantName, name)
		})
	}
}
