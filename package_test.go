package abuild

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/tarutil"
)

var packageContents = map[string]string{
	"index.html":       "<html></html>",
	"app.js":           "main();",
	"style.css":        "body{}",
	"img/a.png":        "png-a",
	"img/b.png":        "png-b",
	"data/levels.json": "[]",
	"README":           "readme",
}

func buildAll(t *testing.T, sys *System, root string, order []string) {
	t.Helper()
	for _, name := range order {
		_, err := sys.Write(
			filepath.Join(root, name), []byte(packageContents[name]), false,
		)
		require.NoError(t, err)
	}
}

func readMembers(t *testing.T, f string) map[string]string {
	t.Helper()
	names, contents := readArchive(t, f)
	m := make(map[string]string)
	for i, name := range names {
		m[name] = contents[i]
	}
	return m
}

func readArchive(t *testing.T, f string) ([]string, []string) {
	t.Helper()
	file, err := os.Open(f)
	require.NoError(t, err)
	defer file.Close()

	gz, err := gzip.NewReader(file)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	var names, contents []string
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		bs, err := io.ReadAll(tr)
		require.NoError(t, err)
		names = append(names, h.Name)
		contents = append(contents, string(bs))
	}
	return names, contents
}

func TestPackage_deterministicOrder(t *testing.T) {
	forward := []string{
		"index.html", "app.js", "style.css", "img/a.png", "img/b.png",
		"data/levels.json", "README",
	}
	var backward []string
	for i := len(forward) - 1; i >= 0; i-- {
		backward = append(backward, forward[i])
	}

	var lists [][]string
	for _, order := range [][]string{forward, backward} {
		dir := t.TempDir()
		root := filepath.Join(dir, "build")
		sys := NewSystem()
		buildAll(t, sys, root, order)

		out := filepath.Join(dir, "game-1.0.tar.gz")
		require.NoError(t, sys.Package(out, root))

		names, _ := readArchive(t, out)
		lists = append(lists, names)
		assert.Equal(t, packageContents, readMembers(t, out))
	}
	assert.Equal(t, lists[0], lists[1])

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, "package_members", []byte(strings.Join(lists[0], "\n")+"\n"))
}

func TestPackage_skipsIntermediate(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "build")
	sys := NewSystem()

	part := filepath.Join(root, "part1.js")
	_, err := sys.Write(part, []byte("a"), false)
	require.NoError(t, err)
	_, err = sys.Write(filepath.Join(root, "all.js"), []byte("a"), false)
	require.NoError(t, err)
	_, err = sys.Write(filepath.Join(dir, "outside.txt"), []byte("x"), false)
	require.NoError(t, err)
	require.NoError(t, sys.MarkIntermediate(part))

	out := filepath.Join(dir, "p.tar.gz")
	require.NoError(t, sys.Package(out, root))
	names, _ := readArchive(t, out)
	assert.Equal(t, []string{"all.js"}, names)
}

func TestPackage_noFiles(t *testing.T) {
	dir := t.TempDir()
	sys := NewSystem()

	out := filepath.Join(dir, "empty.tar.gz")
	err := sys.Package(out, filepath.Join(dir, "build"))
	require.Error(t, err)
	assert.True(t, IsBuildFailure(err))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPackage_missingFile(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "build")
	sys := NewSystem()
	buildAll(t, sys, root, []string{"app.js", "style.css"})

	// The file is gone from disk, but still in the cache.
	require.NoError(t, os.Remove(filepath.Join(root, "style.css")))

	out := filepath.Join(dir, "broken.tar.gz")
	err := sys.Package(out, root)
	require.Error(t, err)
	assert.True(t, errcode.IsNotFound(err), err.Error())

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCreatePackage_removesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	ts := tarutil.NewStream()
	ts.AddFile("gone.js", tarutil.ModeMeta(outputMode), filepath.Join(dir, "gone.js"))

	out := filepath.Join(dir, "broken.tar.gz")
	require.Error(t, createPackage(out, ts))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPackage_outIsDirectory(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "build")
	sys := NewSystem()
	buildAll(t, sys, root, []string{"app.js"})

	out := filepath.Join(dir, "dist")
	require.NoError(t, os.Mkdir(out, 0755))
	require.Error(t, sys.Package(out, root))

	info, err := os.Stat(out)
	require.NoError(t, err, "directory removed")
	assert.True(t, info.IsDir())
}

func TestFiles_rootWithSlash(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "build")
	sys := NewSystem()
	buildAll(t, sys, root, []string{"app.js", "img/a.png", "README"})

	want := []string{"README", "app.js", "img/a.png"}
	assert.Equal(t, want, sys.Files(root))
	assert.Equal(t, want, sys.Files(root+"/"))
}
