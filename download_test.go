package abuild

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	const content = "console.log('lib');"
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			hits++
			if req.URL.Path != "/lib.js" {
				http.NotFound(w, req)
				return
			}
			w.Write([]byte(content))
		},
	))
	defer server.Close()

	dir := t.TempDir()
	e := &env{
		sys:    NewSystem(),
		srcDir: filepath.Join(dir, "src"),
		outDir: filepath.Join(dir, "out"),
		built:  make(map[string][]*builtOut),
	}

	d, err := newDownload(&Download{
		URL:      server.URL + "/lib.js",
		Checksum: "sha256:" + hexOf(content),
		Out:      "lib.js",
	})
	require.NoError(t, err)
	assert.Equal(t, "lib.js", d.meta().name)

	outs, err := d.build(e)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, content, readString(t, outs[0].out))

	_, err = d.build(e)
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "second build is a cache hit")

	bad, err := newDownload(&Download{
		URL:      server.URL + "/lib.js",
		Checksum: "sha256:" + hexOf("something else"),
		Out:      "bad.js",
	})
	require.NoError(t, err)
	_, err = bad.build(e)
	require.Error(t, err)
	assert.True(t, IsBuildFailure(err))

	missing, err := newDownload(&Download{
		URL:      server.URL + "/nope.js",
		Checksum: "sha256:" + hexOf(content),
		Out:      "nope.js",
	})
	require.NoError(t, err)
	_, err = missing.build(e)
	require.Error(t, err)
}

func TestNewDownload_invalid(t *testing.T) {
	for _, r := range []*Download{
		{URL: "http://x/a", Checksum: "md5:abc", Out: "a"},
		{URL: "http://x/a", Checksum: "sha256:abc"},
	} {
		_, err := newDownload(r)
		assert.Error(t, err)
	}
}
