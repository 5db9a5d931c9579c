package abuild

import (
	"path"
	"path/filepath"
	"strings"
)

// makeRelPath makes a path that is under p.
// It cannot escape p.
func makeRelPath(p, f string) string {
	f = path.Clean(path.Join("/", f))
	return strings.TrimPrefix(path.Join("/", p, f), "/")
}

// splitExt splits a file name into its stem and extension. A leading dot
// does not start an extension, so ".gitignore" has no extension.
func splitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	base := filepath.Base(name)
	if strings.Trim(strings.TrimSuffix(base, ext), ".") == "" {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// insertTag rewrites the base name of p as stem + sep + tag + ext.
func insertTag(p, sep, tag string) string {
	dir, base := filepath.Split(p)
	stem, ext := splitExt(base)
	return dir + stem + sep + tag + ext
}

// bustPath embeds the leading bytes of a content hash into the file name,
// between the stem and the extension.
func bustPath(p string, hash []byte) string {
	return insertTag(p, ".", hashFragment(hash))
}

// versionPath embeds a module version into the file name.
func versionPath(p, version string) string {
	return insertTag(p, "-", version)
}
