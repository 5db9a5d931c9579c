// Copyright (C) 2022  Shanhu Tech Inc.
//
// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.
//
// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License
// for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package abuild

import (
	"fmt"
	"io/fs"
	"log"
	"path"
	"path/filepath"
	"strings"

	"shanhu.io/misc/errcode"
	"shanhu.io/misc/strutil"
)

func listAllFiles(dir string) ([]string, error) {
	var files []string
	walk := func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && p != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil // Ignore hidden files.
		}
		if d.IsDir() { // Ignore all directories.
			return nil
		}
		files = append(files, p)
		return nil
	}

	if err := filepath.WalkDir(dir, walk); err != nil {
		return nil, err
	}
	return files, nil
}

type fileSet struct {
	name string
	rule *FileSet
}

func newFileSet(r *FileSet) (*fileSet, error) {
	if len(r.Select) == 0 {
		return nil, errcode.InvalidArgf("file set selects nothing")
	}
	return &fileSet{name: r.Name, rule: r}, nil
}

func (fs *fileSet) meta() *buildRuleMeta {
	return &buildRuleMeta{name: fs.name}
}

// files expands the selection into source paths, relative to the source
// directory and sorted.
func (fs *fileSet) files(env *env) ([]string, error) {
	r := fs.rule

	var ignores []string
	for _, i := range r.Ignore {
		ignores = append(ignores, makeRelPath("", i))
	}

	bads := make(map[string]bool)
	ignore := func(name string) bool {
		for _, i := range ignores {
			matched, err := path.Match(i, name)
			if err != nil {
				if !bads[i] {
					log.Printf("bad ignore pattern: %q: %s", i, err)
				}
				bads[i] = true // report each bad ignore pattern once
				continue
			}
			if matched {
				return true
			}
		}
		return false
	}

	m := make(map[string]bool)
	for _, sel := range r.Select {
		var matches []string
		if strings.HasSuffix(sel, "/**") {
			dir := env.src(makeRelPath("", strings.TrimSuffix(sel, "/**")))
			files, err := listAllFiles(dir)
			if err != nil {
				return nil, errcode.Annotatef(err, "list all files %q", sel)
			}
			matches = files
		} else {
			glob, err := filepath.Glob(env.src(makeRelPath("", sel)))
			if err != nil {
				return nil, errcode.Annotatef(err, "glob %q", sel)
			}
			matches = glob
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%q select no files", sel)
		}

		for _, match := range matches {
			rel, err := filepath.Rel(env.srcDir, match)
			if err != nil {
				return nil, errcode.Annotatef(
					err, "get relative path for %q", match,
				)
			}
			name := filepath.ToSlash(rel)
			if ignore(name) {
				continue
			}
			m[name] = true
		}
	}
	return strutil.SortedList(m), nil
}

func (fs *fileSet) build(env *env) ([]*builtOut, error) {
	files, err := fs.files(env)
	if err != nil {
		return nil, err
	}

	var outs []*builtOut
	for _, f := range files {
		target := env.target(path.Join(fs.rule.Out, f))
		out, err := env.sys.Copy(target, env.src(f), fs.rule.Bust)
		if err != nil {
			return nil, err
		}
		outs = append(outs, &builtOut{target: target, out: out})
	}
	return outs, nil
}
