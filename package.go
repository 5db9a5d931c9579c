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
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/gzip"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/osutil"
	"shanhu.io/misc/tarutil"
)

// packageOrder sorts files by extension first, then by the rest of the
// path, so that the order never depends on the build order.
func packageOrder(files []string) {
	sort.Slice(files, func(i, j int) bool {
		stemI, extI := splitExt(files[i])
		stemJ, extJ := splitExt(files[j])
		if extI != extJ {
			return extI < extJ
		}
		return stemI < stemJ
	})
}

// Files lists the non-intermediate outputs under root, relative to root,
// in package order.
func (s *System) Files(root string) []string {
	files := s.cache.list(root)
	packageOrder(files)
	return files
}

// packageStream lists the files in a tar stream, in the given order.
func packageStream(root string, files []string) (*tarutil.Stream, error) {
	ts := tarutil.NewStream()
	for _, name := range files {
		f := filepath.Join(root, filepath.FromSlash(name))
		ok, err := osutil.IsRegular(f)
		if err != nil {
			return nil, errcode.Annotatef(err, "check %q", name)
		}
		if !ok {
			return nil, errcode.NotFoundf("%q is not a regular file", name)
		}
		ts.AddFile(name, tarutil.ModeMeta(outputMode), f)
	}
	return ts, nil
}

func writePackage(w io.Writer, ts *tarutil.Stream) error {
	gz := gzip.NewWriter(w)
	if _, err := ts.WriteTo(gz); err != nil {
		return errcode.Annotate(err, "write tar")
	}
	return gz.Close()
}

// Package writes all files listed by Files(root) into a gzipped tarball at
// out. It fails when there is no file. On failure, the partial output is
// removed.
func (s *System) Package(out, root string) error {
	files := s.Files(root)
	if len(files) == 0 {
		return buildFailuref("no files under %q", root)
	}

	ts, err := packageStream(root, files)
	if err != nil {
		return err
	}

	log.Printf("package %s", out)
	if err := createPackage(out, ts); err != nil {
		return err
	}
	s.record(root, out, ActionPackage, nil)
	return nil
}

func createPackage(out string, ts *tarutil.Stream) error {
	f, err := os.Create(out)
	if err != nil {
		return errcode.Annotate(err, "create package")
	}
	if err := writeFileAndClose(f, ts); err != nil {
		if rmErr := os.Remove(out); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("remove %s: %s", out, rmErr)
		}
		return err
	}
	return nil
}

func writeFileAndClose(f *os.File, ts *tarutil.Stream) error {
	defer f.Close()
	if err := writePackage(f, ts); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return errcode.Annotate(err, "sync package")
	}
	return f.Close()
}
