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
	"log"
	"path/filepath"

	"shanhu.io/misc/errcode"
	"shanhu.io/misc/jsonutil"
	"shanhu.io/misc/osutil"
)

// moduleManifest is the part of a module's package.json that is used.
type moduleManifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (s *System) moduleFile(name string, f ...string) string {
	ps := append([]string{s.modulesDir(), name}, f...)
	return filepath.Join(ps...)
}

func (s *System) moduleVersion(name string) (string, error) {
	m := new(moduleManifest)
	if err := jsonutil.ReadFile(s.moduleFile(name, "package.json"), m); err != nil {
		return "", errcode.Annotatef(err, "read manifest of %q", name)
	}
	if m.Version == "" {
		return "", errcode.InvalidArgf("module %q has no version", name)
	}
	return m.Version, nil
}

// BuildModule builds a file from a versioned third-party module. The
// module version is embedded in the output file name, and an output that
// already exists on disk is reused, even from an earlier run.
func (s *System) BuildModule(
	p, name string, f Producer, opts *ModuleOptions,
) (string, error) {
	if opts == nil {
		opts = new(ModuleOptions)
	}

	s.lockPath(p)
	defer s.unlockPath(p)

	version, err := s.moduleVersion(name)
	if err != nil {
		return "", err
	}
	out := versionPath(p, version)

	exists, err := osutil.IsRegular(out)
	if err != nil {
		return "", errcode.Annotatef(err, "check %q", out)
	}

	action := ActionModuleCached
	if !exists {
		log.Printf("module %s@%s", name, version)
		data, err := produce(p, f, nil)
		if err != nil {
			return "", err
		}
		if err := writeOut(out, data); err != nil {
			return "", errcode.Annotatef(err, "write %q", out)
		}
		action = ActionModuleBuild
	}

	s.cache.put(p, &cachedArtifact{
		out:          out,
		intermediate: opts.Intermediate,
	})
	s.record(p, out, action, nil)
	return out, nil
}
