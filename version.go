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
	"bytes"
	"strings"

	"shanhu.io/misc/errcode"
)

// GitVersion describes the git checkout in dir, like "v1.2.0-3-gabcdef0".
func GitVersion(dir string) (string, error) {
	ret, err := runCmdOutput(
		dir, "git", "describe", "--tags", "--always", "--dirty",
	)
	if err != nil {
		return "", errcode.Annotate(err, "git describe")
	}
	v := string(bytes.TrimSpace(ret))
	if v == "" {
		return "", errcode.Internalf("empty git description")
	}
	return v, nil
}

// PackageName returns the file name of the package of a project at the
// given version. The version must start with "v".
func PackageName(name, version string) (string, error) {
	if !strings.HasPrefix(version, "v") {
		return "", errcode.InvalidArgf(
			"version %q does not start with v", version,
		)
	}
	if name == "" {
		return "", errcode.InvalidArgf("project name is empty")
	}
	return name + "-" + strings.TrimPrefix(version, "v") + ".tar.gz", nil
}
