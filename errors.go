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
	"errors"
	"fmt"
)

// BuildFailure is returned when a producer or an external command fails,
// or when there is nothing to package. It aborts the enclosing build.
type BuildFailure struct {
	Target string // Logical target path, if any.
	Cmd    string // External command that failed, if any.
	Err    error
}

func (f *BuildFailure) Error() string {
	msg := "build failure"
	if f.Err != nil {
		msg = f.Err.Error()
	}
	if f.Cmd != "" {
		msg = fmt.Sprintf("command failed: %s: %s", f.Cmd, msg)
	}
	if f.Target != "" {
		msg = fmt.Sprintf("build %s: %s", f.Target, msg)
	}
	return msg
}

// Unwrap returns the underlying error.
func (f *BuildFailure) Unwrap() error { return f.Err }

// IsBuildFailure checks if the error is, or wraps, a build failure.
// Annotating with errcode flattens the error into a message, so the
// engine returns build failures unannotated.
func IsBuildFailure(err error) bool {
	var f *BuildFailure
	return errors.As(err, &f)
}

func buildFailuref(format string, args ...interface{}) *BuildFailure {
	return &BuildFailure{Err: fmt.Errorf(format, args...)}
}
