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

package abuildbin

import (
	"shanhu.io/misc/subcmd"
)

func cmd() *subcmd.List {
	c := subcmd.New()
	c.Add("build", "builds all steps", cmdBuild)
	c.Add("files", "lists built files", cmdFiles)
	c.Add("package", "builds and packages the built files", cmdPackage)
	c.Add("serve", "builds and serves the built files", cmdServe)
	c.Add("history", "prints the last build run in the journal", cmdHistory)
	return c
}

// Main is the main entrance of the abuild command.
func Main() { cmd().Main() }
