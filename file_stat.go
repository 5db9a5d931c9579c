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
	"os"

	"shanhu.io/misc/errcode"
)

// noModTime is the modification time of an empty dependency list. With it,
// staleness depends on the arguments only.
const noModTime int64 = -1

type fileStat struct {
	Name         string
	Size         int64
	ModTimestamp int64
}

func newFileStat(f string) (*fileStat, error) {
	info, err := os.Stat(f)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errcode.NotFoundf("dependency %q not found", f)
		}
		return nil, err
	}
	return &fileStat{
		Name:         f,
		Size:         info.Size(),
		ModTimestamp: info.ModTime().UnixNano(),
	}, nil
}

// latestModTime returns the latest modification timestamp of the given
// files, or noModTime when there are none.
func latestModTime(files []string) (int64, error) {
	t := noModTime
	for _, f := range files {
		stat, err := newFileStat(f)
		if err != nil {
			return 0, err
		}
		if stat.ModTimestamp > t {
			t = stat.ModTimestamp
		}
	}
	return t, nil
}
