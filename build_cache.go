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
	"strings"
	"sync"

	"shanhu.io/misc/errcode"
)

// cachedArtifact is the metadata of one built output.
type cachedArtifact struct {
	out          string    // Resolved output path.
	hash         []byte    // Content hash; nil for module artifacts.
	key          *staleKey // nil for module artifacts.
	intermediate bool
}

// buildCache maps logical target paths to their artifacts. It lives for
// one build run and never evicts.
type buildCache struct {
	mu sync.Mutex
	m  map[string]*cachedArtifact
}

func newBuildCache() *buildCache {
	return &buildCache{m: make(map[string]*cachedArtifact)}
}

func (c *buildCache) get(p string) *cachedArtifact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[p]
}

func (c *buildCache) put(p string, a *cachedArtifact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[p] = a
}

func (c *buildCache) markIntermediate(p string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.m[p]
	if !ok {
		return errcode.NotFoundf("%q is not built", p)
	}
	cp := *a
	cp.intermediate = true
	c.m[p] = &cp
	return nil
}

// list returns the non-intermediate outputs under root, relative to root.
func (c *buildCache) list(root string) []string {
	if root != "" && !strings.HasSuffix(root, "/") {
		root += "/"
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var files []string
	for _, a := range c.m {
		if a.intermediate || !strings.HasPrefix(a.out, root) {
			continue
		}
		files = append(files, strings.TrimPrefix(a.out, root))
	}
	return files
}
