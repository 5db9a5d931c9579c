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
	"os"
	"path/filepath"
	"sync"

	"shanhu.io/misc/errcode"
)

// System is the build system of one build run. It remembers every output
// built in the run, so that unchanged outputs are not built again.
//
// Callers decide the build order; System only memoizes. A producer must
// not build its own target, directly or indirectly.
type System struct {
	cache *buildCache

	mu       sync.Mutex
	cond     *sync.Cond
	building map[string]bool
	version  string
	modules  string
	recorder Recorder
}

// NewSystem creates an empty build system.
func NewSystem() *System {
	s := &System{
		cache:    newBuildCache(),
		building: make(map[string]bool),
		modules:  "node_modules",
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// SetVersion sets the version of the build run.
func (s *System) SetVersion(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = v
}

// Version returns the version of the build run.
func (s *System) Version() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// SetModulesDir sets the directory that holds third-party modules.
func (s *System) SetModulesDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules = dir
}

func (s *System) modulesDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modules
}

// SetRecorder sets the recorder that receives build events.
func (s *System) SetRecorder(r Recorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = r
}

func (s *System) record(target, out, action string, hash []byte) {
	s.mu.Lock()
	r := s.recorder
	s.mu.Unlock()
	if r == nil {
		return
	}

	e := &Event{
		Target: target,
		Out:    out,
		Action: action,
		Hash:   hashString(hash),
	}
	if err := r.Record(e); err != nil {
		log.Printf("record %s %s: %s", action, target, err)
	}
}

// lockPath waits until no one else is building p, and claims it.
func (s *System) lockPath(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.building[p] {
		s.cond.Wait()
	}
	s.building[p] = true
}

func (s *System) unlockPath(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.building, p)
	s.cond.Broadcast()
}

// outputMode is the file mode of written outputs.
const outputMode = 0644

func writeOut(p string, data []byte) error {
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errcode.Annotate(err, "make output dir")
		}
	}
	return os.WriteFile(p, data, outputMode)
}

func produce(p string, f Producer, args Args) ([]byte, error) {
	data, err := f(args)
	if err != nil {
		return nil, &BuildFailure{Target: p, Err: err}
	}
	return data, nil
}

// Build builds the file at logical path p with the producer and returns
// the path of the output. When the dependencies and arguments are the same
// as the last build of p in this run, the producer is not called. When the
// producer gives the same content as before, the previous output is kept.
func (s *System) Build(p string, f Producer, opts *BuildOptions) (
	string, error,
) {
	if opts == nil {
		opts = new(BuildOptions)
	}

	s.lockPath(p)
	defer s.unlockPath(p)

	key, err := makeStaleKey(opts.Deps, opts.Args)
	if err != nil {
		return "", errcode.Annotatef(err, "staleness of %q", p)
	}

	cached := s.cache.get(p)
	if cached != nil && key.equal(cached.key) {
		s.record(p, cached.out, ActionHit, cached.hash)
		return cached.out, nil
	}

	log.Printf("BUILD %s", p)
	data, err := produce(p, f, opts.Args)
	if err != nil {
		return "", err
	}
	hash := contentHash(data)

	if cached != nil && sameHash(cached.hash, hash) {
		refreshed := *cached
		refreshed.key = key
		s.cache.put(p, &refreshed)
		s.record(p, cached.out, ActionReuse, hash)
		return cached.out, nil
	}

	out := p
	if opts.Bust {
		out = bustPath(p, hash)
	}
	if err := writeOut(out, data); err != nil {
		return "", errcode.Annotatef(err, "write %q", out)
	}

	s.cache.put(p, &cachedArtifact{
		out:          out,
		hash:         hash,
		key:          key,
		intermediate: opts.Intermediate,
	})
	s.record(p, out, ActionBuild, hash)
	return out, nil
}

// Copy copies a source file to p and returns the output path.
func (s *System) Copy(p, src string, bust bool) (string, error) {
	read := func(Args) ([]byte, error) {
		bs, err := os.ReadFile(src)
		if err != nil {
			return nil, errcode.Annotatef(err, "read %q", src)
		}
		return bs, nil
	}
	return s.Build(p, read, &BuildOptions{
		Deps: []string{src},
		Bust: bust,
	})
}

func identity(args Args) ([]byte, error) {
	return args[0].([]byte), nil
}

// Write writes data to p and returns the output path. The data is part of
// the staleness key, so new data is always written.
func (s *System) Write(p string, data []byte, bust bool) (string, error) {
	return s.Build(p, identity, &BuildOptions{
		Args: Args{data},
		Bust: bust,
	})
}

// MarkIntermediate marks the outputs of the given logical paths as
// intermediate. They stay in the cache for later builds to use, but are
// no longer listed or packaged.
func (s *System) MarkIntermediate(paths ...string) error {
	for _, p := range paths {
		if err := s.markIntermediate(p); err != nil {
			return err
		}
	}
	return nil
}

// markIntermediate waits for any running build of p, so that a rebuild
// never writes back a stale entry over the mark.
func (s *System) markIntermediate(p string) error {
	s.lockPath(p)
	defer s.unlockPath(p)
	return s.cache.markIntermediate(p)
}
