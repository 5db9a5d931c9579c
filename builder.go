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
	"net/http"
	"os"
	"path/filepath"

	"shanhu.io/misc/errcode"
	"shanhu.io/text/lexing"
)

// Config provides the configuration to start a builder.
type Config struct {
	Root    string // Root directory, holding the workspace and BUILD files.
	Src     string // Source directory
	Out     string // Output directory
	Modules string // Third-party modules directory
	Journal string // Build journal database file; empty to disable.
}

// Builder builds stuff.
type Builder struct {
	config  *Config
	env     *env
	journal *Journal
}

const workspaceFile = "WORKSPACE.abuild"

// NewBuilder creates a new builder that builds stuff. Each builder has its
// own build system, so nothing is cached between builders.
func NewBuilder(config *Config) (*Builder, error) {
	sys := NewSystem()
	if config.Modules != "" {
		sys.SetModulesDir(config.Modules)
	}

	b := &Builder{
		config: config,
		env: &env{
			sys:    sys,
			srcDir: config.Src,
			outDir: config.Out,
			built:  make(map[string][]*builtOut),
		},
	}

	if config.Journal != "" {
		j, err := OpenJournal(config.Journal)
		if err != nil {
			return nil, err
		}
		sys.SetRecorder(j)
		b.journal = j
	}
	return b, nil
}

func (b *Builder) root(f string) string {
	return filepath.Join(b.config.Root, f)
}

// System returns the build system of the builder.
func (b *Builder) System() *System { return b.env.sys }

// Journal returns the build journal, nil if disabled.
func (b *Builder) Journal() *Journal { return b.journal }

// ReadWorkspace reads and loads the WORKSPACE file into the build env.
func (b *Builder) ReadWorkspace() (*Workspace, error) {
	ws, err := readWorkspace(b.root(workspaceFile))
	if err != nil {
		return nil, err
	}
	b.env.root = ws.Root
	return ws, nil
}

// Build runs the steps in the BUILD file, in the order they are declared.
func (b *Builder) Build() []*lexing.Error {
	nodes, errs := loadNodes(b.root(buildFileName))
	if errs != nil {
		return errs
	}
	return b.buildNodes(nodes)
}

func (b *Builder) buildNodes(nodes []*buildNode) []*lexing.Error {
	if err := os.MkdirAll(b.env.out(), 0755); err != nil {
		err := errcode.Annotate(err, "make output dir")
		return lexing.SingleErr(err)
	}

	for _, n := range nodes {
		outs, err := n.rule.build(b.env)
		if err != nil {
			log.Printf("%s %q failed", n.ruleType, n.name)
			return []*lexing.Error{{Pos: n.pos, Err: err}}
		}
		b.env.built[n.name] = outs
	}
	return nil
}

// Files lists the built files under the package root.
func (b *Builder) Files() []string {
	return b.env.sys.Files(b.env.packageRoot())
}

// Package creates the package of the built files in dir, named after the
// project and the version of the run. It returns the package path.
func (b *Builder) Package(ws *Workspace, dir string) (string, error) {
	name, err := PackageName(ws.Name, b.env.sys.Version())
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, name)
	if err := b.env.sys.Package(out, b.env.packageRoot()); err != nil {
		return "", err
	}
	return out, nil
}

// Handler returns an HTTP handler that serves the built files under the
// package root.
func (b *Builder) Handler() http.Handler {
	return b.env.sys.Handler(b.env.packageRoot())
}

// Close closes the build journal, if any.
func (b *Builder) Close() error {
	if b.journal == nil {
		return nil
	}
	return b.journal.Close()
}
