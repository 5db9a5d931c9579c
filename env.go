package abuild

import (
	"path"
	"path/filepath"

	"shanhu.io/misc/errcode"
)

type env struct {
	sys *System

	srcDir string
	outDir string
	root   string // Package root, relative to outDir.

	// Outputs of the steps built so far, by step name.
	built map[string][]*builtOut
}

func (e *env) out(ps ...string) string {
	if len(ps) == 0 {
		return e.outDir
	}
	p := path.Join(ps...)
	return filepath.Join(e.outDir, filepath.FromSlash(p))
}

func (e *env) src(ps ...string) string {
	if len(ps) == 0 {
		return e.srcDir
	}
	p := path.Join(ps...)
	return filepath.Join(e.srcDir, filepath.FromSlash(p))
}

func (e *env) packageRoot() string { return e.out(e.root) }

// target returns the logical target path of an output file. It cannot
// escape the output directory.
func (e *env) target(f string) string { return e.out(makeRelPath("", f)) }

// inputs returns the outputs of the earlier steps with the given names.
func (e *env) inputs(names []string) ([]*builtOut, error) {
	var outs []*builtOut
	for _, name := range names {
		built, ok := e.built[name]
		if !ok {
			return nil, errcode.NotFoundf("step %q is not built", name)
		}
		outs = append(outs, built...)
	}
	return outs, nil
}
