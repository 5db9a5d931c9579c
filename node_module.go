package abuild

import (
	"os"

	"shanhu.io/misc/errcode"
)

type moduleRule struct {
	name string
	rule *Module
}

func newModuleRule(r *Module) (*moduleRule, error) {
	if r.Module == "" {
		return nil, errcode.InvalidArgf("module not specified")
	}
	if r.File == "" {
		return nil, errcode.InvalidArgf("module file not specified")
	}
	if r.Out == "" {
		return nil, errcode.InvalidArgf("output not specified")
	}
	return &moduleRule{name: nameOr(r.Name, r.Out), rule: r}, nil
}

func (r *moduleRule) meta() *buildRuleMeta {
	return &buildRuleMeta{name: r.name}
}

func (r *moduleRule) build(env *env) ([]*builtOut, error) {
	f := env.sys.moduleFile(r.rule.Module, r.rule.File)
	read := func(Args) ([]byte, error) {
		bs, err := os.ReadFile(f)
		if err != nil {
			return nil, errcode.Annotatef(err, "read %q", f)
		}
		return bs, nil
	}

	target := env.target(r.rule.Out)
	out, err := env.sys.BuildModule(
		target, r.rule.Module, read,
		&ModuleOptions{Intermediate: r.rule.Intermediate},
	)
	if err != nil {
		return nil, err
	}
	return []*builtOut{{target: target, out: out}}, nil
}
