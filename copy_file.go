package abuild

import (
	"shanhu.io/misc/errcode"
)

type copyRule struct {
	name string
	rule *Copy
}

func newCopyRule(r *Copy) (*copyRule, error) {
	if r.Src == "" {
		return nil, errcode.InvalidArgf("copy source not specified")
	}
	out := nameOr(r.Out, r.Src)
	return &copyRule{name: nameOr(r.Name, out), rule: r}, nil
}

func (r *copyRule) meta() *buildRuleMeta {
	return &buildRuleMeta{name: r.name}
}

func (r *copyRule) build(env *env) ([]*builtOut, error) {
	target := env.target(nameOr(r.rule.Out, r.rule.Src))
	out, err := env.sys.Copy(target, env.src(r.rule.Src), r.rule.Bust)
	if err != nil {
		return nil, err
	}
	if r.rule.Intermediate {
		if err := env.sys.MarkIntermediate(target); err != nil {
			return nil, err
		}
	}
	return []*builtOut{{target: target, out: out}}, nil
}

type writeRule struct {
	name string
	rule *Write
}

func newWriteRule(r *Write) (*writeRule, error) {
	if r.Out == "" {
		return nil, errcode.InvalidArgf("output not specified")
	}
	return &writeRule{name: nameOr(r.Name, r.Out), rule: r}, nil
}

func (r *writeRule) meta() *buildRuleMeta {
	return &buildRuleMeta{name: r.name}
}

func (r *writeRule) build(env *env) ([]*builtOut, error) {
	target := env.target(r.rule.Out)
	out, err := env.sys.Write(target, []byte(r.rule.Text), r.rule.Bust)
	if err != nil {
		return nil, err
	}
	return []*builtOut{{target: target, out: out}}, nil
}
