package abuild

import (
	"os"

	"shanhu.io/misc/errcode"
)

type pipeRule struct {
	name string
	rule *Pipe
}

func newPipeRule(r *Pipe) (*pipeRule, error) {
	if r.Input == "" {
		return nil, errcode.InvalidArgf("input not specified")
	}
	if len(r.Cmd) == 0 {
		return nil, errcode.InvalidArgf("command not specified")
	}
	if r.Out == "" {
		return nil, errcode.InvalidArgf("output not specified")
	}
	return &pipeRule{name: nameOr(r.Name, r.Out), rule: r}, nil
}

func (r *pipeRule) meta() *buildRuleMeta {
	return &buildRuleMeta{
		name: r.name,
		refs: []string{r.rule.Input},
	}
}

func (r *pipeRule) build(env *env) ([]*builtOut, error) {
	inputs, err := env.inputs([]string{r.rule.Input})
	if err != nil {
		return nil, err
	}
	if len(inputs) != 1 {
		return nil, errcode.InvalidArgf(
			"%q has %d outputs, want 1", r.rule.Input, len(inputs),
		)
	}
	in := inputs[0].out

	pipe := func(args Args) ([]byte, error) {
		bs, err := os.ReadFile(in)
		if err != nil {
			return nil, errcode.Annotatef(err, "read %q", in)
		}
		cmd := args[0].([]string)
		return runPipe(bs, cmd[0], cmd[1:]...)
	}
	target := env.target(r.rule.Out)
	out, err := env.sys.Build(target, pipe, &BuildOptions{
		Deps: []string{in},
		Args: Args{r.rule.Cmd, in},
		Bust: r.rule.Bust,
	})
	if err != nil {
		return nil, err
	}
	return []*builtOut{{target: target, out: out}}, nil
}

type commandRule struct {
	name string
	rule *Command
}

func newCommandRule(r *Command) (*commandRule, error) {
	if len(r.Cmd) == 0 {
		return nil, errcode.InvalidArgf("command not specified")
	}
	if r.Output == "" {
		return nil, errcode.InvalidArgf("command output not specified")
	}
	if r.Out == "" {
		return nil, errcode.InvalidArgf("output not specified")
	}
	return &commandRule{name: nameOr(r.Name, r.Out), rule: r}, nil
}

func (r *commandRule) meta() *buildRuleMeta {
	return &buildRuleMeta{name: r.name}
}

func (r *commandRule) build(env *env) ([]*builtOut, error) {
	dir := env.src(r.rule.Dir)
	var deps []string
	for _, d := range r.rule.Deps {
		deps = append(deps, env.src(r.rule.Dir, d))
	}
	output := env.src(r.rule.Dir, r.rule.Output)

	run := func(args Args) ([]byte, error) {
		cmd := args[0].([]string)
		if err := runCmd(dir, cmd[0], cmd[1:]...); err != nil {
			return nil, err
		}
		bs, err := os.ReadFile(output)
		if err != nil {
			return nil, errcode.Annotatef(err, "read command output")
		}
		return bs, nil
	}

	target := env.target(r.rule.Out)
	out, err := env.sys.Build(target, run, &BuildOptions{
		Deps: deps,
		Args: Args{r.rule.Cmd, dir},
		Bust: r.rule.Bust,
	})
	if err != nil {
		return nil, err
	}
	return []*builtOut{{target: target, out: out}}, nil
}
