package abuild

import (
	"bytes"
	"os"

	"shanhu.io/misc/errcode"
)

type bundleRule struct {
	name string
	rule *Bundle
}

func newBundleRule(r *Bundle) (*bundleRule, error) {
	if len(r.Inputs) == 0 {
		return nil, errcode.InvalidArgf("bundle has no input")
	}
	if r.Out == "" {
		return nil, errcode.InvalidArgf("output not specified")
	}
	return &bundleRule{name: nameOr(r.Name, r.Out), rule: r}, nil
}

func (r *bundleRule) meta() *buildRuleMeta {
	return &buildRuleMeta{name: r.name, refs: r.rule.Inputs}
}

func concatFiles(files []string, sep []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	for i, f := range files {
		if i > 0 {
			buf.Write(sep)
		}
		bs, err := os.ReadFile(f)
		if err != nil {
			return nil, errcode.Annotatef(err, "read %q", f)
		}
		buf.Write(bs)
	}
	return buf.Bytes(), nil
}

func (r *bundleRule) build(env *env) ([]*builtOut, error) {
	inputs, err := env.inputs(r.rule.Inputs)
	if err != nil {
		return nil, err
	}

	var targets, files []string
	for _, in := range inputs {
		targets = append(targets, in.target)
		files = append(files, in.out)
	}
	concat := func(args Args) ([]byte, error) {
		return concatFiles(args[1].([]string), []byte(args[0].(string)))
	}
	target := env.target(r.rule.Out)
	out, err := env.sys.Build(target, concat, &BuildOptions{
		Deps: files,
		Args: Args{r.rule.Separator, files},
		Bust: r.rule.Bust,
	})
	if err != nil {
		return nil, err
	}

	// Inputs stay listed when the bundle fails.
	if err := env.sys.MarkIntermediate(targets...); err != nil {
		return nil, errcode.Annotate(err, "mark inputs intermediate")
	}
	return []*builtOut{{target: target, out: out}}, nil
}
