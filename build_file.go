package abuild

import (
	"shanhu.io/misc/jsonx"
	"shanhu.io/text/lexing"
)

const buildFileName = "BUILD.abuild"

func makeBuildFileNode(t string) interface{} {
	switch t {
	case ruleCopy:
		return new(Copy)
	case ruleWrite:
		return new(Write)
	case ruleFileSet:
		return new(FileSet)
	case ruleModule:
		return new(Module)
	case ruleBundle:
		return new(Bundle)
	case rulePipe:
		return new(Pipe)
	case ruleCommand:
		return new(Command)
	case ruleDownload:
		return new(Download)
	}
	return nil
}

func makeRule(v interface{}) (buildRule, error) {
	switch v := v.(type) {
	case *Copy:
		return newCopyRule(v)
	case *Write:
		return newWriteRule(v)
	case *FileSet:
		return newFileSet(v)
	case *Module:
		return newModuleRule(v)
	case *Bundle:
		return newBundleRule(v)
	case *Pipe:
		return newPipeRule(v)
	case *Command:
		return newCommandRule(v)
	case *Download:
		return newDownload(v)
	}
	return nil, nil
}

func readBuildFile(f string) ([]*buildNode, []*lexing.Error) {
	rules, errs := jsonx.ReadSeriesFile(f, makeBuildFileNode)
	if errs != nil {
		return nil, errs
	}

	var nodes []*buildNode
	errList := lexing.NewErrorList()

	for _, r := range rules {
		rule, err := makeRule(r.V)
		if err != nil {
			errList.Add(&lexing.Error{Pos: r.Pos, Err: err})
			continue
		}
		if rule == nil {
			errList.Errorf(r.Pos, "unknown type: %q", r.Type)
			continue
		}

		meta := rule.meta()
		if meta.name == "" {
			errList.Errorf(r.Pos, "rule has no name")
			continue
		}
		nodes = append(nodes, &buildNode{
			name:     meta.name,
			pos:      r.Pos,
			ruleType: r.Type,
			rule:     rule,
			ruleMeta: meta,
		})
	}

	if errs := errList.Errs(); errs != nil {
		return nil, errs
	}
	return nodes, nil
}
