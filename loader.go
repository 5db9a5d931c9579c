package abuild

import (
	"shanhu.io/text/lexing"
)

// loader registers build steps in the order they are declared. A step can
// only read the outputs of steps declared before it; steps are never
// reordered.
type loader struct {
	// All registered build nodes.
	nodes map[string]*buildNode
	order []*buildNode

	errList *lexing.ErrorList
}

func newLoader() *loader {
	return &loader{
		nodes:   make(map[string]*buildNode),
		errList: lexing.NewErrorList(),
	}
}

func (l *loader) register(n *buildNode) {
	if n.name == "" {
		l.errList.Errorf(n.pos, "node name is empty")
		return
	}
	if p, ok := l.nodes[n.name]; ok {
		l.errList.Errorf(n.pos, "node with name %q redeclared", n.name)
		if p.pos != nil {
			l.errList.Errorf(p.pos, "  previously defined here")
		}
		return
	}
	for _, ref := range n.ruleMeta.refs {
		if ref == n.name {
			l.errList.Errorf(n.pos, "%q reads its own output", n.name)
			continue
		}
		if _, ok := l.nodes[ref]; !ok {
			l.errList.Errorf(
				n.pos, "%q reads %q, which is not declared before it",
				n.name, ref,
			)
		}
	}
	l.nodes[n.name] = n
	l.order = append(l.order, n)
}

func (l *loader) readBuildFile(f string) {
	nodes, errs := readBuildFile(f)
	l.errList.AddAll(errs)
	for _, n := range nodes {
		l.register(n)
	}
}

func (l *loader) Errs() []*lexing.Error {
	return l.errList.Errs()
}

func loadNodes(f string) ([]*buildNode, []*lexing.Error) {
	l := newLoader()
	l.readBuildFile(f)
	if errs := l.Errs(); errs != nil {
		return nil, errs
	}
	return l.order, nil
}
