package abuild

type buildRuleMeta struct {
	name string

	// Names of earlier steps whose outputs this rule reads.
	refs []string
}

// builtOut is one output of a build step.
type builtOut struct {
	target string // Logical path.
	out    string // Resolved path.
}

type buildRule interface {
	// meta returns meta information of a build rule.
	meta() *buildRuleMeta

	// build executes the build action.
	build(env *env) ([]*builtOut, error)
}

func nameOr(name, def string) string {
	if name != "" {
		return name
	}
	return def
}
