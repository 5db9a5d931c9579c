package abuild

import (
	"shanhu.io/text/lexing"
)

// buildNode is a named step declared in a BUILD file.
type buildNode struct {
	name string
	pos  *lexing.Pos

	ruleType string
	rule     buildRule
	ruleMeta *buildRuleMeta
}
