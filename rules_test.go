package abuild

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shanhu.io/misc/errcode"
)

func TestPipeRule(t *testing.T) {
	b, dir := newTestBuilder(t)
	src := &Write{Name: "greeting", Out: "in.txt", Text: "hello"}

	require.Empty(t, b.buildNodes(makeTestNodes(t,
		src,
		&Pipe{Input: "greeting", Cmd: []string{"tr", "a-z", "A-Z"}, Out: "out.txt"},
	)))
	assert.Equal(t, "HELLO", readString(t, filepath.Join(dir, "out/out.txt")))

	errs := b.buildNodes(makeTestNodes(t,
		src,
		&Pipe{Input: "greeting", Cmd: []string{"false"}, Out: "bad.txt"},
	))
	require.Len(t, errs, 1)
	assert.True(t, IsBuildFailure(errs[0].Err))
	assert.Contains(t, errs[0].Err.Error(), "command failed: false")

	_, err := os.Stat(filepath.Join(dir, "out/bad.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestPipeRule_unknownInput(t *testing.T) {
	b, _ := newTestBuilder(t)
	errs := b.buildNodes(makeTestNodes(t,
		&Pipe{Input: "nothing", Cmd: []string{"cat"}, Out: "out.txt"},
	))
	require.Len(t, errs, 1)
	assert.True(t, errcode.IsNotFound(errs[0].Err))
}

func TestCommandRule(t *testing.T) {
	b, dir := newTestBuilder(t)
	seed := filepath.Join(dir, "src/gen/seed.txt")
	writeFile(t, seed, "seed")

	nodes := makeTestNodes(t, &Command{
		Dir:    "gen",
		Cmd:    []string{"sh", "-c", "tr a-z A-Z < seed.txt > made.txt"},
		Deps:   []string{"seed.txt"},
		Output: "made.txt",
		Out:    "gen.txt",
	})
	require.Empty(t, b.buildNodes(nodes))
	assert.Equal(t, "SEED", readString(t, filepath.Join(dir, "out/gen.txt")))

	// Unchanged deps: the command does not run again.
	require.NoError(t, os.Remove(filepath.Join(dir, "src/gen/made.txt")))
	require.Empty(t, b.buildNodes(nodes))
	_, err := os.Stat(filepath.Join(dir, "src/gen/made.txt"))
	assert.True(t, os.IsNotExist(err))

	errs := b.buildNodes(makeTestNodes(t, &Command{
		Dir:    "gen",
		Cmd:    []string{"sh", "-c", "exit 3"},
		Output: "never.txt",
		Out:    "never.txt",
	}))
	require.Len(t, errs, 1)
	assert.True(t, IsBuildFailure(errs[0].Err))
	assert.Contains(t, errs[0].Err.Error(), "command failed: sh")
}

func TestModuleRule(t *testing.T) {
	b, dir := newTestBuilder(t)
	modules := filepath.Join(dir, "node_modules")
	b.System().SetModulesDir(modules)
	writeFile(t, filepath.Join(modules, "lib/package.json"),
		`{"name": "lib", "version": "1.2.3"}`)
	writeFile(t, filepath.Join(modules, "lib/dist/lib.js"), "lib();")

	require.Empty(t, b.buildNodes(makeTestNodes(t,
		&Module{Module: "lib", File: "dist/lib.js", Out: "js/lib.js"},
		&Module{
			Name: "hidden", Module: "lib", File: "dist/lib.js",
			Out: "part/lib.js", Intermediate: true,
		},
	)))

	out := filepath.Join(dir, "out/js/lib-1.2.3.js")
	assert.Equal(t, "lib();", readString(t, out))
	assert.Equal(t, []string{"js/lib-1.2.3.js"}, b.Files())

	errs := b.buildNodes(makeTestNodes(t,
		&Module{Module: "missing", File: "a.js", Out: "a.js"},
	))
	require.Len(t, errs, 1)
}

func TestFileSetRule(t *testing.T) {
	b, dir := newTestBuilder(t)
	for _, f := range []string{
		"a/x.txt", "a/sub/y.txt", "a/skip.log",
		"a/.hidden", "a/.git/config", "b/z.txt",
	} {
		writeFile(t, filepath.Join(dir, "src", f), f)
	}

	require.Empty(t, b.buildNodes(makeTestNodes(t, &FileSet{
		Name:   "assets",
		Select: []string{"a/**"},
		Ignore: []string{"a/*.log"},
		Out:    "copy",
	})))
	assert.Equal(t, []string{
		"copy/a/sub/y.txt", "copy/a/x.txt",
	}, b.Files())
	assert.Equal(t, "a/x.txt", readString(t, filepath.Join(dir, "out/copy/a/x.txt")))

	errs := b.buildNodes(makeTestNodes(t, &FileSet{
		Name: "none", Select: []string{"c/*.txt"},
	}))
	require.Len(t, errs, 1)
}

func TestBundleRule_failureKeepsInputs(t *testing.T) {
	b, dir := newTestBuilder(t)
	require.Empty(t, b.buildNodes(makeTestNodes(t,
		&Write{Name: "part", Out: "part.js", Text: "a();"},
	)))
	require.NoError(t, os.Remove(filepath.Join(dir, "out/part.js")))

	errs := b.buildNodes(makeTestNodes(t,
		&Write{Name: "part", Out: "part.js", Text: "a();"},
		&Bundle{Inputs: []string{"part"}, Out: "all.js"},
	))
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"part.js"}, b.Files())
}

const testBuildFile = `write {
	Name: "hello",
	Out: "hello.txt",
	Text: "hi",
}
copy {Src: "index.html"}
bundle {Inputs: ["hello", "index.html"], Out: "all.txt"}
`

func TestReadBuildFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), buildFileName)
	writeFile(t, f, testBuildFile)

	nodes, errs := loadNodes(f)
	require.Empty(t, errs)
	require.Len(t, nodes, 3)

	var names, types []string
	for _, n := range nodes {
		names = append(names, n.name)
		types = append(types, n.ruleType)
	}
	assert.Equal(t, []string{"hello", "index.html", "all.txt"}, names)
	assert.Equal(t, []string{"write", "copy", "bundle"}, types)
	assert.Equal(t, 1, nodes[0].pos.Line)
	assert.Equal(t, 6, nodes[1].pos.Line)
	assert.Equal(t, []string{"hello", "index.html"}, nodes[2].ruleMeta.refs)
}

func TestReadBuildFile_errors(t *testing.T) {
	for _, test := range []struct {
		content string
		want    string
	}{
		{`nope {Out: "x"}`, "unknown"},
		{`copy {Out: "x"}`, "copy source not specified"},
		{
			`bundle {Inputs: ["late"], Out: "a.js"}` + "\n" +
				`write {Name: "late", Out: "l.txt", Text: "x"}`,
			"not declared before it",
		},
	} {
		f := filepath.Join(t.TempDir(), buildFileName)
		writeFile(t, f, test.content)

		nodes, errs := loadNodes(f)
		assert.Nil(t, nodes, test.content)
		require.NotEmpty(t, errs, test.content)

		var msgs []string
		for _, err := range errs {
			msgs = append(msgs, err.Error())
		}
		assert.Contains(t, strings.Join(msgs, "\n"), test.want)
	}
}

func TestBuilder_packageKeepsBuildFailure(t *testing.T) {
	b, dir := newTestBuilder(t)
	b.System().SetVersion("v1.0.0")

	_, err := b.Package(&Workspace{Name: "kitten"}, dir)
	require.Error(t, err)
	assert.True(t, IsBuildFailure(err))
}
