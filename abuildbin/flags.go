package abuildbin

import (
	"shanhu.io/abuild"
	"shanhu.io/misc/flagutil"
)

var cmdFlags = flagutil.NewFactory("abuild")

func declareBuildFlags(flags *flagutil.FlagSet, c *abuild.Config) {
	flags.StringVar(&c.Root, "root", ".", "workspace root directory")
	flags.StringVar(&c.Src, "src", "src", "source directory")
	flags.StringVar(&c.Out, "out", "build", "output directory")
	flags.StringVar(
		&c.Modules, "modules", "node_modules",
		"third-party modules directory",
	)
	flags.StringVar(
		&c.Journal, "journal", "", "build journal database file",
	)
}
