package abuild

// BuildOptions are the optional parameters of a build.
type BuildOptions struct {
	// Files that the output depends on. Only their modification times are
	// checked.
	Deps []string

	// Arguments passed to the producer. They are also part of the
	// staleness key.
	Args Args

	// Bust embeds a content hash fragment into the output file name.
	Bust bool

	// Intermediate excludes the output from listing and packaging.
	Intermediate bool
}

// ModuleOptions are the optional parameters of a module build.
type ModuleOptions struct {
	Intermediate bool
}

// Producer produces the content of an output file.
type Producer func(args Args) ([]byte, error)
