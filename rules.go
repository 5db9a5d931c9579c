package abuild

// Rule types in a BUILD file.
const (
	ruleCopy     = "copy"
	ruleWrite    = "write"
	ruleFileSet  = "file_set"
	ruleModule   = "module"
	ruleBundle   = "bundle"
	rulePipe     = "pipe"
	ruleCommand  = "command"
	ruleDownload = "download"
)

// Copy copies a source file into the output.
type Copy struct {
	Name string `json:",omitempty"` // Defaults to Out.
	Src  string
	Out  string `json:",omitempty"` // Defaults to Src.
	Bust bool   `json:",omitempty"`

	Intermediate bool `json:",omitempty"`
}

// Write writes a literal text into the output.
type Write struct {
	Name string `json:",omitempty"`
	Out  string
	Text string
	Bust bool `json:",omitempty"`
}

// FileSet copies a set of source files into the output.
type FileSet struct {
	Name string

	// Selects a set of source input files.
	Select []string

	// Ignores a set of source input files after selection.
	Ignore []string `json:",omitempty"`

	// Output directory.
	Out string `json:",omitempty"`

	Bust bool `json:",omitempty"`
}

// Module takes a file from a versioned third-party module.
type Module struct {
	Name   string `json:",omitempty"`
	Module string
	File   string
	Out    string

	Intermediate bool `json:",omitempty"`
}

// Bundle concatenates the outputs of earlier steps. The inputs become
// intermediate.
type Bundle struct {
	Name      string `json:",omitempty"`
	Inputs    []string
	Out       string
	Separator string `json:",omitempty"`
	Bust      bool   `json:",omitempty"`
}

// Pipe pipes the output of an earlier step through a command, like a
// minifier.
type Pipe struct {
	Name  string `json:",omitempty"`
	Input string
	Cmd   []string
	Out   string
	Bust  bool `json:",omitempty"`
}

// Command runs a command in a source directory and takes the file it
// writes as the output, like a compiler or bundler.
type Command struct {
	Name   string `json:",omitempty"`
	Dir    string `json:",omitempty"`
	Cmd    []string
	Deps   []string `json:",omitempty"` // Source files the command reads.
	Output string   // File written by the command, relative to Dir.
	Out    string
	Bust   bool `json:",omitempty"`
}

// Download fetches a file over HTTP and checks its checksum.
type Download struct {
	Name     string `json:",omitempty"`
	URL      string
	Checksum string // "sha256:" followed by the hex digest.
	Out      string
	Bust     bool `json:",omitempty"`
}
