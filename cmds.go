package abuild

import (
	"bytes"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"shanhu.io/misc/osutil"
)

type execJob struct {
	dir  string
	bin  string
	args []string
	in   io.Reader
	out  io.Writer
}

func (j *execJob) command() *exec.Cmd {
	cmd := exec.Command(j.bin, j.args...)
	cmd.Dir = j.dir
	cmd.Stdin = j.in
	if j.out == nil {
		cmd.Stdout = os.Stdout
	} else {
		cmd.Stdout = j.out
	}
	cmd.Stderr = os.Stderr
	osutil.CmdCopyEnv(cmd, "HOME")
	osutil.CmdCopyEnv(cmd, "PATH")
	osutil.CmdCopyEnv(cmd, "NODE_PATH")
	return cmd
}

// String formats the job as a shell command line, for logging.
func (j *execJob) String() string {
	var parts []string
	if j.dir != "" {
		parts = append(parts, "cd "+quoteArg(j.dir)+";")
	}
	parts = append(parts, quoteArg(filepath.Base(j.bin)))
	for _, arg := range j.args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>()*?[]#~") {
		return s
	}
	return strconv.Quote(s)
}

func (j *execJob) run() error {
	log.Printf("    %s", j)
	if err := j.command().Run(); err != nil {
		return &BuildFailure{Cmd: j.bin, Err: err}
	}
	return nil
}

func runCmd(dir, bin string, args ...string) error {
	j := &execJob{
		dir:  dir,
		bin:  bin,
		args: args,
	}
	return j.run()
}

func runCmdOutput(dir, bin string, args ...string) ([]byte, error) {
	out := new(bytes.Buffer)
	j := &execJob{
		dir:  dir,
		bin:  bin,
		args: args,
		out:  out,
	}
	if err := j.run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// runPipe pipes data through a command and returns its output.
func runPipe(data []byte, bin string, args ...string) ([]byte, error) {
	out := new(bytes.Buffer)
	j := &execJob{
		bin:  bin,
		args: args,
		in:   bytes.NewReader(data),
		out:  out,
	}
	if err := j.run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
