package abuild

import (
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/jsonx"
)

// Workspace is the structure of the WORKSPACE.abuild file.
type Workspace struct {
	// Project name, used to name packages.
	Name string

	// Package root directory, relative to the output directory.
	Root string `json:",omitempty"`
}

func readWorkspace(f string) (*Workspace, error) {
	ws := new(Workspace)
	if err := jsonx.ReadFile(f, ws); err != nil {
		return nil, errcode.Annotate(err, "read workspace")
	}
	if ws.Name == "" {
		return nil, errcode.InvalidArgf("workspace has no name")
	}
	return ws, nil
}
