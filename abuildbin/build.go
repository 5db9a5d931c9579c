// Copyright (C) 2022  Shanhu Tech Inc.
//
// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.
//
// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License
// for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package abuildbin

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"

	"shanhu.io/abuild"
	"shanhu.io/misc/errcode"
	"shanhu.io/text/lexing"
)

type session struct {
	b  *abuild.Builder
	ws *abuild.Workspace
}

func newSession(config *abuild.Config) (*session, error) {
	b, err := abuild.NewBuilder(config)
	if err != nil {
		return nil, errcode.Annotate(err, "create builder")
	}
	ws, err := b.ReadWorkspace()
	if err != nil {
		b.Close()
		return nil, err
	}
	return &session{b: b, ws: ws}, nil
}

func (s *session) build() error {
	if errs := s.b.Build(); errs != nil {
		wd, err := os.Getwd()
		if err != nil {
			return errcode.Annotate(err, "get work dir")
		}
		lexing.FprintErrs(os.Stderr, errs, wd)
		return errcode.InvalidArgf("build got %d errors", len(errs))
	}
	return nil
}

func (s *session) close() {
	if err := s.b.Close(); err != nil {
		log.Printf("close builder: %s", err)
	}
}

func buildSession(args []string) (*session, []string, error) {
	flags := cmdFlags.New()
	config := new(abuild.Config)
	declareBuildFlags(flags, config)
	args = flags.ParseArgs(args)

	s, err := newSession(config)
	if err != nil {
		return nil, nil, err
	}
	if err := s.build(); err != nil {
		s.close()
		return nil, nil, err
	}
	return s, args, nil
}

func cmdBuild(args []string) error {
	s, _, err := buildSession(args)
	if err != nil {
		return err
	}
	defer s.close()
	return nil
}

func cmdFiles(args []string) error {
	s, _, err := buildSession(args)
	if err != nil {
		return err
	}
	defer s.close()

	for _, f := range s.b.Files() {
		fmt.Println(f)
	}
	return nil
}

func cmdPackage(args []string) error {
	flags := cmdFlags.New()
	config := new(abuild.Config)
	declareBuildFlags(flags, config)
	version := flags.String(
		"version", "", "package version; default from git describe",
	)
	dir := flags.String("dir", ".", "directory to save the package")
	flags.ParseArgs(args)

	s, err := newSession(config)
	if err != nil {
		return err
	}
	defer s.close()

	v := *version
	if v == "" {
		gitVersion, err := abuild.GitVersion(config.Root)
		if err != nil {
			return errcode.Annotate(err, "get version")
		}
		v = gitVersion
	}
	s.b.System().SetVersion(v)

	if err := s.build(); err != nil {
		return err
	}
	out, err := s.b.Package(s.ws, *dir)
	if err != nil {
		return errcode.Annotate(err, "package")
	}
	log.Printf("created %s", out)
	return nil
}

// rebuildHandler runs the build steps again before serving each request.
// Unchanged steps are cache hits, so this is cheap.
type rebuildHandler struct {
	mu sync.Mutex
	s  *session
}

func (h *rebuildHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.mu.Lock()
	err := h.s.build()
	h.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.s.b.Handler().ServeHTTP(w, req)
}

func cmdServe(args []string) error {
	flags := cmdFlags.New()
	config := new(abuild.Config)
	declareBuildFlags(flags, config)
	addr := flags.String("addr", "localhost:8000", "address to listen on")
	flags.ParseArgs(args)

	s, err := newSession(config)
	if err != nil {
		return err
	}
	defer s.close()
	if err := s.build(); err != nil {
		return err
	}

	log.Printf("serving on %s", *addr)
	return http.ListenAndServe(*addr, &rebuildHandler{s: s})
}

func cmdHistory(args []string) error {
	flags := cmdFlags.New()
	journal := flags.String(
		"journal", "build/journal.db", "build journal database file",
	)
	flags.ParseArgs(args)

	j, err := abuild.OpenJournal(*journal)
	if err != nil {
		return err
	}
	defer j.Close()

	run, err := j.LastRun()
	if err != nil {
		return err
	}
	if run == "" {
		return errcode.NotFoundf("no build run in journal")
	}
	events, err := j.Events(run)
	if err != nil {
		return err
	}
	fmt.Printf("run %s\n", run)
	for _, e := range events {
		fmt.Printf("%-14s %s -> %s\n", e.Action, e.Target, e.Out)
	}
	return nil
}
