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

package abuild

import (
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"shanhu.io/misc/errcode"

	_ "modernc.org/sqlite" // sqlite driver
)

// Build actions recorded as events.
const (
	ActionHit          = "hit"
	ActionBuild        = "build"
	ActionReuse        = "reuse"
	ActionModuleCached = "module-cached"
	ActionModuleBuild  = "module-build"
	ActionPackage      = "package"
)

// Event is a build decision made by the build system.
type Event struct {
	Run    string
	Seq    int64
	Target string
	Out    string
	Action string
	Hash   string
	Time   time.Time
}

// Recorder receives the build events of a run.
type Recorder interface {
	Record(e *Event) error
}

const journalSchema = `
create table if not exists runs (
	id text primary key,
	started integer not null
);
create table if not exists events (
	run text not null,
	seq integer not null,
	target text not null,
	out text not null,
	action text not null,
	hash text not null,
	t integer not null,
	primary key (run, seq)
);
`

// Journal records build events into a sqlite database. Each journal value
// is one run. The journal is only a record; builds never read it.
type Journal struct {
	db  *sql.DB
	run string
	now func() time.Time

	mu      sync.Mutex
	started bool
	seq     int64
}

// OpenJournal opens or creates the journal database at f. The new run is
// saved when its first event is recorded.
func OpenJournal(f string) (*Journal, error) {
	db, err := sql.Open("sqlite", f)
	if err != nil {
		return nil, errcode.Annotate(err, "open journal")
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, errcode.Annotate(err, "create journal tables")
	}

	return &Journal{
		db:  db,
		run: uuid.New().String(),
		now: time.Now,
	}, nil
}

func (j *Journal) startRun() error {
	if j.started {
		return nil
	}
	if _, err := j.db.Exec(
		`insert into runs (id, started) values (?, ?)`,
		j.run, j.now().UnixNano(),
	); err != nil {
		return errcode.Annotate(err, "start run")
	}
	j.started = true
	return nil
}

// Run returns the id of the current run.
func (j *Journal) Run() string { return j.run }

// Record appends an event to the current run.
func (j *Journal) Record(e *Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.startRun(); err != nil {
		return err
	}
	j.seq++
	e.Run = j.run
	e.Seq = j.seq
	e.Time = j.now()
	if _, err := j.db.Exec(
		`insert into events (run, seq, target, out, action, hash, t)
			values (?, ?, ?, ?, ?, ?, ?)`,
		e.Run, e.Seq, e.Target, e.Out, e.Action, e.Hash,
		e.Time.UnixNano(),
	); err != nil {
		return errcode.Annotate(err, "insert event")
	}
	return nil
}

// LastRun returns the id of the latest saved run other than the current
// one. It returns an empty string when there is none.
func (j *Journal) LastRun() (string, error) {
	row := j.db.QueryRow(
		`select id from runs where id != ?
			order by started desc limit 1`,
		j.run,
	)
	var id string
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", errcode.Annotate(err, "query last run")
	}
	return id, nil
}

// Events returns all events of a run, in order.
func (j *Journal) Events(run string) ([]*Event, error) {
	rows, err := j.db.Query(
		`select seq, target, out, action, hash, t from events
			where run = ? order by seq`,
		run,
	)
	if err != nil {
		return nil, errcode.Annotate(err, "query events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{Run: run}
		var t int64
		if err := rows.Scan(
			&e.Seq, &e.Target, &e.Out, &e.Action, &e.Hash, &t,
		); err != nil {
			return nil, errcode.Annotate(err, "scan event")
		}
		e.Time = time.Unix(0, t)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errcode.Annotate(err, "read events")
	}
	return events, nil
}

// Close closes the journal database.
func (j *Journal) Close() error { return j.db.Close() }
