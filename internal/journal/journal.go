/*
Package journal keeps a history of save operations in a SQLite database.
*/
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kiesman99/splitsave/internal/tiler"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is one recorded save
type Entry struct {
	ID      int64
	Time    time.Time
	Source  string
	Width   int
	Height  int
	Kind    string
	Path    string
	Files   int
	Tried   string
	Message string
}

type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database in file
func Open(file string) (*Journal, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS save (id INTEGER PRIMARY KEY NOT NULL, time INTEGER NOT NULL, source TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, kind TEXT NOT NULL, path TEXT NOT NULL, files INTEGER NOT NULL, tried TEXT NOT NULL, message TEXT NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{
		db: db,
	}, nil
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}

// NewEntry describes an outcome as a journal entry
func NewEntry(source string, out *tiler.Outcome, t time.Time) Entry {
	path := out.Path
	if out.Kind == tiler.TiledSaved {
		path = out.Directory
	}

	tried := ""
	for i, steps := range out.Tried {
		if i > 0 {
			tried += ","
		}
		tried += fmt.Sprint(steps)
	}

	return Entry{
		Time:    t,
		Source:  source,
		Width:   out.Width,
		Height:  out.Height,
		Kind:    out.Kind.String(),
		Path:    path,
		Files:   out.FileCount(),
		Tried:   tried,
		Message: out.Message(),
	}
}

// Record appends e to the journal and returns its id
func (j *Journal) Record(ctx context.Context, e Entry) (int64, error) {
	res, err := j.db.ExecContext(ctx, "INSERT INTO save (time, source, width, height, kind, path, files, tried, message) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.Time.UnixNano(), e.Source, e.Width, e.Height, e.Kind, e.Path, e.Files, e.Tried, e.Message)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, "SELECT id, time, source, width, height, kind, path, files, tried, message FROM save ORDER BY time DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			ns int64
		)
		if err := rows.Scan(&e.ID, &ns, &e.Source, &e.Width, &e.Height, &e.Kind, &e.Path, &e.Files, &e.Tried, &e.Message); err != nil {
			return nil, err
		}
		e.Time = time.Unix(0, ns)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
