// Package recorder persists every emitted velocity command to an
// embedded SQLite database so an operator session can be audited or
// replayed offline.
package recorder

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	customlog "github.com/MahiRanka/dimos-unitree/pkg/log"
	"github.com/MahiRanka/dimos-unitree/pkg/teleop"
)

const schema = `
CREATE TABLE IF NOT EXISTS command_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_ns INTEGER NOT NULL,
	source      TEXT    NOT NULL,
	label       TEXT    NOT NULL,
	lin_vel_x   REAL    NOT NULL,
	lin_vel_y   REAL    NOT NULL,
	ang_vel     REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_command_log_recorded ON command_log(recorded_ns);
`

// Entry is one recorded command row.
type Entry struct {
	ID         int64                  `json:"id"`
	RecordedNs int64                  `json:"recorded_ns"`
	Source     string                 `json:"source"`
	Label      string                 `json:"label"`
	Command    teleop.VelocityCommand `json:"command"`
}

// Recorder appends command frames to the command_log table.
type Recorder struct {
	db     *sql.DB
	logger customlog.Logger
}

// NewRecorder opens (creating if necessary) the database at path.
func NewRecorder(path string, logger customlog.Logger) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open command log '%s': %w", path, err)
	}

	// The recorder is written from the single control loop goroutine;
	// one connection avoids SQLITE_BUSY on concurrent reads.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize command log schema: %w", err)
	}

	logger.Infof("Command recorder initialized at %s", path)
	return &Recorder{db: db, logger: logger}, nil
}

// Publish appends one command row. It implements the service's CommandSink.
func (r *Recorder) Publish(cmd teleop.VelocityCommand, source, label string) error {
	_, err := r.db.Exec(
		`INSERT INTO command_log (recorded_ns, source, label, lin_vel_x, lin_vel_y, ang_vel)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UnixNano(), source, label, cmd.LinVelX, cmd.LinVelY, cmd.AngVel,
	)
	if err != nil {
		return fmt.Errorf("failed to record command: %w", err)
	}
	return nil
}

// Recent returns up to n most recent entries, newest first.
func (r *Recorder) Recent(n int) ([]Entry, error) {
	rows, err := r.db.Query(
		`SELECT id, recorded_ns, source, label, lin_vel_x, lin_vel_y, ang_vel
		 FROM command_log ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query command log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RecordedNs, &e.Source, &e.Label,
			&e.Command.LinVelX, &e.Command.LinVelY, &e.Command.AngVel); err != nil {
			return nil, fmt.Errorf("failed to scan command log row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}
