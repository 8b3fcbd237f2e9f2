// Package recorder provides SQLite-based game recording: the event stream
// and periodic state snapshots, keyed by a per-game id. It consumes engine
// events as a sink and never feeds state back into the simulation.
package recorder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/empire/internal/game"
)

// Recorder writes the event stream and snapshots of one game to SQLite.
// Notify only buffers; call Flush to commit a batch.
type Recorder struct {
	conn   *sqlx.DB
	gameID string

	mu  sync.Mutex
	buf []game.Event
}

// Open opens or creates a SQLite database at the given path and registers a
// fresh game row under a new id.
func Open(path string, seed int64, civs int) (*Recorder, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	r := &Recorder{conn: conn, gameID: uuid.NewString()}
	if err := r.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	_, err = conn.Exec(
		"INSERT INTO games (id, created_at, seed, civs) VALUES (?, ?, ?, ?)",
		r.gameID, time.Now().UTC().Format(time.RFC3339), seed, civs,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("register game: %w", err)
	}

	slog.Info("recorder opened", "path", path, "game_id", r.gameID)
	return r, nil
}

// GameID returns the id assigned to this recording.
func (r *Recorder) GameID() string {
	return r.gameID
}

// Close flushes buffered events and closes the database.
func (r *Recorder) Close() error {
	if err := r.Flush(); err != nil {
		slog.Warn("flush on close failed", "error", err)
	}
	return r.conn.Close()
}

func (r *Recorder) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		civs INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		year INTEGER NOT NULL,
		kind TEXT NOT NULL,
		civ INTEGER NOT NULL,
		unit INTEGER NOT NULL,
		city INTEGER NOT NULL,
		col INTEGER NOT NULL,
		row INTEGER NOT NULL,
		detail TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS game_meta (
		game_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (game_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_events_game_round ON events(game_id, round);
	CREATE INDEX IF NOT EXISTS idx_snapshots_game ON snapshots(game_id);
	`
	_, err := r.conn.Exec(schema)
	return err
}

// Notify buffers an engine event. Safe for use from any goroutine.
func (r *Recorder) Notify(ev game.Event) {
	r.mu.Lock()
	r.buf = append(r.buf, ev)
	r.mu.Unlock()
}

// Flush commits all buffered events in one transaction.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	pending := r.buf
	r.buf = nil
	r.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	tx, err := r.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO events
		(game_id, round, year, kind, civ, unit, city, col, row, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range pending {
		_, err := stmt.Exec(
			r.gameID, ev.Round, ev.Year, ev.Kind.String(),
			ev.Civ, ev.Unit, ev.City, ev.Col, ev.Row, ev.Detail,
		)
		if err != nil {
			return fmt.Errorf("insert event %s: %w", ev.Kind, err)
		}
	}
	return tx.Commit()
}

// snapshot is the serialized game state stored per round.
type snapshot struct {
	Round  int                  `json:"round"`
	Year   int                  `json:"year"`
	Civs   []*game.Civilization `json:"civilizations"`
	Units  []*game.Unit         `json:"units"`
	Cities []*game.City         `json:"cities"`
}

// SaveSnapshot stores a full state snapshot of the engine.
func (r *Recorder) SaveSnapshot(e *game.Engine) error {
	state, err := json.Marshal(snapshot{
		Round:  e.Round(),
		Year:   e.Year(),
		Civs:   e.GetCivilizations(),
		Units:  e.GetAllUnits(),
		Cities: e.GetAllCities(),
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = r.conn.Exec(
		"INSERT INTO snapshots (game_id, round, state_json) VALUES (?, ?, ?)",
		r.gameID, e.Round(), string(state),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	slog.Debug("snapshot saved", "round", e.Round(), "bytes", len(state))
	return nil
}

// SaveMeta stores a key-value pair scoped to this game.
func (r *Recorder) SaveMeta(key, value string) error {
	_, err := r.conn.Exec(
		"INSERT OR REPLACE INTO game_meta (game_id, key, value) VALUES (?, ?, ?)",
		r.gameID, key, value,
	)
	return err
}

// GetMeta retrieves a metadata value for this game.
func (r *Recorder) GetMeta(key string) (string, error) {
	var value string
	err := r.conn.Get(&value,
		"SELECT value FROM game_meta WHERE game_id = ? AND key = ?", r.gameID, key)
	return value, err
}

// EventRow is an event as stored, with its insertion order id.
type EventRow struct {
	ID     int64  `db:"id" json:"id"`
	Round  int    `db:"round" json:"round"`
	Year   int    `db:"year" json:"year"`
	Kind   string `db:"kind" json:"kind"`
	Civ    uint64 `db:"civ" json:"civ,omitempty"`
	Unit   uint64 `db:"unit" json:"unit,omitempty"`
	City   uint64 `db:"city" json:"city,omitempty"`
	Col    int    `db:"col" json:"col"`
	Row    int    `db:"row" json:"row"`
	Detail string `db:"detail" json:"detail,omitempty"`
}

// RecentEvents returns the most recent N recorded events, newest first.
func (r *Recorder) RecentEvents(limit int) ([]EventRow, error) {
	var rows []EventRow
	err := r.conn.Select(&rows,
		`SELECT id, round, year, kind, civ, unit, city, col, row, detail
		 FROM events WHERE game_id = ? ORDER BY id DESC LIMIT ?`,
		r.gameID, limit,
	)
	return rows, err
}
