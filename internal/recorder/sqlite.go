package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/BreakThePill/breakpill/internal/model"
)

// SQLiteRecorder persists observed history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external readers don't block the client's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS activity (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at  INTEGER NOT NULL,
			kind         TEXT NOT NULL,
			amount_wei   TEXT NOT NULL,
			actor        TEXT NOT NULL,
			block_number INTEGER NOT NULL,
			tx_hash      TEXT NOT NULL,
			log_index    INTEGER NOT NULL,
			UNIQUE(kind, block_number, tx_hash, log_index)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_block ON activity(block_number)`,

		`CREATE TABLE IF NOT EXISTS round_notices (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at  INTEGER NOT NULL,
			event        TEXT NOT NULL,
			note         TEXT,
			block_number INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS session_transitions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			from_state  TEXT NOT NULL,
			to_state    TEXT NOT NULL,
			account     TEXT,
			note        TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordActivity inserts one feed record; duplicates are ignored.
func (r *SQLiteRecorder) RecordActivity(rec *model.ActivityRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	amount := "0"
	if rec.AmountWei != nil {
		amount = rec.AmountWei.String()
	}
	_, err := r.db.Exec(`INSERT OR IGNORE INTO activity
		(recorded_at, kind, amount_wei, actor, block_number, tx_hash, log_index)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(), string(rec.Kind), amount, rec.Actor,
		rec.BlockNumber, rec.TxHash, rec.LogIndex)
	return err
}

// RecordRound inserts one round-lifecycle notice.
func (r *SQLiteRecorder) RecordRound(notice *model.RoundNotice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO round_notices
		(recorded_at, event, note, block_number) VALUES (?, ?, ?, ?)`,
		time.Now().Unix(), notice.Event, notice.Note, notice.BlockNumber)
	return err
}

// RecordTransition inserts one session state change.
func (r *SQLiteRecorder) RecordTransition(evt *SessionTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO session_transitions
		(recorded_at, from_state, to_state, account, note) VALUES (?, ?, ?, ?, ?)`,
		time.Now().Unix(), evt.From, evt.To, evt.Account, evt.Note)
	return err
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
