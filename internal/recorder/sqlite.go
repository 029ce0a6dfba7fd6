package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var _ Recorder = (*SQLiteRecorder)(nil)

// SQLiteRecorder persists game records to a SQLite database.
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
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

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
		`CREATE TABLE IF NOT EXISTS timeline_records (
			game_id    TEXT NOT NULL,
			player     TEXT NOT NULL,
			week       INTEGER NOT NULL,
			kind       TEXT NOT NULL,
			entity     TEXT NOT NULL,
			value      REAL,
			text       TEXT,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (game_id, player, week, kind, entity)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_kind ON timeline_records(game_id, kind)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) Upsert(ctx context.Context, records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, rec := range records {
		_, err := tx.ExecContext(ctx, `INSERT INTO timeline_records
			(game_id, player, week, kind, entity, value, text, updated_at)
			VALUES (?,?,?,?,?,?,?,?)
			ON CONFLICT (game_id, player, week, kind, entity) DO UPDATE SET
				value = excluded.value,
				text = excluded.text,
				updated_at = excluded.updated_at`,
			rec.GameID, rec.Player, rec.Week, string(rec.Kind), rec.Entity, rec.Value, rec.Text, now,
		)
		if err != nil {
			return fmt.Errorf("upsert %s/%s week %d: %w", rec.Kind, rec.Entity, rec.Week, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Delete(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, k := range keys {
		_, err := tx.ExecContext(ctx, `DELETE FROM timeline_records
			WHERE game_id = ? AND player = ? AND week = ? AND kind = ? AND entity = ?`,
			k.GameID, k.Player, k.Week, string(k.Kind), k.Entity,
		)
		if err != nil {
			return fmt.Errorf("delete %s/%s week %d: %w", k.Kind, k.Entity, k.Week, err)
		}
	}
	return tx.Commit()
}

// List returns the records of one player's game ordered by week, kind and entity.
func (r *SQLiteRecorder) List(ctx context.Context, gameID, player string) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `SELECT week, kind, entity, value, text
		FROM timeline_records
		WHERE game_id = ? AND player = ?
		ORDER BY week, kind, entity`, gameID, player)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec := Record{Key: Key{GameID: gameID, Player: player}}
		var kind string
		var value sql.NullFloat64
		var text sql.NullString
		if err := rows.Scan(&rec.Week, &kind, &rec.Entity, &value, &text); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Kind = Kind(kind)
		rec.Value = value.Float64
		rec.Text = text.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
