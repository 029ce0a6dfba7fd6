package recorder

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Recorder = (*PostgresRecorder)(nil)

// PostgresRecorder persists game records to PostgreSQL.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder connects to PostgreSQL and ensures the schema exists.
func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	r := &PostgresRecorder{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Println("[INFO] postgres recorder connected")
	return r, nil
}

func (r *PostgresRecorder) ensureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS timeline_records (
    game_id    TEXT NOT NULL,
    player     TEXT NOT NULL,
    week       INTEGER NOT NULL,
    kind       TEXT NOT NULL,
    entity     TEXT NOT NULL,
    value      DOUBLE PRECISION,
    text       TEXT,
    updated_at TIMESTAMPTZ DEFAULT now(),
    PRIMARY KEY (game_id, player, week, kind, entity)
);

CREATE INDEX IF NOT EXISTS idx_records_kind ON timeline_records (game_id, kind);
`
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Upsert(ctx context.Context, records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`INSERT INTO timeline_records (game_id, player, week, kind, entity, value, text)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (game_id, player, week, kind, entity) DO UPDATE SET
    value = EXCLUDED.value,
    text = EXCLUDED.text,
    updated_at = now()`,
			rec.GameID, rec.Player, rec.Week, string(rec.Kind), rec.Entity, rec.Value, rec.Text,
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting records: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Delete(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, k := range keys {
		_, err := tx.Exec(ctx,
			`DELETE FROM timeline_records WHERE game_id = $1 AND player = $2 AND week = $3 AND kind = $4 AND entity = $5`,
			k.GameID, k.Player, k.Week, string(k.Kind), k.Entity,
		)
		if err != nil {
			return fmt.Errorf("deleting record: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Close() error {
	log.Println("[INFO] closing postgres recorder")
	r.pool.Close()
	return nil
}
