// Package sqlitebelief is a BeliefTable adapter that persists evidence in a
// SQLite database, mirroring pkg/korel/store/sqlite's WAL-mode,
// schema-init-on-open style. It does not participate in the inference
// core's hot path beyond the belief.Table / belief.MutableTable contracts.
package sqlitebelief

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/propinfer/pkg/propinfer/model"
)

// Table persists proposition evidence in SQLite.
type Table struct {
	db *sql.DB
}

// Open opens (and, if necessary, creates) a SQLite-backed belief table at
// path, with WAL mode enabled for concurrent readers.
func Open(ctx context.Context, path string) (*Table, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite belief table: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Table{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS evidence (
	proposition_key TEXT PRIMARY KEY,
	probability REAL NOT NULL
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init evidence schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (t *Table) Close() error {
	return t.db.Close()
}

// GetPropositionProbability implements belief.Table.
func (t *Table) GetPropositionProbability(p model.Proposition) (float64, bool) {
	row := t.db.QueryRowContext(context.Background(),
		"SELECT probability FROM evidence WHERE proposition_key = ?", p.HashString())

	var prob float64
	if err := row.Scan(&prob); err != nil {
		return 0, false
	}
	return prob, true
}

// StorePropositionProbability implements belief.MutableTable.
func (t *Table) StorePropositionProbability(p model.Proposition, prob float64) error {
	_, err := t.db.ExecContext(context.Background(),
		`INSERT INTO evidence (proposition_key, probability) VALUES (?, ?)
		 ON CONFLICT(proposition_key) DO UPDATE SET probability = excluded.probability`,
		p.HashString(), prob)
	if err != nil {
		return fmt.Errorf("store proposition probability: %w", err)
	}
	return nil
}
