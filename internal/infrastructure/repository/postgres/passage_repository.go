package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

// PassageRepository stores the FAQ corpus snapshot. The corpus is closed and
// versioned as a whole, so writes always replace the full table content.
type PassageRepository struct {
	db *sql.DB
}

func NewPassageRepository(db *sql.DB) *PassageRepository {
	return &PassageRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *PassageRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/indexer startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS faq_passages (
	chunk_id TEXT PRIMARY KEY,
	faq_id TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT '',
	channel TEXT NOT NULL DEFAULT 'both'
);

CREATE INDEX IF NOT EXISTS idx_faq_passages_faq_id ON faq_passages(faq_id);
CREATE INDEX IF NOT EXISTS idx_faq_passages_category ON faq_passages(category);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// ReplaceAll swaps the snapshot in one transaction so readers never observe
// a half-written corpus.
func (r *PassageRepository) ReplaceAll(ctx context.Context, passages []domain.Passage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM faq_passages`); err != nil {
		return fmt.Errorf("clear passages: %w", err)
	}

	const insert = `
INSERT INTO faq_passages (chunk_id, faq_id, title, body, category, url, updated_at, channel)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	for _, p := range passages {
		if _, err := tx.ExecContext(ctx, insert,
			p.ChunkID, p.FAQID, p.Title, p.Text, p.Category, p.URL, p.UpdatedAt, string(p.Channel),
		); err != nil {
			return fmt.Errorf("insert passage %s: %w", p.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	return nil
}

// ListAll returns the snapshot in stable corpus order; the lexical index is
// built aligned with this order.
func (r *PassageRepository) ListAll(ctx context.Context) ([]domain.Passage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT chunk_id, faq_id, title, body, category, url, updated_at, channel
FROM faq_passages
ORDER BY chunk_id
`)
	if err != nil {
		return nil, fmt.Errorf("query passages: %w", err)
	}
	defer rows.Close()

	var passages []domain.Passage
	for rows.Next() {
		var p domain.Passage
		var channel string
		if err := rows.Scan(&p.ChunkID, &p.FAQID, &p.Title, &p.Text, &p.Category, &p.URL, &p.UpdatedAt, &channel); err != nil {
			return nil, fmt.Errorf("scan passage: %w", err)
		}
		p.Channel = domain.Channel(channel)
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passages: %w", err)
	}
	return passages, nil
}
