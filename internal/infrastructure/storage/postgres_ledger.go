package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"ArxivSummarizer/internal/domain"
	"ArxivSummarizer/internal/ports"
)

// PostgresLedger keeps the processed set in a processed_papers table for
// deployments where a shared database beats a file in the repo.
type PostgresLedger struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.Ledger = (*PostgresLedger)(nil)

// NewPostgresLedger wires a sql.DB implementation.
func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Contains reports whether id exists in storage.
func (l *PostgresLedger) Contains(ctx context.Context, id domain.PaperID) (bool, error) {
	if l.db == nil {
		return false, nil
	}

	query, args, err := l.builder.
		Select("1").
		From("processed_papers").
		Where(sq.Eq{"paper_id": string(id)}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = l.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query processed: %w", err)
	}

	return true, nil
}

// Record inserts id, ignoring duplicates.
func (l *PostgresLedger) Record(ctx context.Context, id domain.PaperID) error {
	if l.db == nil {
		return nil
	}

	query, args, err := l.builder.
		Insert("processed_papers").
		Columns("paper_id").
		Values(string(id)).
		Suffix("ON CONFLICT (paper_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert processed: %w", err)
	}

	return nil
}
