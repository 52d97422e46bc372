package clausesync

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uzzysan/Klauzule-zakazane/internal/util"
)

// SourceClause is one row from the court register scraper database.
type SourceClause struct {
	Text           string
	DecisionRef    string
	DecisionDate   *time.Time
	DecisionNumber string
	Industry       string
	Issue          string
	Plaintiff      string
	Defendant      string
	EntryDate      string
}

// SourceAdapter fetches the full register snapshot from a clause source.
type SourceAdapter interface {
	FetchSourceClauses(ctx context.Context) ([]SourceClause, error)
}

// PgSource reads the scraper's postanowienia_niedozwolone table.
type PgSource struct {
	pool *pgxpool.Pool
}

func NewPgSource(ctx context.Context, dsn string) (*PgSource, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: source database url not configured", util.ErrSourceUnavailable)
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse source database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrSourceUnavailable, err)
	}
	return &PgSource{pool: pool}, nil
}

func (s *PgSource) FetchSourceClauses(ctx context.Context) ([]SourceClause, error) {
	rows, err := s.pool.Query(ctx, `
SELECT postanowienie_niedozwolone,
       COALESCE(sygnatura, ''),
       data_wyroku,
       COALESCE(numer_postanowienia, ''),
       COALESCE(branza, ''),
       COALESCE(zagadnienie, ''),
       COALESCE(powod, ''),
       COALESCE(pozwany, ''),
       COALESCE(data_wpisu::text, '')
FROM postanowienia_niedozwolone
WHERE postanowienie_niedozwolone IS NOT NULL
  AND postanowienie_niedozwolone != ''`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	out := make([]SourceClause, 0)
	for rows.Next() {
		var c SourceClause
		if err := rows.Scan(&c.Text, &c.DecisionRef, &c.DecisionDate, &c.DecisionNumber,
			&c.Industry, &c.Issue, &c.Plaintiff, &c.Defendant, &c.EntryDate); err != nil {
			return nil, fmt.Errorf("scan source clause: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source clauses: %w", err)
	}
	return out, nil
}

func (s *PgSource) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}
