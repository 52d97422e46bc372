package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

type ClauseRepo struct {
	db *DB
}

func NewClauseRepo(db *DB) *ClauseRepo {
	return &ClauseRepo{db: db}
}

func (r *ClauseRepo) GetClause(ctx context.Context, clauseID string) (models.ClauseRecord, error) {
	var c models.ClauseRecord
	err := r.db.Pool.QueryRow(ctx, `
SELECT clause_id::text, clause_text, normalized_text, risk_level, language, source,
       COALESCE(notes,''), COALESCE(tags, '{}'), usage_count, is_active, created_at
FROM prohibited_clauses
WHERE clause_id=$1`, clauseID).
		Scan(&c.ClauseID, &c.ClauseText, &c.NormalizedText, &c.RiskLevel, &c.Language, &c.Source,
			&c.Notes, &c.Tags, &c.UsageCount, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return models.ClauseRecord{}, fmt.Errorf("get clause: %w", err)
	}
	return c, nil
}

// InsertClause writes a new clause with its embedding as a pgvector literal.
func (r *ClauseRepo) InsertClause(ctx context.Context, c models.ClauseRecord, embeddingLiteral string) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO prohibited_clauses (clause_id, clause_text, normalized_text, risk_level, language, source, notes, tags, embedding, is_active)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''), $8, $9::vector, $10)`,
		c.ClauseID, c.ClauseText, c.NormalizedText, c.RiskLevel, c.Language, c.Source, c.Notes, c.Tags, embeddingLiteral, c.IsActive,
	)
	if err != nil {
		return fmt.Errorf("insert clause: %w", err)
	}
	return nil
}

// ListClauseTexts returns the stripped raw text of every clause, active or
// not. The reconciler dedups on exact text; normalized_text stays a stored
// column for anything fuzzier later.
func (r *ClauseRepo) ListClauseTexts(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT clause_text FROM prohibited_clauses`)
	if err != nil {
		return nil, fmt.Errorf("list clause texts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan clause text: %w", err)
		}
		out[strings.TrimSpace(text)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clause texts: %w", err)
	}
	return out, nil
}

func (r *ClauseRepo) CountClauses(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM prohibited_clauses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count clauses: %w", err)
	}
	return n, nil
}

func (r *ClauseRepo) IncrementUsage(ctx context.Context, clauseIDs []string) error {
	if len(clauseIDs) == 0 {
		return nil
	}
	_, err := r.db.Pool.Exec(ctx, `
UPDATE prohibited_clauses SET usage_count = usage_count + 1 WHERE clause_id = ANY($1)`, clauseIDs)
	if err != nil {
		return fmt.Errorf("increment clause usage: %w", err)
	}
	return nil
}

// GetOrCreateLegalReference keys references by article code, which for court
// register clauses is the decision signature.
func (r *ClauseRepo) GetOrCreateLegalReference(ctx context.Context, ref models.LegalReference) (string, error) {
	var id string
	err := r.db.Pool.QueryRow(ctx, `
INSERT INTO legal_references (reference_id, article_code, article_title, description, law_name, jurisdiction, effective_date)
VALUES ($1, $2, NULLIF($3,''), $4, $5, $6, $7)
ON CONFLICT (article_code)
DO UPDATE SET article_code = EXCLUDED.article_code
RETURNING reference_id::text`,
		ref.ReferenceID, ref.ArticleCode, ref.ArticleTitle, ref.Description, ref.LawName, ref.Jurisdiction, ref.EffectiveDate).
		Scan(&id)
	if err != nil {
		return "", fmt.Errorf("get or create legal reference: %w", err)
	}
	return id, nil
}

func (r *ClauseRepo) LinkClauseReference(ctx context.Context, clauseID, referenceID string) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO clause_legal_references (clause_id, reference_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`, clauseID, referenceID)
	if err != nil {
		return fmt.Errorf("link clause reference: %w", err)
	}
	return nil
}

func (r *ClauseRepo) LegalReferences(ctx context.Context, clauseID string) ([]models.LegalReference, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT lr.reference_id::text, lr.article_code, COALESCE(lr.article_title,''), lr.description,
       lr.law_name, lr.jurisdiction, lr.effective_date
FROM legal_references lr
JOIN clause_legal_references clr ON clr.reference_id = lr.reference_id
WHERE clr.clause_id=$1
ORDER BY lr.article_code`, clauseID)
	if err != nil {
		return nil, fmt.Errorf("list legal references: %w", err)
	}
	defer rows.Close()

	out := make([]models.LegalReference, 0)
	for rows.Next() {
		var ref models.LegalReference
		if err := rows.Scan(&ref.ReferenceID, &ref.ArticleCode, &ref.ArticleTitle, &ref.Description,
			&ref.LawName, &ref.Jurisdiction, &ref.EffectiveDate); err != nil {
			return nil, fmt.Errorf("scan legal reference: %w", err)
		}
		out = append(out, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate legal references: %w", err)
	}
	return out, nil
}
