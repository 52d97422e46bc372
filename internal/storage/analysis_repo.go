package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

type AnalysisRepo struct {
	db *DB
}

func NewAnalysisRepo(db *DB) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

func (r *AnalysisRepo) InsertAnalysis(ctx context.Context, a models.Analysis) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO analyses (analysis_id, document_id, language, status, total_clauses_found,
                      high_risk_count, medium_risk_count, low_risk_count, risk_score,
                      error_message, started_at, completed_at, duration_seconds)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10,''), $11, $12, $13)`,
		a.AnalysisID, a.DocumentID, a.Language, a.Status, a.TotalFound,
		a.HighRiskCount, a.MediumRiskCount, a.LowRiskCount, a.RiskScore,
		a.ErrorMessage, a.StartedAt, a.CompletedAt, a.DurationSecs,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// InsertFlaggedClause stores one match with its explanation payload so the
// report can show why the clause was flagged.
func (r *AnalysisRepo) InsertFlaggedClause(ctx context.Context, analysisID string, m models.Match) error {
	explanation, err := json.Marshal(map[string]any{
		"vector_score":  m.VectorScore,
		"keyword_score": m.KeywordScore,
		"hybrid_score":  m.HybridScore,
		"match_type":    m.MatchType,
	})
	if err != nil {
		return fmt.Errorf("marshal match explanation: %w", err)
	}
	refs, err := json.Marshal(m.LegalRefs)
	if err != nil {
		return fmt.Errorf("marshal legal references: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO flagged_clauses (analysis_id, clause_id, matched_text, span_start, span_end,
                             risk_level, hybrid_score, explanation, legal_references)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		analysisID, m.ClauseID, m.MatchedText, m.Start, m.End,
		m.RiskLevel, m.HybridScore, explanation, refs,
	)
	if err != nil {
		return fmt.Errorf("insert flagged clause: %w", err)
	}
	return nil
}

func (r *AnalysisRepo) GetLatestAnalysis(ctx context.Context, documentID string) (models.Analysis, error) {
	var a models.Analysis
	err := r.db.Pool.QueryRow(ctx, `
SELECT analysis_id::text, document_id::text, language, status, total_clauses_found,
       high_risk_count, medium_risk_count, low_risk_count, risk_score,
       COALESCE(error_message,''), started_at, completed_at, duration_seconds
FROM analyses
WHERE document_id=$1
ORDER BY started_at DESC NULLS LAST
LIMIT 1`, documentID).
		Scan(&a.AnalysisID, &a.DocumentID, &a.Language, &a.Status, &a.TotalFound,
			&a.HighRiskCount, &a.MediumRiskCount, &a.LowRiskCount, &a.RiskScore,
			&a.ErrorMessage, &a.StartedAt, &a.CompletedAt, &a.DurationSecs)
	if err != nil {
		return models.Analysis{}, fmt.Errorf("get latest analysis: %w", err)
	}
	return a, nil
}
