package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/uzzysan/Klauzule-zakazane/internal/analysis"
)

type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgVectorIndex serves ANN lookups straight from the prohibited_clauses
// table using pgvector cosine distance.
type PgVectorIndex struct {
	q Queryer
}

func NewPgVectorIndex(q Queryer) *PgVectorIndex {
	return &PgVectorIndex{q: q}
}

func (s *PgVectorIndex) Query(ctx context.Context, vec []float32, minSimilarity float64, limit int) ([]analysis.Candidate, error) {
	if limit <= 0 {
		limit = 3
	}
	vecLiteral := ToLiteral(vec)

	rows, err := s.q.Query(ctx, `
SELECT clause_id::text,
       1 - (embedding <=> $1::vector) AS similarity
FROM prohibited_clauses
WHERE is_active = true
  AND embedding IS NOT NULL
  AND 1 - (embedding <=> $1::vector) >= $2
ORDER BY embedding <=> $1::vector
LIMIT $3`, vecLiteral, minSimilarity, limit)
	if err != nil {
		return nil, fmt.Errorf("query clause index: %w", err)
	}
	defer rows.Close()

	candidates := make([]analysis.Candidate, 0, limit)
	for rows.Next() {
		var c analysis.Candidate
		if err := rows.Scan(&c.ClauseID, &c.Similarity); err != nil {
			return nil, fmt.Errorf("scan clause candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clause candidates: %w", err)
	}
	return candidates, nil
}

func ToLiteral(v []float32) string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, fmt.Sprintf("%f", x))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
