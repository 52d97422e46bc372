package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// Candidate is one ANN hit from the clause index.
type Candidate struct {
	ClauseID   string
	Similarity float64
}

// ClauseIndex is the approximate-nearest-neighbor lookup over known
// prohibited-clause vectors. Results are ordered by descending similarity
// and filtered to similarity >= minSimilarity.
type ClauseIndex interface {
	Query(ctx context.Context, vec []float32, minSimilarity float64, limit int) ([]Candidate, error)
}

// ClauseResolver loads clause records and their legal references for
// candidates returned by the index.
type ClauseResolver interface {
	GetClause(ctx context.Context, clauseID string) (models.ClauseRecord, error)
	LegalReferences(ctx context.Context, clauseID string) ([]models.LegalReference, error)
}

// Embedder maps a single text to a vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

type ScorerConfig struct {
	ThresholdLow    float64
	ThresholdMedium float64
	ThresholdHigh   float64
	MaxCandidates   int
}

// Scorer combines vector similarity and lexical overlap into one
// confidence value per candidate clause.
type Scorer struct {
	embed   Embedder
	index   ClauseIndex
	clauses ClauseResolver
	cfg     ScorerConfig
}

func NewScorer(embed Embedder, index ClauseIndex, clauses ClauseResolver, cfg ScorerConfig) *Scorer {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 3
	}
	return &Scorer{embed: embed, index: index, clauses: clauses, cfg: cfg}
}

// ScoreSegment queries the index for candidates and scores each one.
// A candidate can pass vector retrieval but still fail the combined floor.
func (s *Scorer) ScoreSegment(ctx context.Context, seg Segment) ([]models.Match, error) {
	vec, err := s.embed.EmbedText(ctx, seg.Text)
	if err != nil {
		return nil, fmt.Errorf("embed segment: %w", err)
	}
	candidates, err := s.index.Query(ctx, vec, s.cfg.ThresholdLow, s.cfg.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("query clause index: %w", err)
	}

	matches := make([]models.Match, 0, len(candidates))
	for _, cand := range candidates {
		clause, err := s.clauses.GetClause(ctx, cand.ClauseID)
		if err != nil {
			return nil, fmt.Errorf("resolve clause %s: %w", cand.ClauseID, err)
		}
		keywordScore := Jaccard(seg.Text, clause.ClauseText)
		hybrid := HybridScore(cand.Similarity, keywordScore)
		if hybrid < s.cfg.ThresholdLow {
			continue
		}
		refs, err := s.clauses.LegalReferences(ctx, cand.ClauseID)
		if err != nil {
			return nil, fmt.Errorf("legal references for %s: %w", cand.ClauseID, err)
		}
		matches = append(matches, models.Match{
			ClauseID:     clause.ClauseID,
			ClauseText:   clause.ClauseText,
			MatchedText:  seg.Text,
			Start:        seg.Start,
			End:          seg.End,
			VectorScore:  cand.Similarity,
			KeywordScore: keywordScore,
			HybridScore:  hybrid,
			MatchType:    MatchType(cand.Similarity, keywordScore),
			RiskLevel:    s.riskLevel(hybrid),
			Notes:        clause.Notes,
			Tags:         clause.Tags,
			LegalRefs:    refs,
		})
	}
	return matches, nil
}

// The risk tier reflects match confidence, not the clause's intrinsic risk.
func (s *Scorer) riskLevel(hybrid float64) string {
	switch {
	case hybrid >= s.cfg.ThresholdHigh:
		return models.RiskHigh
	case hybrid >= s.cfg.ThresholdMedium:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// HybridScore weights embedding similarity over lexical overlap.
func HybridScore(vectorScore, keywordScore float64) float64 {
	return vectorScore*0.7 + keywordScore*0.3
}

// MatchType labels which signal carried the match.
func MatchType(vectorScore, keywordScore float64) string {
	if vectorScore > 0.8 && keywordScore > 0.3 {
		return models.MatchTypeHybrid
	}
	if vectorScore > keywordScore {
		return models.MatchTypeVector
	}
	return models.MatchTypeKeyword
}

var wordToken = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Jaccard computes word-token set overlap, case-insensitive. Token classes
// cover Unicode letters so Polish diacritics count as word characters.
func Jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}
	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range wordToken.FindAllString(strings.ToLower(text), -1) {
		out[tok] = struct{}{}
	}
	return out
}
