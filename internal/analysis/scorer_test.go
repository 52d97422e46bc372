package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

type stubEmbedder struct {
	vec []float32
}

func (s *stubEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return s.vec, nil
}

type stubIndex struct {
	candidates []Candidate
}

func (s *stubIndex) Query(_ context.Context, _ []float32, _ float64, _ int) ([]Candidate, error) {
	return s.candidates, nil
}

type stubResolver struct {
	clauses map[string]models.ClauseRecord
	refs    map[string][]models.LegalReference
}

func (s *stubResolver) GetClause(_ context.Context, clauseID string) (models.ClauseRecord, error) {
	return s.clauses[clauseID], nil
}

func (s *stubResolver) LegalReferences(_ context.Context, clauseID string) ([]models.LegalReference, error) {
	return s.refs[clauseID], nil
}

func defaultScorerConfig() ScorerConfig {
	return ScorerConfig{ThresholdLow: 0.65, ThresholdMedium: 0.75, ThresholdHigh: 0.85, MaxCandidates: 3}
}

func TestScoreSegmentPerfectMatch(t *testing.T) {
	clauseText := strings.Repeat("Sprzedawca wyłącza odpowiedzialność za szkody wyrządzone konsumentowi. ", 2)
	resolver := &stubResolver{
		clauses: map[string]models.ClauseRecord{
			"c1": {ClauseID: "c1", ClauseText: clauseText, RiskLevel: models.RiskHigh},
		},
		refs: map[string][]models.LegalReference{
			"c1": {{ArticleCode: "XVII AmC 1/10"}},
		},
	}
	scorer := NewScorer(&stubEmbedder{vec: []float32{1, 0}}, &stubIndex{candidates: []Candidate{{ClauseID: "c1", Similarity: 1.0}}}, resolver, defaultScorerConfig())

	seg := Segment{Text: clauseText, Start: 0, End: len(clauseText)}
	matches, err := scorer.ScoreSegment(context.Background(), seg)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	require.Equal(t, "c1", m.ClauseID)
	require.InDelta(t, 1.0, m.VectorScore, 1e-9)
	require.InDelta(t, 1.0, m.KeywordScore, 1e-9)
	require.InDelta(t, 1.0, m.HybridScore, 1e-9)
	require.Equal(t, models.MatchTypeHybrid, m.MatchType)
	require.Equal(t, models.RiskHigh, m.RiskLevel)
	require.Len(t, m.LegalRefs, 1)
}

func TestScoreSegmentFloorRejectsWeakHybrid(t *testing.T) {
	// Vector score passes retrieval but lexical overlap is zero, so the
	// combined score falls under the floor.
	resolver := &stubResolver{
		clauses: map[string]models.ClauseRecord{
			"c1": {ClauseID: "c1", ClauseText: "completely different wording with no shared tokens"},
		},
		refs: map[string][]models.LegalReference{},
	}
	scorer := NewScorer(&stubEmbedder{vec: []float32{1, 0}}, &stubIndex{candidates: []Candidate{{ClauseID: "c1", Similarity: 0.7}}}, resolver, defaultScorerConfig())

	seg := Segment{Text: strings.Repeat("zapis umowny dotyczący właściwości sądu konsumenckiego ", 2)}
	matches, err := scorer.ScoreSegment(context.Background(), seg)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestScoreSegmentRiskTiers(t *testing.T) {
	cases := []struct {
		similarity float64
		want       string
	}{
		{1.0, models.RiskHigh},
		{0.83, models.RiskMedium},
		{0.72, models.RiskLow},
	}
	clauseText := "Konsument pokrywa wszelkie koszty postępowania reklamacyjnego niezależnie od wyniku."
	for _, tc := range cases {
		resolver := &stubResolver{
			clauses: map[string]models.ClauseRecord{"c1": {ClauseID: "c1", ClauseText: clauseText}},
			refs:    map[string][]models.LegalReference{},
		}
		scorer := NewScorer(&stubEmbedder{vec: []float32{1}}, &stubIndex{candidates: []Candidate{{ClauseID: "c1", Similarity: tc.similarity}}}, resolver, defaultScorerConfig())
		matches, err := scorer.ScoreSegment(context.Background(), Segment{Text: clauseText})
		require.NoError(t, err)
		require.Len(t, matches, 1, "similarity %v", tc.similarity)
		require.Equal(t, tc.want, matches[0].RiskLevel, "similarity %v", tc.similarity)
	}
}

func TestHybridScoreWeights(t *testing.T) {
	require.InDelta(t, 0.7, HybridScore(1.0, 0.0), 1e-9)
	require.InDelta(t, 0.3, HybridScore(0.0, 1.0), 1e-9)
	require.InDelta(t, 0.82, HybridScore(0.9, 0.55), 1e-9)
}

func TestMatchTypeLabels(t *testing.T) {
	require.Equal(t, models.MatchTypeHybrid, MatchType(0.9, 0.5))
	require.Equal(t, models.MatchTypeVector, MatchType(0.9, 0.2))
	require.Equal(t, models.MatchTypeVector, MatchType(0.7, 0.4))
	require.Equal(t, models.MatchTypeKeyword, MatchType(0.3, 0.6))
}

func TestJaccard(t *testing.T) {
	require.InDelta(t, 1.0, Jaccard("umowa sprzedaży", "Umowa SPRZEDAŻY"), 1e-9)
	require.InDelta(t, 0.0, Jaccard("umowa", "regulamin"), 1e-9)
	require.InDelta(t, 0.0, Jaccard("", "umowa"), 1e-9)
	require.InDelta(t, 0.0, Jaccard("...", "umowa"), 1e-9)

	// Polish diacritics are single tokens, not split points.
	require.InDelta(t, 1.0, Jaccard("świadczeń", "świadczeń"), 1e-9)
	require.InDelta(t, 1.0/3.0, Jaccard("zażalenie konsumenta", "zażalenie sprzedawcy"), 1e-9)
}
