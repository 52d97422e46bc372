package analysis

import (
	"context"
	"sort"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// Risk score weights per tier, capped at 100.
const (
	weightHigh   = 10
	weightMedium = 5
	weightLow    = 2
)

// Analyzer runs the full segment-and-score pass over one document's text.
// Segments are scored sequentially; there is no intra-document parallelism.
type Analyzer struct {
	scorer *Scorer
}

func NewAnalyzer(scorer *Scorer) *Analyzer {
	return &Analyzer{scorer: scorer}
}

// AnalyzeDocument segments the text, scores every segment, deduplicates
// matches by clause keeping the highest-scoring mention, and aggregates
// risk counts into a 0-100 score.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, text string) (models.AnalysisResult, error) {
	segments := SegmentText(text)

	best := make(map[string]models.Match)
	for _, seg := range segments {
		segMatches, err := a.scorer.ScoreSegment(ctx, seg)
		if err != nil {
			return models.AnalysisResult{}, err
		}
		for _, m := range segMatches {
			if prev, ok := best[m.ClauseID]; !ok || m.HybridScore > prev.HybridScore {
				best[m.ClauseID] = m
			}
		}
	}

	matches := make([]models.Match, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].HybridScore != matches[j].HybridScore {
			return matches[i].HybridScore > matches[j].HybridScore
		}
		return matches[i].ClauseID < matches[j].ClauseID
	})

	return Aggregate(matches, len(segments)), nil
}

// Aggregate derives tier counts and the document risk score from a match
// list that is already deduplicated and ordered.
func Aggregate(matches []models.Match, segmentsAnalyzed int) models.AnalysisResult {
	result := models.AnalysisResult{
		Matches:          matches,
		SegmentsAnalyzed: segmentsAnalyzed,
	}
	for _, m := range matches {
		switch m.RiskLevel {
		case models.RiskHigh:
			result.HighRiskCount++
		case models.RiskMedium:
			result.MediumRiskCount++
		default:
			result.LowRiskCount++
		}
	}
	score := result.HighRiskCount*weightHigh + result.MediumRiskCount*weightMedium + result.LowRiskCount*weightLow
	if score > 100 {
		score = 100
	}
	result.RiskScore = score
	return result
}
