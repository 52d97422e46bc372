package vector

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"github.com/uzzysan/Klauzule-zakazane/internal/analysis"
)

// QdrantIndex serves ANN lookups from an external Qdrant collection. Point
// IDs are the clause UUIDs; vectors are written by the corpus importer.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
}

func NewQdrantIndex(addr, collection string) (*QdrantIndex, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant port %q: %w", portStr, err)
	}
	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("connect qdrant: %w", err)
	}
	return &QdrantIndex{client: client, collection: collection}, nil
}

func (s *QdrantIndex) Query(ctx context.Context, vec []float32, minSimilarity float64, limit int) ([]analysis.Candidate, error) {
	if limit <= 0 {
		limit = 3
	}
	limitU := uint64(limit)
	threshold := float32(minSimilarity)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          &limitU,
		ScoreThreshold: &threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("query qdrant: %w", err)
	}
	candidates := make([]analysis.Candidate, 0, len(points))
	for _, p := range points {
		candidates = append(candidates, analysis.Candidate{
			ClauseID:   p.GetId().GetUuid(),
			Similarity: float64(p.GetScore()),
		})
	}
	return candidates, nil
}

func (s *QdrantIndex) Close() error {
	return s.client.Close()
}
