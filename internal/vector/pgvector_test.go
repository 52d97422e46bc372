package vector

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestToLiteral(t *testing.T) {
	require.Equal(t, "[0.500000,-1.000000]", ToLiteral([]float32{0.5, -1}))
	require.Equal(t, "[]", ToLiteral(nil))
}

func TestPgVectorIndexQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"clause_id", "similarity"}).
		AddRow("c1", 0.93).
		AddRow("c2", 0.71)
	mock.ExpectQuery("SELECT clause_id::text").
		WithArgs(ToLiteral([]float32{1, 0}), 0.65, 3).
		WillReturnRows(rows)

	idx := NewPgVectorIndex(mock)
	candidates, err := idx.Query(context.Background(), []float32{1, 0}, 0.65, 3)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, "c1", candidates[0].ClauseID)
	require.InDelta(t, 0.93, candidates[0].Similarity, 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgVectorIndexDefaultLimit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT clause_id::text").
		WithArgs(ToLiteral([]float32{1}), 0.5, 3).
		WillReturnRows(pgxmock.NewRows([]string{"clause_id", "similarity"}))

	idx := NewPgVectorIndex(mock)
	candidates, err := idx.Query(context.Background(), []float32{1}, 0.5, 0)
	require.NoError(t, err)
	require.Empty(t, candidates)
	require.NoError(t, mock.ExpectationsWereMet())
}
