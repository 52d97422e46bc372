package clausesync

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

type fakeSource struct {
	clauses []SourceClause
	err     error
}

func (f *fakeSource) FetchSourceClauses(_ context.Context) ([]SourceClause, error) {
	return f.clauses, f.err
}

type fakeStore struct {
	texts    map[string]struct{}
	inserted []models.ClauseRecord
	refs     map[string]models.LegalReference
	links    map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		texts: map[string]struct{}{},
		refs:  map[string]models.LegalReference{},
		links: map[string]string{},
	}
}

func (f *fakeStore) ListClauseTexts(_ context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(f.texts))
	for k := range f.texts {
		out[k] = struct{}{}
	}
	return out, nil
}

func (f *fakeStore) CountClauses(_ context.Context) (int, error) {
	return len(f.texts), nil
}

func (f *fakeStore) InsertClause(_ context.Context, c models.ClauseRecord, _ string) error {
	f.inserted = append(f.inserted, c)
	f.texts[strings.TrimSpace(c.ClauseText)] = struct{}{}
	return nil
}

func (f *fakeStore) GetOrCreateLegalReference(_ context.Context, ref models.LegalReference) (string, error) {
	if existing, ok := f.refs[ref.ArticleCode]; ok {
		return existing.ReferenceID, nil
	}
	f.refs[ref.ArticleCode] = ref
	return ref.ReferenceID, nil
}

func (f *fakeStore) LinkClauseReference(_ context.Context, clauseID, referenceID string) error {
	f.links[clauseID] = referenceID
	return nil
}

type fakeEmbedder struct {
	failOn string
}

func (f *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errors.New("embedding backend down")
	}
	return []float32{0.1, 0.2}, nil
}

func registerRows() []SourceClause {
	decided := time.Date(2019, 4, 15, 0, 0, 0, 0, time.UTC)
	return []SourceClause{
		{
			Text:         "Sprzedawca nie ponosi odpowiedzialności za opóźnienia w dostawie towaru.",
			DecisionRef:  "XVII AmC 624/09",
			DecisionDate: &decided,
			Industry:     "handel elektroniczny",
			Issue:        "odpowiedzialność",
			Plaintiff:    "Prezes UOKiK",
			Defendant:    "Sklep sp. z o.o.",
		},
		{
			Text: "Konsument zrzeka się prawa do dochodzenia roszczeń na drodze sądowej.",
		},
	}
}

func TestReconcilerImportsNewClauses(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(&fakeSource{clauses: registerRows()}, store, &fakeEmbedder{}, nil)

	stats, err := r.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.Added)
	require.Equal(t, 0, stats.Skipped)
	require.Equal(t, 0, stats.Errors)
	require.Equal(t, 2, stats.TotalSource)

	require.Len(t, store.inserted, 2)
	first := store.inserted[0]
	require.Equal(t, models.RiskHigh, first.RiskLevel)
	require.Equal(t, "pl", first.Language)
	require.Equal(t, "imported", first.Source)
	require.True(t, first.IsActive)
	require.Contains(t, first.Tags, "branza:handel elektroniczny")
	require.Contains(t, first.Tags, "zagadnienie:odpowiedzialność")
	require.Contains(t, first.Notes, "Powód: Prezes UOKiK")
	require.Equal(t, strings.ToLower(first.ClauseText), first.NormalizedText)

	// First row carries a court signature, second does not.
	require.Len(t, store.refs, 1)
	ref := store.refs["XVII AmC 624/09"]
	require.Equal(t, "PL", ref.Jurisdiction)
	require.Len(t, store.links, 1)
	require.Equal(t, ref.ReferenceID, store.links[first.ClauseID])
}

func TestReconcilerSecondRunIsNoOp(t *testing.T) {
	store := newFakeStore()
	source := &fakeSource{clauses: registerRows()}
	r := NewReconciler(source, store, &fakeEmbedder{}, nil)

	_, err := r.Sync(context.Background())
	require.NoError(t, err)

	stats, err := r.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, stats.Added)
	require.Equal(t, 2, stats.Skipped)
	require.Len(t, store.inserted, 2)
}

func TestReconcilerCountsPerRowErrors(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(&fakeSource{clauses: registerRows()}, store, &fakeEmbedder{failOn: "zrzeka"}, nil)

	stats, err := r.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Added)
	require.Equal(t, 1, stats.Errors)
	require.Len(t, store.inserted, 1)
}

// Dedup compares exact stripped text. A row that differs from an existing
// record only by letter case is a distinct clause and gets imported.
func TestReconcilerImportsCaseVariantClause(t *testing.T) {
	store := newFakeStore()
	store.texts["sprzedawca nie ponosi odpowiedzialności za opóźnienia w dostawie towaru."] = struct{}{}
	r := NewReconciler(&fakeSource{clauses: registerRows()[:1]}, store, &fakeEmbedder{}, nil)

	stats, err := r.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Added)
	require.Equal(t, 0, stats.Skipped)
	require.Len(t, store.inserted, 1)
}

func TestReconcilerSkipsBlankRows(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(&fakeSource{clauses: []SourceClause{{Text: "   "}}}, store, &fakeEmbedder{}, nil)

	stats, err := r.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Skipped)
	require.Empty(t, store.inserted)
}

func TestReconcilerSourceFailure(t *testing.T) {
	r := NewReconciler(&fakeSource{err: errors.New("connection refused")}, newFakeStore(), &fakeEmbedder{}, nil)
	_, err := r.Sync(context.Background())
	require.Error(t, err)
}
