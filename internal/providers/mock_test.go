package providers

import (
	"context"
	"testing"
)

func TestMockProviderDeterministic(t *testing.T) {
	p := NewMockProvider(384)
	req := EmbedRequest{Operation: "embed_text", Inputs: []string{"klauzula niedozwolona"}, Dimension: 384}

	first, _, err := p.Embed(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := p.Embed(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 || len(first[0]) != 384 {
		t.Fatalf("unexpected shape: %d vectors, dim %d", len(first), len(first[0]))
	}
	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}
}

func TestMockProviderDistinctInputs(t *testing.T) {
	p := NewMockProvider(64)
	vecs, _, err := p.Embed(context.Background(), EmbedRequest{Inputs: []string{"umowa", "regulamin"}, Dimension: 64})
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range vecs[0] {
		if vecs[0][i] != vecs[1][i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different inputs produced identical vectors")
	}
}

func TestTextEmbedderSingleVector(t *testing.T) {
	m := &Manager{dim: 32, embedProviders: []NamedEmbedProvider{{Ref: ProviderRef{Name: "mock"}, Provider: NewMockProvider(32)}}}
	e := NewTextEmbedder(m)
	vec, err := e.EmbedText(context.Background(), "postanowienie umowne")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 32 {
		t.Fatalf("dim = %d, want 32", len(vec))
	}
}
