package providers

import (
	"context"
	"fmt"
)

// TextEmbedder adapts the first configured provider to the single-text
// embedding interface the analysis pipeline consumes.
type TextEmbedder struct {
	m *Manager
}

func NewTextEmbedder(m *Manager) *TextEmbedder {
	return &TextEmbedder{m: m}
}

func (e *TextEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, info, err := e.m.First().Embed(ctx, EmbedRequest{
		Operation: "embed_text",
		Inputs:    []string{text},
		Dimension: e.m.Dimension(),
	})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("provider %s returned %d vectors for one input", info.Name, len(vecs))
	}
	return vecs[0], nil
}
