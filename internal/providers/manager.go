package providers

import (
	"fmt"
	"strings"

	"github.com/uzzysan/Klauzule-zakazane/internal/config"
)

type NamedEmbedProvider struct {
	Ref      ProviderRef
	Provider EmbeddingProvider
}

// Manager owns the embedding providers for the process. It is constructed
// once at startup and injected wherever embeddings are needed; there is no
// lazily-initialized global.
type Manager struct {
	embedProviders []NamedEmbedProvider
	dim            int
}

func NewManager(cfg config.Config) (*Manager, error) {
	refs := ParseProviderList(cfg.EmbedProviders)
	m := &Manager{dim: cfg.EmbedDim}
	for _, ref := range refs {
		p, err := buildProvider(ref, cfg.EmbedDim)
		if err != nil {
			return nil, err
		}
		m.embedProviders = append(m.embedProviders, NamedEmbedProvider{Ref: ref, Provider: p})
	}
	if len(m.embedProviders) == 0 {
		m.embedProviders = []NamedEmbedProvider{{Ref: ProviderRef{Raw: "mock", Name: "mock"}, Provider: NewMockProvider(cfg.EmbedDim)}}
	}
	return m, nil
}

func (m *Manager) First() EmbeddingProvider {
	return m.embedProviders[0].Provider
}

func (m *Manager) Dimension() int {
	return m.dim
}

func (m *Manager) Count() int {
	return len(m.embedProviders)
}

func (m *Manager) ByIndex(i int) (EmbeddingProvider, ProviderRef) {
	if i < 0 || i >= len(m.embedProviders) {
		i = 0
	}
	return m.embedProviders[i].Provider, m.embedProviders[i].Ref
}

func buildProvider(ref ProviderRef, dim int) (EmbeddingProvider, error) {
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(dim), nil
	case "ollama":
		return NewOllamaEmbeddingProvider(ref.KeyAlias), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", ref.Name)
	}
}
