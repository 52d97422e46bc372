package providers

import "strings"

type ProviderRef struct {
	Raw      string
	Name     string
	KeyAlias string
}

// ParseProviderList parses a provider spec like "ollama:nomic|mock" into refs.
func ParseProviderList(spec string) []ProviderRef {
	out := make([]ProviderRef, 0)
	for _, part := range strings.Split(spec, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ref := ProviderRef{Raw: part, Name: part}
		if idx := strings.Index(part, ":"); idx > 0 {
			ref.Name = part[:idx]
			ref.KeyAlias = part[idx+1:]
		}
		out = append(out, ref)
	}
	return out
}
