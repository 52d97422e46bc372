package providers

import "testing"

func TestParseProviderList(t *testing.T) {
	refs := ParseProviderList("ollama:nomic|mock")
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0].Name != "ollama" || refs[0].KeyAlias != "nomic" {
		t.Errorf("first ref parsed wrong: %+v", refs[0])
	}
	if refs[1].Name != "mock" || refs[1].KeyAlias != "" {
		t.Errorf("second ref parsed wrong: %+v", refs[1])
	}
}

func TestParseProviderListEmptyParts(t *testing.T) {
	refs := ParseProviderList(" | mock | ")
	if len(refs) != 1 {
		t.Fatalf("expected 1 ref, got %d", len(refs))
	}
	if refs[0].Name != "mock" {
		t.Errorf("ref = %+v", refs[0])
	}
}

func TestParseProviderListEmptySpec(t *testing.T) {
	if refs := ParseProviderList(""); len(refs) != 0 {
		t.Fatalf("expected no refs, got %d", len(refs))
	}
}
