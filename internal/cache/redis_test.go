package cache

import "testing"

func TestEnrichmentKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Virgil van Dijk", "scout:enrich:virgil van dijk"},
		{"  Rodri ", "scout:enrich:rodri"},
		{"Martin Ødegaard", "scout:enrich:martin ødegaard"},
	}
	for _, tt := range tests {
		if got := EnrichmentKey(tt.name); got != tt.want {
			t.Errorf("EnrichmentKey(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	if _, err := NewRedisCache("not a url"); err == nil {
		t.Error("expected error for invalid redis URL")
	}
}
