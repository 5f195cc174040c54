package redis

import (
	"strings"
	"testing"
)

func TestSearchKey(t *testing.T) {
	a := SearchKey([]string{"for", "god"})
	if !strings.HasPrefix(a, KeyPrefixSearch) {
		t.Fatalf("SearchKey() = %q, want prefix %q", a, KeyPrefixSearch)
	}

	tests := []struct {
		name  string
		other []string
		same  bool
	}{
		{name: "surrounding space ignored", other: []string{" for ", "god"}, same: true},
		{name: "joined keywords differ", other: []string{"for god"}},
		{name: "order matters", other: []string{"god", "for"}},
		{name: "case matters", other: []string{"For", "god"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchKey(tt.other) == a
			if got != tt.same {
				t.Errorf("SearchKey(%q) == SearchKey([for god]) is %v, want %v", tt.other, got, tt.same)
			}
		})
	}
}

func TestDisplayQuery(t *testing.T) {
	if got := displayQuery([]string{"for", "god", "so"}); got != "for god so" {
		t.Errorf("displayQuery() = %q", got)
	}
}
