package logger

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		wantNil bool
		want    string
	}{
		{in: "debug", want: "debug"},
		{in: " WARN ", want: "warn"},
		{in: "error", want: "error"},
		{in: "verbose", wantNil: true},
		{in: "", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseLevel(tt.in)
			if tt.wantNil {
				if got != nil {
					t.Errorf("parseLevel(%q) = %v, want nil", tt.in, got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("discarded", String("k", "v"), Int64("n", 1), Bool("b", true), Strings("s", []string{"a"}))
	if err := l.Sync(); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
}
