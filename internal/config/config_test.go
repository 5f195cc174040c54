package config

import (
	"os"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetenvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if got := getenvInt("TEST_INT", 7); got != 42 {
		t.Errorf("getenvInt() = %d, want 42", got)
	}
	if got := getenvInt("TEST_INT_MISSING", 7); got != 7 {
		t.Errorf("getenvInt() = %d, want default 7", got)
	}

	t.Setenv("TEST_INT_INVALID", "4x2")
	defer func() {
		if r := recover(); r == nil {
			t.Error("getenvInt() should panic on an invalid integer")
		}
	}()
	getenvInt("TEST_INT_INVALID", 7)
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{name: "empty", value: "", expected: nil},
		{name: "single", value: "*", expected: []string{"*"}},
		{name: "spaces and quotes", value: ` "a.example", 'b.example' ,, `, expected: []string{"a.example", "b.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.value)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitAndTrim() = %v, want %v", result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLoadMemoryStore(t *testing.T) {
	t.Setenv("VERSE_STORE", "Memory")
	t.Setenv("VERSE_CORPUS_FILE", "/tmp/corpus.yaml")
	t.Setenv("VERSE_NEAR_DISTANCE", "40")
	t.Setenv("VERSE_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("VERSE_LOOKUP_WORKERS", "0")

	cfg := Load()

	if cfg.Store != StoreMemory {
		t.Errorf("Store = %q, want %q", cfg.Store, StoreMemory)
	}
	if cfg.DBPath != "" {
		t.Errorf("DBPath = %q, want empty for memory store", cfg.DBPath)
	}
	if cfg.NearDistance != 40 {
		t.Errorf("NearDistance = %d, want 40", cfg.NearDistance)
	}
	if cfg.LookupWorkers != 1 {
		t.Errorf("LookupWorkers = %d, want 1", cfg.LookupWorkers)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want 2 entries", cfg.CORSOrigins)
	}
	if cfg.CacheEnabled() {
		t.Error("CacheEnabled() should be false without VERSE_REDIS_ADDR")
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v, want 10m", cfg.CacheTTL)
	}
}

func TestLoadSQLiteStore(t *testing.T) {
	t.Setenv("VERSE_STORE", "")
	t.Setenv("VERSE_DB_PATH", "/data/verses.db")
	t.Setenv("VERSE_REDIS_ADDR", "localhost:6379")

	cfg := Load()

	if cfg.Store != StoreSQLite {
		t.Errorf("Store = %q, want %q", cfg.Store, StoreSQLite)
	}
	if cfg.DBPath != "/data/verses.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if !cfg.CacheEnabled() {
		t.Error("CacheEnabled() should be true with VERSE_REDIS_ADDR set")
	}
}

func TestLoadPanics(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "sqlite without db path",
			env:  map[string]string{"VERSE_STORE": "sqlite", "VERSE_DB_PATH": ""},
		},
		{
			name: "memory without corpus",
			env:  map[string]string{"VERSE_STORE": "memory", "VERSE_CORPUS_FILE": ""},
		},
		{
			name: "unknown store",
			env:  map[string]string{"VERSE_STORE": "postgres"},
		},
		{
			name: "non positive reload interval",
			env: map[string]string{
				"VERSE_STORE":           "memory",
				"VERSE_CORPUS_FILE":     "/tmp/corpus.yaml",
				"VERSE_RELOAD_INTERVAL": "0s",
			},
		},
		{
			name: "negative reload interval",
			env: map[string]string{
				"VERSE_STORE":           "memory",
				"VERSE_CORPUS_FILE":     "/tmp/corpus.yaml",
				"VERSE_RELOAD_INTERVAL": "-1m",
			},
		},
		{
			name: "invalid integer",
			env: map[string]string{
				"VERSE_STORE":         "memory",
				"VERSE_CORPUS_FILE":   "/tmp/corpus.yaml",
				"VERSE_NEAR_DISTANCE": "ten",
			},
		},
		{
			name: "non positive near distance",
			env: map[string]string{
				"VERSE_STORE":         "memory",
				"VERSE_CORPUS_FILE":   "/tmp/corpus.yaml",
				"VERSE_NEAR_DISTANCE": "0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Load() should have panicked")
				}
			}()
			Load()
		})
	}
}
