package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_PATH", "MATCH_TIMEOUT", "RECONCILE_PARALLEL", "CUMULATIVE_ACTUALS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8765" {
		t.Errorf("Port = %q, want 8765", cfg.Port)
	}
	if cfg.MatchTimeout != 5*time.Second {
		t.Errorf("MatchTimeout = %v, want 5s", cfg.MatchTimeout)
	}
	if cfg.ReconcileParallel != 4 || !cfg.CumulativeActuals {
		t.Errorf("got parallel %d cumulative %v", cfg.ReconcileParallel, cfg.CumulativeActuals)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MATCH_TIMEOUT", "")
	os.Unsetenv("PORT")
	os.Unsetenv("MATCH_TIMEOUT")

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("PORT=9000\nMATCH_TIMEOUT=250ms\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.MatchTimeout != 250*time.Millisecond {
		t.Errorf("MatchTimeout = %v, want 250ms", cfg.MatchTimeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"MATCH_TIMEOUT":      "soon",
		"RECONCILE_PARALLEL": "0",
		"CUMULATIVE_ACTUALS": "maybe",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}
