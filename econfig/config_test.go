package econfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFallsBackToDefaultsWhenConfigAbsent(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogTheme != "default" {
		t.Fatalf("expected default log theme, got %q", cfg.LogTheme)
	}
	if _, ok := cfg.ServerFor("go"); !ok {
		t.Fatalf("expected a built-in gopls default for go")
	}
}

func TestLoadReadsProjectOverrides(t *testing.T) {
	dir := t.TempDir()
	toml := `
log_theme = "solarized"
json_logs = true

[[servers]]
language = "rust"
command = "rust-analyzer"
`
	if err := os.WriteFile(filepath.Join(dir, ".eddy.toml"), []byte(toml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogTheme != "solarized" || !cfg.JSONLogs {
		t.Fatalf("expected overrides applied, got theme=%q json=%v", cfg.LogTheme, cfg.JSONLogs)
	}
	srv, ok := cfg.ServerFor("rust")
	if !ok || srv.Command != "rust-analyzer" {
		t.Fatalf("expected rust-analyzer configured for rust, got %+v ok=%v", srv, ok)
	}
}

func TestLoadParsesShellQuotedCommandLine(t *testing.T) {
	dir := t.TempDir()
	toml := `
[[servers]]
language = "c"
commandline = "clangd --log=verbose --pch-storage=memory"
`
	if err := os.WriteFile(filepath.Join(dir, ".eddy.toml"), []byte(toml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	srv, ok := cfg.ServerFor("c")
	if !ok {
		t.Fatalf("expected a server configured for c")
	}
	if srv.Command != "clangd" {
		t.Fatalf("expected command %q, got %q", "clangd", srv.Command)
	}
	want := []string{"--log=verbose", "--pch-storage=memory"}
	if len(srv.Args) != len(want) {
		t.Fatalf("expected args %v, got %v", want, srv.Args)
	}
	for i := range want {
		if srv.Args[i] != want[i] {
			t.Fatalf("expected args %v, got %v", want, srv.Args)
		}
	}
}

func TestServerForUnknownLanguage(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := cfg.ServerFor("cobol"); ok {
		t.Fatalf("expected no server configured for cobol")
	}
}
