package internal

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const importDoc = `{
  "exportDate": "2026-03-15T04:00:00Z",
  "feedings": [
    {"id": "f1", "time": "2026-03-14T23:30:00Z", "type": "formula", "amount": 120, "createdAt": "2026-03-14T23:30:00Z"}
  ]
}`

func testOptions(t *testing.T) ([]Option, *Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(dir, "grape.db")
	cfg.Data.Path = filepath.Join(dir, "data")
	cfg.Tracking.BirthDate = "2026-01-06"
	return []Option{WithConfig(cfg), WithConsole(io.Discard)}, cfg
}

func TestRunImportThenBackup(t *testing.T) {
	opts, cfg := testOptions(t)
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "march.json")
	if err := os.WriteFile(src, []byte(importDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RunImport(ctx, []string{src}, opts...); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Data.Path, "inbox", "processed", "march.json")); err != nil {
		t.Fatalf("imported file should move to processed/: %v", err)
	}

	if err := RunBackup(ctx, opts...); err != nil {
		t.Fatalf("backup: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(cfg.Data.Path, "backups"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("backups = %d, want 1", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(cfg.Data.Path, "backups", entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"f1"`) {
		t.Errorf("backup should contain the imported feeding:\n%s", data)
	}
}

func TestRunImport_FailedFile(t *testing.T) {
	opts, cfg := testOptions(t)

	src := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(src, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RunImport(context.Background(), []string{src}, opts...); err == nil {
		t.Fatal("broken file should fail the import")
	}
	if _, err := os.Stat(filepath.Join(cfg.Data.Path, "inbox", "failed", "broken.json")); err != nil {
		t.Fatalf("broken file should move to failed/: %v", err)
	}
}

func TestRunImport_EmptyInbox(t *testing.T) {
	opts, _ := testOptions(t)
	if err := RunImport(context.Background(), nil, opts...); err != nil {
		t.Fatalf("empty inbox: %v", err)
	}
}

func TestStart_RequiresConfig(t *testing.T) {
	if err := RunBackup(context.Background(), WithConsole(io.Discard)); err == nil {
		t.Fatal("missing config should fail")
	}
}
