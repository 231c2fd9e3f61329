// Package testutil provides shared test helpers for setting up databases and data directories.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/models"
	"github.com/grapebaby/grape/internal/storage"
	"github.com/grapebaby/grape/internal/store"
)

// SubjectID is the subject every helper seeds.
const SubjectID = "default-baby"

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "grape-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeededDB is TestDB with the subject row already present.
func SeededDB(t *testing.T) *store.DB {
	t.Helper()
	db := TestDB(t)
	err := db.UpsertBaby(context.Background(), models.Baby{
		ID:        SubjectID,
		Name:      "小葡萄",
		BirthDate: civil.MustParseDate("2026-01-06"),
		Gender:    "女",
		CreatedAt: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	return db
}

// TestDataDir creates a temporary data directory with a storage.Provider.
func TestDataDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// Instant parses an RFC 3339 literal and returns it in UTC.
func Instant(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Fatal(err)
	}
	return ts.UTC()
}
