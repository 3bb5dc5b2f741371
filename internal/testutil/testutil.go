// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the newsboard project.
package testutil

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/newsboard/internal/store"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary SQLite database with migrations applied.
// The database is closed when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "newsboard-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// TestSQLiteStore returns a migrated SQLite-backed store.
func TestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	return store.NewSQLiteStore(TestDB(t))
}

// TestJSONStore returns a JSON file store rooted in a fresh temp directory.
func TestJSONStore(t *testing.T) *store.JSONStore {
	t.Helper()

	s, err := store.NewJSONStore(t.TempDir(), TestLoggerSilent())
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	return s
}
