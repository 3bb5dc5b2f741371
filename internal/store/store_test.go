// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/olegiv/newsboard/internal/auth"
	"github.com/olegiv/newsboard/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	s, err := NewJSONStore(t.TempDir(), quietLogger())
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	return s
}

func testSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "newsboard-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}
	s := NewSQLiteStore(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// backends runs fn against every Store implementation.
func backends(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()
	t.Run(BackendJSON, func(t *testing.T) { fn(t, testJSONStore(t)) })
	t.Run(BackendSQLite, func(t *testing.T) { fn(t, testSQLiteStore(t)) })
}

func sampleUser(id, email string) model.User {
	return model.User{
		ID:           id,
		Name:         "Ada",
		Surname:      "Lovelace",
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
	}
}

func TestCreateAndGetUser(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		u := sampleUser("u1", "ada@example.com")

		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}

		got, err := s.GetUserByEmail(ctx, "ada@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail: %v", err)
		}
		if got != u {
			t.Errorf("GetUserByEmail = %+v, want %+v", got, u)
		}

		got, err = s.GetUserByID(ctx, "u1")
		if err != nil {
			t.Fatalf("GetUserByID: %v", err)
		}
		if got.Email != u.Email {
			t.Errorf("GetUserByID email = %q, want %q", got.Email, u.Email)
		}

		if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetUserByEmail(unknown) error = %v, want ErrNotFound", err)
		}
		if _, err := s.GetUserByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetUserByID(unknown) error = %v, want ErrNotFound", err)
		}
	})
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if err := s.CreateUser(ctx, sampleUser("u1", "ada@example.com")); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}

		err := s.CreateUser(ctx, sampleUser("u2", "ada@example.com"))
		if !errors.Is(err, ErrEmailTaken) {
			t.Fatalf("CreateUser(duplicate) error = %v, want ErrEmailTaken", err)
		}

		users, err := s.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers: %v", err)
		}
		if len(users) != 1 {
			t.Errorf("len(users) = %d, want 1", len(users))
		}
	})
}

func TestSetLoggedInAndRememberToken(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if err := s.CreateUser(ctx, sampleUser("u1", "ada@example.com")); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}

		if err := s.SetLoggedIn(ctx, "u1", true); err != nil {
			t.Fatalf("SetLoggedIn: %v", err)
		}
		if err := s.SetRememberToken(ctx, "u1", "tok"); err != nil {
			t.Fatalf("SetRememberToken: %v", err)
		}

		got, err := s.GetUserByRememberToken(ctx, "tok")
		if err != nil {
			t.Fatalf("GetUserByRememberToken: %v", err)
		}
		if got.ID != "u1" || !got.IsLoggedIn {
			t.Errorf("got %+v, want u1 logged in", got)
		}

		if err := s.SetRememberToken(ctx, "u1", ""); err != nil {
			t.Fatalf("SetRememberToken(clear): %v", err)
		}
		if _, err := s.GetUserByRememberToken(ctx, "tok"); !errors.Is(err, ErrNotFound) {
			t.Errorf("cleared token still resolves: %v", err)
		}
		if _, err := s.GetUserByRememberToken(ctx, ""); !errors.Is(err, ErrNotFound) {
			t.Errorf("empty token error = %v, want ErrNotFound", err)
		}

		if err := s.SetLoggedIn(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
			t.Errorf("SetLoggedIn(unknown) error = %v, want ErrNotFound", err)
		}
	})
}

func TestPersistUsers(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if err := s.CreateUser(ctx, sampleUser("u1", "a@example.com")); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}

		replacement := []model.User{sampleUser("u2", "b@example.com"), sampleUser("u3", "c@example.com")}
		replacement[1].RememberToken = "tok"
		if err := s.PersistUsers(ctx, replacement); err != nil {
			t.Fatalf("PersistUsers: %v", err)
		}

		users, err := s.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers: %v", err)
		}
		if len(users) != 2 || users[0] != replacement[0] || users[1] != replacement[1] {
			t.Errorf("ListUsers = %+v, want %+v", users, replacement)
		}
		if _, err := s.GetUserByID(ctx, "u1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("replaced user still present: %v", err)
		}

		if err := s.PersistUsers(ctx, nil); err != nil {
			t.Fatalf("PersistUsers(nil): %v", err)
		}
		users, err = s.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers: %v", err)
		}
		if len(users) != 0 {
			t.Errorf("len(users) = %d after clearing, want 0", len(users))
		}
	})
}

func TestNewsRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

		for i := 1; i <= 3; i++ {
			id, err := s.NextID(ctx)
			if err != nil {
				t.Fatalf("NextID: %v", err)
			}
			if id != int64(i) {
				t.Fatalf("NextID = %d, want %d", id, i)
			}
			item := model.NewsItem{
				NewsID:    id,
				Title:     "Title",
				Content:   "<b>kept verbatim</b>",
				URL:       "https://example.com",
				Author:    "u1",
				CreatedAt: created,
			}
			if err := s.AppendNews(ctx, item); err != nil {
				t.Fatalf("AppendNews: %v", err)
			}
		}

		got, err := s.GetNews(ctx, 2)
		if err != nil {
			t.Fatalf("GetNews: %v", err)
		}
		if got.NewsID != 2 || got.Content != "<b>kept verbatim</b>" || !got.CreatedAt.Equal(created) {
			t.Errorf("GetNews(2) = %+v", got)
		}

		if _, err := s.GetNews(ctx, 99); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetNews(99) error = %v, want ErrNotFound", err)
		}

		items, err := s.ListNews(ctx)
		if err != nil {
			t.Fatalf("ListNews: %v", err)
		}
		if len(items) != 3 || items[0].NewsID != 1 || items[2].NewsID != 3 {
			t.Errorf("ListNews order = %+v", items)
		}

		last, err := s.LastID(ctx)
		if err != nil {
			t.Fatalf("LastID: %v", err)
		}
		if last != 3 {
			t.Errorf("LastID = %d, want 3", last)
		}
	})
}

func TestSetLastID(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if err := s.SetLastID(ctx, 41); err != nil {
			t.Fatalf("SetLastID: %v", err)
		}
		id, err := s.NextID(ctx)
		if err != nil {
			t.Fatalf("NextID: %v", err)
		}
		if id != 42 {
			t.Errorf("NextID after SetLastID(41) = %d, want 42", id)
		}
	})
}

func TestRaiseLastID(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		raised, err := s.RaiseLastID(ctx, 5)
		if err != nil || !raised {
			t.Fatalf("RaiseLastID(5) = %v, %v; want true, nil", raised, err)
		}
		if last, _ := s.LastID(ctx); last != 5 {
			t.Errorf("LastID = %d, want 5", last)
		}

		raised, err = s.RaiseLastID(ctx, 3)
		if err != nil || raised {
			t.Fatalf("RaiseLastID(3) = %v, %v; want false, nil", raised, err)
		}
		raised, err = s.RaiseLastID(ctx, 5)
		if err != nil || raised {
			t.Fatalf("RaiseLastID(5) again = %v, %v; want false, nil", raised, err)
		}
		if last, _ := s.LastID(ctx); last != 5 {
			t.Errorf("counter lowered to %d", last)
		}
	})
}

func TestNextIDConcurrent(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		const n = 20

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			seen = make(map[int64]bool)
		)
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := s.NextID(ctx)
				if err != nil {
					t.Errorf("NextID: %v", err)
					return
				}
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}()
		}
		wg.Wait()

		if len(seen) != n {
			t.Errorf("got %d distinct ids, want %d", len(seen), n)
		}
		for i := int64(1); i <= n; i++ {
			if !seen[i] {
				t.Errorf("id %d was never issued", i)
			}
		}
	})
}

func TestSeed(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		hasher := auth.NewHasher(4)

		if err := Seed(ctx, s, hasher, quietLogger()); err != nil {
			t.Fatalf("Seed: %v", err)
		}

		u, err := s.GetUserByEmail(ctx, DemoEmail)
		if err != nil {
			t.Fatalf("GetUserByEmail: %v", err)
		}
		ok, err := hasher.Check(DemoPassword, u.PasswordHash)
		if err != nil || !ok {
			t.Errorf("demo password does not verify: ok=%v err=%v", ok, err)
		}

		items, err := s.ListNews(ctx)
		if err != nil {
			t.Fatalf("ListNews: %v", err)
		}
		if len(items) != 1 || items[0].NewsID != 1 || items[0].Author != u.ID {
			t.Errorf("seeded news = %+v", items)
		}

		// Second run is a no-op.
		if err := Seed(ctx, s, hasher, quietLogger()); err != nil {
			t.Fatalf("Seed (second): %v", err)
		}
		items, _ = s.ListNews(ctx)
		if len(items) != 1 {
			t.Errorf("second Seed added news: %d items", len(items))
		}
	})
}
