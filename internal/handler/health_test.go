// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/olegiv/newsboard/internal/store"
	"github.com/olegiv/newsboard/internal/testutil"
	"github.com/olegiv/newsboard/internal/version"
)

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) HealthStatus {
	t.Helper()
	var got HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	return got
}

func TestHealthJSONStore(t *testing.T) {
	h := NewHealthHandler(testutil.TestJSONStore(t), version.Info{Version: "v1.2.3"})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, RouteHealth, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get(HeaderContentType); ct != contentTypeJSON {
		t.Errorf("Content-Type = %q", ct)
	}
	got := decodeHealth(t, w)
	if got.Status != "healthy" || got.Backend != store.BackendJSON || got.Version != "v1.2.3" {
		t.Errorf("health = %+v", got)
	}
}

func TestHealthSQLiteStore(t *testing.T) {
	h := NewHealthHandler(testutil.TestSQLiteStore(t), version.Info{})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, RouteHealth, nil))

	got := decodeHealth(t, w)
	if w.Code != http.StatusOK || got.Backend != store.BackendSQLite || got.Version != "dev" {
		t.Errorf("status %d, health = %+v", w.Code, got)
	}
}

func TestHealthMissingDataDir(t *testing.T) {
	st := testutil.TestJSONStore(t)
	if err := os.RemoveAll(st.Dir()); err != nil {
		t.Fatal(err)
	}
	h := NewHealthHandler(st, version.Info{})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, RouteHealth, nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if got := decodeHealth(t, w); got.Status != "unhealthy" {
		t.Errorf("status field = %q", got.Status)
	}
}
