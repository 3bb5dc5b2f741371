// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/olegiv/newsboard/internal/store"
	"github.com/olegiv/newsboard/internal/version"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	store     store.Store
	version   version.Info
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(s store.Store, info version.Info) *HealthHandler {
	return &HealthHandler{
		store:     s,
		version:   info,
		startTime: time.Now(),
	}
}

// HealthStatus is the JSON body of GET /health.
type HealthStatus struct {
	Status    string    `json:"status"`
	Backend   string    `json:"backend"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
	Version   string    `json:"version"`
	Check     Check     `json:"check"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health handles GET /health. It answers 503 when the store is unreachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	check := h.checkStore(r.Context())

	status := http.StatusOK
	if check.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthStatus{
		Status:    check.Status,
		Backend:   h.store.Backend(),
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.String(),
		Check:     check,
	})
}

// checkStore pings the database or stats the data directory.
func (h *HealthHandler) checkStore(ctx context.Context) Check {
	start := time.Now()

	var err error
	switch s := h.store.(type) {
	case interface{ DB() *sql.DB }:
		err = s.DB().PingContext(ctx)
	case interface{ Dir() string }:
		err = checkDir(s.Dir())
	}
	latency := time.Since(start)

	if err != nil {
		return Check{Status: "unhealthy", Message: err.Error(), Latency: latency.String()}
	}
	return Check{Status: "healthy", Message: "Connected", Latency: latency.String()}
}

func checkDir(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
