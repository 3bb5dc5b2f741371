// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// ValidateSchedule checks that spec is a standard five-field cron expression.
func ValidateSchedule(spec string) error {
	if spec == "" {
		return fmt.Errorf("cron schedule is required")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return nil
}
