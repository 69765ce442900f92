// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/matchreporter/internal/logging"
)

// runSyncOnce runs one coordinator cycle and writes the report to w. The
// report is written even when the cycle fails.
func runSyncOnce(ctx context.Context, w io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.FOGIS.Enabled {
		return errFOGISDisabled
	}

	c, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	defer c.close()

	report, cycleErr := c.coordinator.RunCycle(ctx)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(out)); err != nil {
		return err
	}

	if cycleErr != nil {
		return fmt.Errorf("sync cycle failed: %w", cycleErr)
	}
	logging.Info().
		Int("events_synced", report.EventsSynced).
		Int("events_failed", report.EventsFailed).
		Bool("ok", report.OK()).
		Msg("Sync cycle completed")
	return nil
}
