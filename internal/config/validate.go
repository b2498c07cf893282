// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

package config

import (
	"fmt"
	"strings"
)

// Validate checks the full configuration, section by section.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogs(); err != nil {
		return err
	}
	if err := c.validateOWA(); err != nil {
		return err
	}
	if err := c.validateAnalytics(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	switch c.Server.Mode {
	case "serve":
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
		}
	case "export":
		if c.Server.OutputPath == "" {
			return fmt.Errorf("server.output_path is required in export mode")
		}
	default:
		return fmt.Errorf("server.mode must be serve or export, got %q", c.Server.Mode)
	}
	return nil
}

func (c *Config) validateLogs() error {
	if c.Logs.Path == "" {
		return fmt.Errorf("logs.path is required")
	}
	if c.Logs.StartDate == "" {
		return fmt.Errorf("logs.start_date is required")
	}
	if _, err := c.Logs.Start(); err != nil {
		return fmt.Errorf("logs.start_date must be YYYY-MM-DD: %w", err)
	}
	return nil
}

func (c *Config) validateOWA() error {
	if c.OWA.URL == "" {
		return fmt.Errorf("owa.url is required")
	}
	if !strings.HasPrefix(c.OWA.URL, "http://") && !strings.HasPrefix(c.OWA.URL, "https://") {
		return fmt.Errorf("owa.url must start with http:// or https://")
	}
	if c.OWA.APIKey == "" {
		return fmt.Errorf("owa.api_key is required")
	}
	if c.OWA.SiteID == "" {
		return fmt.Errorf("owa.site_id is required")
	}
	return nil
}

func (c *Config) validateAnalytics() error {
	if c.Analytics.TrailingDays < 1 {
		return fmt.Errorf("analytics.trailing_days must be positive, got %d", c.Analytics.TrailingDays)
	}
	if c.Analytics.EnoughThreshold < 1 {
		return fmt.Errorf("analytics.enough_threshold must be positive, got %d", c.Analytics.EnoughThreshold)
	}
	if c.Analytics.SecondDayHours < 1 {
		return fmt.Errorf("analytics.second_day_hours must be positive, got %d", c.Analytics.SecondDayHours)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
