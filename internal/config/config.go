// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package config provides layered configuration for the Ludostats
// application: built-in defaults, then a YAML config file, then environment
// variables, highest priority last. Loading is built on Koanf v2.
package config

import (
	"fmt"
	"time"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logs      LogsConfig      `koanf:"logs"`
	OWA       OWAConfig       `koanf:"owa"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the process mode and the HTTP surface.
type ServerConfig struct {
	// Mode is "serve" (compute once, then serve the report over HTTP) or
	// "export" (compute once, write the report JSON, exit).
	Mode string `koanf:"mode"`

	// Host and Port bind the HTTP server in serve mode.
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// OutputPath is where the report JSON is written in export mode.
	OutputPath string `koanf:"output_path"`

	// ShutdownTimeout bounds the graceful shutdown in serve mode.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogsConfig locates the game server request logs.
type LogsConfig struct {
	// Path is the active log file; rotated siblings are found next to it.
	Path string `koanf:"path"`

	// StartDate is the first day of the analytics window, YYYY-MM-DD.
	StartDate string `koanf:"start_date"`

	// EmailIndexPath and NameIndexPath locate the legacy id caches.
	EmailIndexPath string `koanf:"email_index_path"`
	NameIndexPath  string `koanf:"name_index_path"`
}

// startDateLayout is the config file date format.
const startDateLayout = "2006-01-02"

// Start parses the configured window start date.
func (c LogsConfig) Start() (time.Time, error) {
	t, err := time.Parse(startDateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse logs.start_date: %w", err)
	}
	return t, nil
}

// OWAConfig configures the external visitor-analytics service.
type OWAConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	SiteID  string        `koanf:"site_id"`
	Timeout time.Duration `koanf:"timeout"`
}

// AnalyticsConfig holds the engine thresholds.
type AnalyticsConfig struct {
	// TrailingDays is the concurrency window length in days.
	TrailingDays int `koanf:"trailing_days"`

	// EnoughThreshold is the concurrent-player count a minute needs to
	// count as "enough" in the time-share metric.
	EnoughThreshold int `koanf:"enough_threshold"`

	// SecondDayHours is the funnel's second-day promotion delay.
	SecondDayHours int `koanf:"second_day_hours"`
}

// LoggingConfig configures the zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all sensible default values. Defaults
// are applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Mode:            "serve",
			Host:            "0.0.0.0",
			Port:            8467,
			OutputPath:      "stats.json",
			ShutdownTimeout: 10 * time.Second,
		},
		Logs: LogsConfig{
			Path:           "",
			StartDate:      "",
			EmailIndexPath: "",
			NameIndexPath:  "",
		},
		OWA: OWAConfig{
			URL:     "",
			APIKey:  "",
			SiteID:  "",
			Timeout: 30 * time.Second,
		},
		Analytics: AnalyticsConfig{
			TrailingDays:    30,
			EnoughThreshold: 3,
			SecondDayHours:  15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
