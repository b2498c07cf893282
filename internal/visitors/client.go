// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package visitors is the client for the external visitor-analytics service
// (an OWA-compatible HTTP API). It supplies the per-day new-visitor and
// bounce counts that seed the first two funnel steps.
//
// The analytics core carries no retry policy; resilience lives here at the
// collaborator boundary. Requests are retried with bounded exponential
// backoff behind a circuit breaker. A failure that survives the retries is
// fatal to the run: funnel percentages are meaningless without the visitor
// baseline.
package visitors

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ludostats/ludostats/internal/logging"
	"github.com/ludostats/ludostats/internal/models"
)

// dateLayout is the compact date format the OWA API speaks.
const dateLayout = "20060102"

// Config configures the visitor-analytics client.
type Config struct {
	// URL is the base URL of the OWA instance, without /api.php.
	URL string

	// APIKey authenticates against the OWA API.
	APIKey string

	// SiteID selects the tracked site.
	SiteID string

	// Timeout bounds a single HTTP request (default: 30s).
	Timeout time.Duration

	// MaxRetries bounds the exponential-backoff retry attempts after the
	// initial request (default: 3).
	MaxRetries uint64

	// FailureThreshold is the consecutive-failure count that trips the
	// circuit breaker (default: 5).
	FailureThreshold uint32
}

// Client fetches per-day visitor counts from the OWA API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]models.DailyVisitors]
	validate   *validator.Validate
}

// NewClient creates a visitor-analytics client. Zero config values get
// defaults.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker[[]models.DailyVisitors](gobreaker.Settings{
		Name:    "visitor-analytics",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		validate:   validator.New(),
	}
}

// Daily returns the per-day visitor counts for [start, end], both inclusive
// calendar days. Days the service reports nothing for are simply absent;
// the funnel treats them as zero-valued.
func (c *Client) Daily(ctx context.Context, start, end time.Time) ([]models.DailyVisitors, error) {
	return c.breaker.Execute(func() ([]models.DailyVisitors, error) {
		return c.fetchWithRetry(ctx, start, end)
	})
}

func (c *Client) fetchWithRetry(ctx context.Context, start, end time.Time) ([]models.DailyVisitors, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxRetries), ctx)

	return backoff.RetryWithData(func() ([]models.DailyVisitors, error) {
		days, err := c.fetch(ctx, start, end)
		if err != nil {
			logging.Warn().Err(err).Msg("visitor analytics fetch failed")
		}
		return days, err
	}, policy)
}

// owaRow is one row of the OWA result set. The API returns all values as
// strings.
type owaRow struct {
	Date        string `json:"date" validate:"required,len=8,numeric"`
	NewVisitors string `json:"newVisitors" validate:"required,numeric"`
	Bounces     string `json:"bounces" validate:"required,numeric"`
}

type owaResultSet struct {
	Rows []owaRow `json:"rows"`
}

func (c *Client) fetch(ctx context.Context, start, end time.Time) ([]models.DailyVisitors, error) {
	query := url.Values{}
	query.Set("owa_apiKey", c.cfg.APIKey)
	query.Set("owa_do", "getResultSet")
	query.Set("owa_metrics", "bounces,repeatVisitors,newVisitors,visits")
	query.Set("owa_dimensions", "date")
	query.Set("owa_startDate", start.Format(dateLayout))
	query.Set("owa_endDate", end.Format(dateLayout))
	query.Set("owa_siteId", c.cfg.SiteID)
	query.Set("owa_format", "json")

	endpoint := c.cfg.URL + "/api.php?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build visitor analytics request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("visitor analytics request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("visitor analytics returned status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read visitor analytics response: %w", err)
	}

	var result owaResultSet
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode visitor analytics response: %w", err))
	}

	return c.convertRows(result.Rows)
}

// convertRows validates and converts the string-typed API rows. A row that
// fails validation aborts the run rather than silently skewing the funnel
// baseline.
func (c *Client) convertRows(rows []owaRow) ([]models.DailyVisitors, error) {
	days := make([]models.DailyVisitors, 0, len(rows))
	for i, row := range rows {
		if err := c.validate.Struct(row); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("visitor analytics row %d invalid: %w", i, err))
		}

		date, err := time.Parse(dateLayout, row.Date)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("visitor analytics row %d date: %w", i, err))
		}
		newVisitors, err := strconv.Atoi(row.NewVisitors)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("visitor analytics row %d newVisitors: %w", i, err))
		}
		bounces, err := strconv.Atoi(row.Bounces)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("visitor analytics row %d bounces: %w", i, err))
		}

		days = append(days, models.DailyVisitors{
			Date:        date,
			NewVisitors: newVisitors,
			Bounces:     bounces,
		})
	}
	return days, nil
}
