// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

package visitors

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ludostats/ludostats/internal/models"
)

var (
	testStart = time.Date(2011, 10, 10, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2011, 10, 16, 0, 0, 0, 0, time.UTC)
)

func TestClientDaily(t *testing.T) {

	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rows": [
			{"date": "20111010", "newVisitors": "120", "bounces": "45"},
			{"date": "20111011", "newVisitors": "80", "bounces": "20"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, APIKey: "secret", SiteID: "site1"})
	days, err := client.Daily(context.Background(), testStart, testEnd)
	if err != nil {
		t.Fatalf("Daily() error = %v", err)
	}

	t.Run("rows converted to typed days", func(t *testing.T) {
		want := []models.DailyVisitors{
			{Date: time.Date(2011, 10, 10, 0, 0, 0, 0, time.UTC), NewVisitors: 120, Bounces: 45},
			{Date: time.Date(2011, 10, 11, 0, 0, 0, 0, time.UTC), NewVisitors: 80, Bounces: 20},
		}
		if len(days) != len(want) {
			t.Fatalf("got %d days, want %d", len(days), len(want))
		}
		for i, day := range days {
			if !day.Date.Equal(want[i].Date) || day.NewVisitors != want[i].NewVisitors || day.Bounces != want[i].Bounces {
				t.Errorf("day %d = %+v, want %+v", i, day, want[i])
			}
		}
	})

	t.Run("request carries the api parameters", func(t *testing.T) {
		wantParams := map[string]string{
			"owa_apiKey":    "secret",
			"owa_do":        "getResultSet",
			"owa_siteId":    "site1",
			"owa_startDate": "20111010",
			"owa_endDate":   "20111016",
			"owa_format":    "json",
		}
		for key, want := range wantParams {
			if gotQuery[key] != want {
				t.Errorf("query %s = %q, want %q", key, gotQuery[key], want)
			}
		}
	})
}

func TestClientEmptyResultSet(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rows": []}`))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	days, err := client.Daily(context.Background(), testStart, testEnd)
	if err != nil {
		t.Fatalf("Daily() error = %v", err)
	}
	if len(days) != 0 {
		t.Errorf("got %d days, want 0", len(days))
	}
}

func TestClientClientErrorIsNotRetried(t *testing.T) {

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, MaxRetries: 3})
	if _, err := client.Daily(context.Background(), testStart, testEnd); err == nil {
		t.Fatal("expected error for 403 response")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1 (4xx is permanent)", got)
	}
}

func TestClientServerErrorIsRetried(t *testing.T) {

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"rows": [{"date": "20111010", "newVisitors": "1", "bounces": "0"}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, MaxRetries: 5})
	days, err := client.Daily(context.Background(), testStart, testEnd)
	if err != nil {
		t.Fatalf("Daily() error = %v after retryable failures", err)
	}
	if len(days) != 1 {
		t.Errorf("got %d days, want 1", len(days))
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestClientInvalidRows(t *testing.T) {

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"rows": [`},
		{name: "non numeric count", body: `{"rows": [{"date": "20111010", "newVisitors": "many", "bounces": "0"}]}`},
		{name: "bad date length", body: `{"rows": [{"date": "2011-10-10", "newVisitors": "1", "bounces": "0"}]}`},
		{name: "missing field", body: `{"rows": [{"date": "20111010", "newVisitors": "1"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(Config{URL: server.URL, MaxRetries: 3})
			if _, err := client.Daily(context.Background(), testStart, testEnd); err == nil {
				t.Fatal("expected error for invalid payload")
			}
			if got := calls.Load(); got != 1 {
				t.Errorf("server called %d times, want 1 (bad payloads are permanent)", got)
			}
		})
	}
}

func TestClientCircuitBreakerOpens(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, FailureThreshold: 1})

	if _, err := client.Daily(context.Background(), testStart, testEnd); err == nil {
		t.Fatal("expected error for first failing call")
	}
	_, err := client.Daily(context.Background(), testStart, testEnd)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("second call error = %v, want circuit breaker open", err)
	}
}
