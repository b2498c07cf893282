// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/ludostats/ludostats/internal/analytics"
	"github.com/ludostats/ludostats/internal/logging"
	"github.com/ludostats/ludostats/internal/models"
)

// ErrNoEvents is returned by Open when the logs contain no parseable event
// at or after the configured start date.
var ErrNoEvents = errors.New("source: no events found in log files")

// Config configures the log-file event source.
type Config struct {
	// Path is the active log file. Rotated siblings are discovered next
	// to it as Path.1, Path.2, and so on, higher numbers being older.
	Path string

	// Start is the first date of interest; earlier lines are ignored.
	Start time.Time

	// EmailIndexPath and NameIndexPath locate the legacy id caches.
	EmailIndexPath string
	NameIndexPath  string
}

// LogSource replays the game server's rotated request logs as a normalized
// event stream. Rotated files are replayed oldest-first, so the merged
// stream preserves the log's chronological non-decreasing order, the one
// guarantee every analytics engine depends on. Each Scan re-reads the files,
// making the sequence restartable.
type LogSource struct {
	path  string
	start time.Time
	end   time.Time
	index *identityIndex
}

var _ analytics.EventSource = (*LogSource)(nil)

// Open builds a source over the configured logs. It loads the legacy id
// caches and makes one full pass to find the end of the log data; the
// resulting bounds define the overall analytics window.
func Open(cfg Config) (*LogSource, error) {
	index, err := loadIdentityIndex(cfg.EmailIndexPath, cfg.NameIndexPath)
	if err != nil {
		return nil, err
	}

	s := &LogSource{
		path:  cfg.Path,
		start: cfg.Start,
		index: index,
	}

	end, err := s.findEndDate()
	if err != nil {
		return nil, err
	}
	s.end = end

	logging.Info().
		Str("path", cfg.Path).
		Time("start", s.start).
		Time("end", s.end).
		Msg("event source opened")
	return s, nil
}

// Bounds returns the source's overall date range: the configured start and
// the last event timestamp found in the logs.
func (s *LogSource) Bounds() (time.Time, time.Time) {
	return s.start, s.end
}

// Scan replays events with timestamps in [start, end) in non-decreasing
// timestamp order. Zero bounds fall back to the source's own range; the
// source range is always enforced in addition to the caller's.
func (s *LogSource) Scan(ctx context.Context, start, end time.Time, fn func(models.Event) error) error {
	paths, err := s.logFiles()
	if err != nil {
		return err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.scanFile(ctx, path, start, end, fn); err != nil {
			return err
		}
	}
	return nil
}

func (s *LogSource) scanFile(ctx context.Context, path string, start, end time.Time, fn func(models.Event) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNb := 0
	for scanner.Scan() {
		lineNb++
		if lineNb%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		ev, ok := parseLine(scanner.Text(), s.index)
		if !ok {
			continue
		}
		if ev.Timestamp.Before(s.start) {
			continue
		}
		if !start.IsZero() && ev.Timestamp.Before(start) {
			continue
		}
		if !s.end.IsZero() && ev.Timestamp.After(s.end) {
			continue
		}
		if !end.IsZero() && !ev.Timestamp.Before(end) {
			continue
		}

		if err := fn(ev); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read log file %s: %w", path, err)
	}
	return nil
}

// logFiles lists the log files oldest-first: the highest rotation number is
// the oldest file, the unnumbered active file is the newest.
func (s *LogSource) logFiles() ([]string, error) {
	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list log directory: %w", err)
	}

	rotatedRe := regexp.MustCompile("^" + regexp.QuoteMeta(base) + `\.(\d+)$`)

	type logFile struct {
		num  int
		name string
	}
	var files []logFile
	for _, entry := range entries {
		name := entry.Name()
		if m := rotatedRe.FindStringSubmatch(name); m != nil {
			num, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			files = append(files, logFile{num: num, name: name})
		} else if name == base {
			files = append(files, logFile{num: -1, name: name})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].num > files[j].num })

	paths := make([]string, 0, len(files))
	for _, file := range files {
		paths = append(paths, filepath.Join(dir, file.name))
	}
	return paths, nil
}

// findEndDate scans the full logs for the latest event timestamp.
func (s *LogSource) findEndDate() (time.Time, error) {
	var end time.Time
	err := s.Scan(context.Background(), time.Time{}, time.Time{}, func(ev models.Event) error {
		if ev.Timestamp.After(end) {
			end = ev.Timestamp
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	if end.IsZero() {
		return time.Time{}, ErrNoEvents
	}
	return end, nil
}
