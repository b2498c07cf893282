// Ludostats - Game Activity Analytics and Retention Visualization
// Copyright 2026 The Ludostats Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludostats/ludostats

// Package source supplies the normalized event stream from the game server's
// request logs. It owns everything the analytics engines must never see:
// raw line parsing, legacy string-identifier resolution, and rotated log
// file ordering. Malformed lines are skipped here, so the engines can trust
// every event they receive.
package source

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/ludostats/ludostats/internal/logging"
	"github.com/ludostats/ludostats/internal/models"
)

// resourceQueryRe extracts the query string of a game resource request.
var resourceQueryRe = regexp.MustCompile(`/resource\?([^ ]*)`)

// timestampLayout is the log line timestamp prefix format.
const timestampLayout = "2006-01-02 15:04:05"

// identityIndex resolves legacy string player identifiers. Early deployments
// used the player's email or display name as the identifier; two JSON caches
// map those back to the integer ids the engines require.
type identityIndex struct {
	email2id map[string]int64
	name2id  map[string][]int64
}

// loadIdentityIndex reads the legacy id caches. A missing cache file is not
// fatal: resolution then fails for the ids it would have covered, and those
// lines are skipped.
func loadIdentityIndex(emailPath, namePath string) (*identityIndex, error) {
	index := &identityIndex{
		email2id: make(map[string]int64),
		name2id:  make(map[string][]int64),
	}

	if emailPath != "" {
		if err := loadJSONFile(emailPath, &index.email2id); err != nil {
			return nil, fmt.Errorf("load email index: %w", err)
		}
	}
	if namePath != "" {
		if err := loadJSONFile(namePath, &index.name2id); err != nil {
			return nil, fmt.Errorf("load name index: %w", err)
		}
	}

	return index, nil
}

func loadJSONFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warn().Str("path", path).Msg("legacy id cache missing, skipping")
			return nil
		}
		return err
	}
	return json.Unmarshal(data, out)
}

// resolve maps a raw identifier to an integer player id. Numeric ids pass
// through; legacy string ids are looked up by name first, then by email.
func (ix *identityIndex) resolve(raw string) (int64, bool) {
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, true
	}
	if ids, ok := ix.name2id[raw]; ok && len(ids) > 0 {
		return ids[0], true
	}
	if id, ok := ix.email2id[raw]; ok {
		return id, true
	}
	return 0, false
}

// parseLine turns one log line into a normalized event. The second return
// value is false for lines that carry no resource query, no recognizable
// role parameter, an unresolvable legacy id, or an unparseable timestamp;
// such lines never reach the engines.
func parseLine(line string, ix *identityIndex) (models.Event, bool) {
	m := resourceQueryRe.FindStringSubmatch(line)
	if m == nil {
		return models.Event{}, false
	}

	params, err := url.ParseQuery(m[1])
	if err != nil {
		return models.Event{}, false
	}

	role, rawID := roleAndID(params)
	if rawID == "" {
		return models.Event{}, false
	}

	playerID, ok := ix.resolve(rawID)
	if !ok {
		return models.Event{}, false
	}

	if len(line) < len(timestampLayout) {
		return models.Event{}, false
	}
	timestamp, err := time.Parse(timestampLayout, line[:len(timestampLayout)])
	if err != nil {
		return models.Event{}, false
	}

	return models.Event{
		Timestamp: timestamp,
		Role:      role,
		PlayerID:  playerID,
		Action:    params.Get("action"),
	}, true
}

// roleAndID finds the request side and its raw identifier, trying owner_id
// before player_id.
func roleAndID(params url.Values) (models.Role, string) {
	for _, role := range []models.Role{models.RoleOwner, models.RolePlayer} {
		if raw := params.Get(string(role) + "_id"); raw != "" {
			return role, raw
		}
	}
	return "", ""
}
