// Package archive reads the "following" list out of a Twitter data export.
//
// The export ships the list as a JavaScript assignment
// (`window.YTD.following.part0 = [ ... ]`) in following.js; a pre-stripped
// following.json with the bare array is accepted too.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

const (
	// DefaultPath is where the export conventionally lands relative to the
	// working directory.
	DefaultPath = "data/following.js"
)

var (
	ErrArchiveNotFound = errors.New("archive: file not found")
	ErrArchiveFormat   = errors.New("archive: unrecognized following export")

	// first JSON array literal in the file, assignment prefix and all
	reFirstArray = regexp.MustCompile(`(?s)\[.*\]`)
)

// FollowRecord is one followed account from the export. Immutable once
// parsed.
type FollowRecord struct {
	AccountID string
	UserLink  string
}

type followingEntry struct {
	Following struct {
		AccountID string `json:"accountId"`
		UserLink  string `json:"userLink"`
	} `json:"following"`
}

// Read parses the export at path into follow records, deduplicated by
// account ID in first-seen order.
func Read(path string) ([]FollowRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, path)
		}
		return nil, fmt.Errorf("archive: reading %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse extracts follow records from the raw contents of following.js or
// following.json.
func Parse(raw []byte) ([]FollowRecord, error) {
	arr := reFirstArray.Find(raw)
	if arr == nil {
		return nil, fmt.Errorf("%w: no list literal found", ErrArchiveFormat)
	}

	var entries []followingEntry
	if err := json.Unmarshal(arr, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveFormat, err)
	}

	records := make([]FollowRecord, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		id := strings.TrimSpace(entry.Following.AccountID)
		if id == "" {
			return nil, fmt.Errorf("%w: entry missing accountId", ErrArchiveFormat)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		records = append(records, FollowRecord{
			AccountID: id,
			UserLink:  entry.Following.UserLink,
		})
	}
	return records, nil
}
