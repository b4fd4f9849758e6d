// Package domain defines core entities and value objects for infernav.
//
// This file holds the endpoint-facing types: addresses, validation records,
// per-server metadata and model descriptors. Nothing here performs I/O.
package domain

import (
	"strings"
	"time"
)

// FreshnessWindow is how long a validation verdict is trusted without re-probing.
const FreshnessWindow = 30 * time.Minute

// DefaultScheme is prepended to addresses that carry no scheme.
const DefaultScheme = "http://"

// NormalizeAddress turns a raw registry address into a base URL.
// It is idempotent and never mutates the stored address.
func NormalizeAddress(address string) string {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return ""
	}
	lower := strings.ToLower(addr)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		addr = DefaultScheme + addr
	}
	return strings.TrimRight(addr, "/")
}

// ValidationRecord is the last known reachability verdict for an address.
type ValidationRecord struct {
	Address   string
	Reachable bool
	CheckedAt time.Time
}

// IsFresh reports whether the record is younger than FreshnessWindow.
// A record exactly FreshnessWindow old is stale.
func (r ValidationRecord) IsFresh(now time.Time) bool {
	if r.CheckedAt.IsZero() {
		return false
	}
	return now.Sub(r.CheckedAt) < FreshnessWindow
}

// ModelDescriptor identifies a model in a server's catalog.
type ModelDescriptor struct {
	ID string `json:"id"`
}

// ModelIDs flattens descriptors into their identifiers, preserving order.
func ModelIDs(models []ModelDescriptor) []string {
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	return ids
}

// ServerMetadataRecord carries operator annotations and the cached catalog for a server.
//
// ModelsCachedAt is set only by a successful catalog fetch, so a non-nil value with an
// empty Models slice means the server reported no models.
type ServerMetadataRecord struct {
	Address        string            `json:"-"`
	Note           string            `json:"note,omitempty"`
	Models         []ModelDescriptor `json:"models,omitempty"`
	ModelsCachedAt *time.Time        `json:"models_cached_at,omitempty"`
}

// ValidationEntry is one line of a validation pass, reported in registry order.
type ValidationEntry struct {
	Address   string
	Reachable bool
	FromCache bool
}

// ValidationReport partitions a validation pass into valid and invalid addresses.
type ValidationReport struct {
	Entries []ValidationEntry
	Valid   []string
	Invalid []string
	Pruned  bool
}

// ServerView is what the operator sees when choosing a server.
type ServerView struct {
	Address string
	Note    string
}
