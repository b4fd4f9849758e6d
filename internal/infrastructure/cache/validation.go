package cache

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/pkg/filesystem"
	"github.com/doeshing/infernav/internal/ports"
)

var validationHeader = []string{"address", "reachable", "checked_at"}

// ValidationCache keeps the latest reachability verdict per address in a CSV file.
// Every Put rewrites the whole file.
type ValidationCache struct {
	path    string
	mu      sync.Mutex
	records map[string]domain.ValidationRecord
	order   []string
	logger  ports.Logger
	// Warning is set when the backing file could not be read as a whole.
	warning string
	dropped int
}

// NewValidationCache loads the cache at path. A missing or malformed file yields an
// empty cache; rows with unparsable fields are dropped.
func NewValidationCache(path string, logger ports.Logger) *ValidationCache {
	c := &ValidationCache{
		path:    path,
		records: make(map[string]domain.ValidationRecord),
		logger:  logger,
	}
	c.load()
	return c
}

func (c *ValidationCache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.warn(fmt.Sprintf("validation cache unreadable, starting empty: %v", err))
		}
		return
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for line := 0; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.records = make(map[string]domain.ValidationRecord)
			c.order = nil
			c.warn(fmt.Sprintf("validation cache malformed, starting empty: %v", err))
			return
		}
		if line == 0 && isHeader(row) {
			continue
		}
		rec, ok := parseValidationRow(row)
		if !ok {
			c.dropped++
			continue
		}
		c.store(rec)
	}

	if c.dropped > 0 && c.logger != nil {
		c.logger.Warn("dropped unparsable validation rows", map[string]interface{}{
			"path":  c.path,
			"count": c.dropped,
		})
	}
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), validationHeader[0])
}

func parseValidationRow(row []string) (domain.ValidationRecord, bool) {
	if len(row) < 3 {
		return domain.ValidationRecord{}, false
	}
	address := strings.TrimSpace(row[0])
	if address == "" {
		return domain.ValidationRecord{}, false
	}
	reachable, err := strconv.ParseBool(strings.TrimSpace(row[1]))
	if err != nil {
		return domain.ValidationRecord{}, false
	}
	checkedAt, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(row[2]))
	if err != nil {
		return domain.ValidationRecord{}, false
	}
	return domain.ValidationRecord{Address: address, Reachable: reachable, CheckedAt: checkedAt}, true
}

func (c *ValidationCache) store(rec domain.ValidationRecord) {
	if _, exists := c.records[rec.Address]; !exists {
		c.order = append(c.order, rec.Address)
	}
	c.records[rec.Address] = rec
}

func (c *ValidationCache) warn(msg string) {
	c.warning = msg
	if c.logger != nil {
		c.logger.Warn(msg, map[string]interface{}{"path": c.path})
	}
}

// Get returns the record for address, if any.
func (c *ValidationCache) Get(address string) (domain.ValidationRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[address]
	return rec, ok
}

// Put overwrites the record for address and persists the whole cache before
// returning. If the save fails the previous record, or its absence, is restored.
func (c *ValidationCache) Put(address string, reachable bool, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, existed := c.records[address]
	c.store(domain.ValidationRecord{Address: address, Reachable: reachable, CheckedAt: now})
	if err := c.saveLocked(); err != nil {
		if existed {
			c.records[address] = prev
		} else {
			delete(c.records, address)
			c.order = c.order[:len(c.order)-1]
		}
		return err
	}
	return nil
}

// IsFresh reports whether rec is inside the freshness window at now.
func (c *ValidationCache) IsFresh(rec domain.ValidationRecord, now time.Time) bool {
	return rec.IsFresh(now)
}

// Records lists all records sorted by address.
func (c *ValidationCache) Records() []domain.ValidationRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ValidationRecord, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Clear drops every record and removes the backing file.
func (c *ValidationCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[string]domain.ValidationRecord)
	c.order = nil
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns the backing file path.
func (c *ValidationCache) Path() string {
	return c.path
}

// LoadWarning describes why the file was discarded at load, or "" if it was not.
func (c *ValidationCache) LoadWarning() string {
	return c.warning
}

// Dropped is the number of rows skipped at load because a field failed to parse.
func (c *ValidationCache) Dropped() int {
	return c.dropped
}

func (c *ValidationCache) saveLocked() error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(validationHeader); err != nil {
		return err
	}
	for _, addr := range c.order {
		rec := c.records[addr]
		row := []string{
			rec.Address,
			strconv.FormatBool(rec.Reachable),
			rec.CheckedAt.UTC().Format(domain.TimestampFormat),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := filesystem.WriteFileAtomic(c.path, buf.Bytes(), domain.FilePermissions); err != nil {
		return fmt.Errorf("save validation cache: %w", err)
	}
	return nil
}

var _ ports.ValidationStore = (*ValidationCache)(nil)
