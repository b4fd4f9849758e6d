package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/pkg/filesystem"
	"github.com/doeshing/infernav/internal/ports"
)

// MetadataStore persists operator notes and model catalogs as a JSON document keyed
// by server address. Every mutation rewrites the whole document.
//
// Catalogs have no TTL: they are served until overwritten or cleared.
type MetadataStore struct {
	path    string
	mu      sync.Mutex
	records map[string]domain.ServerMetadataRecord
	logger  ports.Logger
	now     func() time.Time
	warning string
}

// NewMetadataStore loads the document at path. A missing or malformed file yields an
// empty store.
func NewMetadataStore(path string, logger ports.Logger) *MetadataStore {
	s := &MetadataStore{
		path:    path,
		records: make(map[string]domain.ServerMetadataRecord),
		logger:  logger,
		now:     time.Now,
	}
	s.load()
	return s
}

func (s *MetadataStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.warn(fmt.Sprintf("metadata unreadable, starting empty: %v", err))
		}
		return
	}
	if len(data) == 0 {
		return
	}
	var decoded map[string]domain.ServerMetadataRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		s.warn(fmt.Sprintf("metadata malformed, starting empty: %v", err))
		return
	}
	for addr, rec := range decoded {
		rec.Address = addr
		s.records[addr] = rec
	}
}

func (s *MetadataStore) warn(msg string) {
	s.warning = msg
	if s.logger != nil {
		s.logger.Warn(msg, map[string]interface{}{"path": s.path})
	}
}

// GetNote returns the operator note for address, or "".
func (s *MetadataStore) GetNote(address string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[address].Note
}

// SetNote upserts the note for address and persists. An empty note clears it.
func (s *MetadataStore) SetNote(address, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[address]
	rec.Address = address
	rec.Note = note
	return s.commitLocked(address, rec)
}

// CacheModels replaces the catalog for address, stamps it with the current time and
// persists.
func (s *MetadataStore) CacheModels(address string, models []domain.ModelDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[address]
	rec.Address = address
	rec.Models = append([]domain.ModelDescriptor{}, models...)
	cachedAt := s.now().UTC()
	rec.ModelsCachedAt = &cachedAt
	return s.commitLocked(address, rec)
}

// GetCachedModels returns a copy of the cached catalog for address, empty when absent.
func (s *MetadataStore) GetCachedModels(address string) []domain.ModelDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ModelDescriptor{}, s.records[address].Models...)
}

// ClearModels forgets the cached catalog for address so the next lookup fetches live.
func (s *MetadataStore) ClearModels(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[address]
	if !ok {
		return nil
	}
	rec.Models = nil
	rec.ModelsCachedAt = nil
	return s.commitLocked(address, rec)
}

// Record returns the full record for address.
func (s *MetadataStore) Record(address string) (domain.ServerMetadataRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[address]
	if ok {
		rec.Models = append([]domain.ModelDescriptor{}, rec.Models...)
	}
	return rec, ok
}

// Records lists all records sorted by address.
func (s *MetadataStore) Records() []domain.ServerMetadataRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ServerMetadataRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Clear drops all metadata and removes the backing file.
func (s *MetadataStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]domain.ServerMetadataRecord)
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns the backing file path.
func (s *MetadataStore) Path() string {
	return s.path
}

// LoadWarning describes why the file was discarded at load, or "" if it was not.
func (s *MetadataStore) LoadWarning() string {
	return s.warning
}

// commitLocked stores rec and persists. On a failed save the previous record is
// restored so memory keeps matching the file.
func (s *MetadataStore) commitLocked(address string, rec domain.ServerMetadataRecord) error {
	prev, existed := s.records[address]
	s.records[address] = rec
	if err := s.saveLocked(); err != nil {
		if existed {
			s.records[address] = prev
		} else {
			delete(s.records, address)
		}
		return err
	}
	return nil
}

func (s *MetadataStore) saveLocked() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}
	if err := filesystem.WriteFileAtomic(s.path, append(data, '\n'), domain.FilePermissions); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}

var _ ports.MetadataStore = (*MetadataStore)(nil)
