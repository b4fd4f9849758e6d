// Package registry owns the list of known server addresses and classifies
// them as valid or invalid through the validation cache.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/ports"
)

// ErrDuplicateAddress is returned by Add when the address is already known.
var ErrDuplicateAddress = errors.New("address already registered")

// ErrUnknownAddress is returned by Remove when the address is not known.
var ErrUnknownAddress = errors.New("address not registered")

// Reviewer is consulted during a validation pass. It receives one status line
// per address and decides whether invalid addresses are pruned.
type Reviewer interface {
	Status(level domain.StatusLevel, msg string)
	ConfirmPrune(ctx context.Context, invalid []string) (bool, error)
}

// Service is the endpoint registry. Probing is sequential and in registry order.
type Service struct {
	list   ports.ServerListStore
	cache  ports.ValidationStore
	prober ports.HealthProber
	logger ports.Logger
	now    func() time.Time

	mu    sync.Mutex
	known []string
}

// New constructs a registry. A nil clock defaults to time.Now.
func New(list ports.ServerListStore, cache ports.ValidationStore, prober ports.HealthProber, logger ports.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		list:   list,
		cache:  cache,
		prober: prober,
		logger: logger,
		now:    now,
	}
}

// Load reads the known addresses from the list store. It never fails.
func (s *Service) Load() []string {
	addrs := s.list.Load()
	s.mu.Lock()
	s.known = append([]string{}, addrs...)
	s.mu.Unlock()
	s.debug("server list loaded", map[string]interface{}{"count": len(addrs)})
	return append([]string{}, addrs...)
}

// Known returns a copy of the known addresses in registry order.
func (s *Service) Known() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.known...)
}

// Probe checks a single address live. It does not touch the cache.
func (s *Service) Probe(ctx context.Context, address string) bool {
	return s.prober.Probe(ctx, address)
}

// ValidateAll classifies every known address. With useCache, a fresh record is
// reused without probing; every other address is probed and its verdict written
// through. When some address is invalid the reviewer may prune the list down to
// the valid subset, all at once.
//
// The returned error comes only from the reviewer and means the operator is gone.
func (s *Service) ValidateAll(ctx context.Context, useCache bool, reviewer Reviewer) (domain.ValidationReport, error) {
	known := s.Known()
	report := domain.ValidationReport{
		Entries: make([]domain.ValidationEntry, 0, len(known)),
		Valid:   []string{},
		Invalid: []string{},
	}

	for _, addr := range known {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		entry := s.classify(ctx, addr, useCache)
		report.Entries = append(report.Entries, entry)
		if entry.Reachable {
			report.Valid = append(report.Valid, addr)
		} else {
			report.Invalid = append(report.Invalid, addr)
		}
		if reviewer != nil {
			reviewer.Status(entryLevel(entry), describeEntry(entry))
		}
	}

	s.info("validation pass finished", map[string]interface{}{
		"use_cache": useCache,
		"valid":     len(report.Valid),
		"invalid":   len(report.Invalid),
	})

	if len(report.Invalid) == 0 || reviewer == nil {
		return report, nil
	}
	prune, err := reviewer.ConfirmPrune(ctx, append([]string{}, report.Invalid...))
	if err != nil {
		return report, err
	}
	if !prune {
		return report, nil
	}
	if err := s.replace(report.Valid); err != nil {
		s.warn("prune not persisted", err)
		reviewer.Status(domain.StatusWarn, fmt.Sprintf("could not update server list: %v", err))
		return report, nil
	}
	report.Pruned = true
	reviewer.Status(domain.StatusSuccess, fmt.Sprintf("removed %d invalid server(s)", len(report.Invalid)))
	return report, nil
}

// GetAvailable returns the valid addresses. With validateFirst it runs a cached
// validation pass; otherwise it trusts only records that are present, fresh and
// reachable. An address with no record is excluded.
func (s *Service) GetAvailable(ctx context.Context, validateFirst bool, reviewer Reviewer) ([]string, error) {
	if validateFirst {
		report, err := s.ValidateAll(ctx, true, reviewer)
		return report.Valid, err
	}
	now := s.now()
	available := []string{}
	for _, addr := range s.Known() {
		rec, ok := s.cache.Get(addr)
		if !ok || !s.cache.IsFresh(rec, now) || !rec.Reachable {
			continue
		}
		available = append(available, addr)
	}
	return available, nil
}

// Add appends an address to the list and persists it.
func (s *Service) Add(address string) error {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return errors.New("address is empty")
	}
	known := s.Known()
	for _, existing := range known {
		if existing == addr {
			return fmt.Errorf("%w: %s", ErrDuplicateAddress, addr)
		}
	}
	return s.replace(append(known, addr))
}

// Remove drops an address from the list and persists it.
func (s *Service) Remove(address string) error {
	addr := strings.TrimSpace(address)
	known := s.Known()
	kept := make([]string, 0, len(known))
	for _, existing := range known {
		if existing != addr {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(known) {
		return fmt.Errorf("%w: %s", ErrUnknownAddress, addr)
	}
	return s.replace(kept)
}

func (s *Service) classify(ctx context.Context, addr string, useCache bool) domain.ValidationEntry {
	if useCache {
		if rec, ok := s.cache.Get(addr); ok && s.cache.IsFresh(rec, s.now()) {
			return domain.ValidationEntry{Address: addr, Reachable: rec.Reachable, FromCache: true}
		}
	}
	reachable := s.prober.Probe(ctx, addr)
	if err := s.cache.Put(addr, reachable, s.now()); err != nil {
		s.warn("validation record not persisted", err, "address", addr)
	}
	return domain.ValidationEntry{Address: addr, Reachable: reachable}
}

// replace persists addrs and adopts them as the known list only on success.
func (s *Service) replace(addrs []string) error {
	next := append([]string{}, addrs...)
	if err := s.list.Save(next); err != nil {
		return err
	}
	s.mu.Lock()
	s.known = next
	s.mu.Unlock()
	return nil
}

func entryLevel(e domain.ValidationEntry) domain.StatusLevel {
	if e.Reachable {
		return domain.StatusSuccess
	}
	return domain.StatusError
}

func describeEntry(e domain.ValidationEntry) string {
	verdict := "unreachable"
	if e.Reachable {
		verdict = "reachable"
	}
	if e.FromCache {
		return fmt.Sprintf("%s: %s (cached)", e.Address, verdict)
	}
	return fmt.Sprintf("%s: %s", e.Address, verdict)
}

func (s *Service) debug(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, fields)
	}
}

func (s *Service) info(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, fields)
	}
}

func (s *Service) warn(msg string, err error, kv ...string) {
	if s.logger == nil {
		return
	}
	fields := map[string]interface{}{"error": err.Error()}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}
	s.logger.Warn(msg, fields)
}
