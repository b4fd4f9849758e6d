package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/pkg/logger"
)

func TestValidationCachePutThenGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validation_cache.csv")
	c := NewValidationCache(path, logger.NewNop())
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	if err := c.Put("a.example:8000", true, now); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, ok := c.Get("a.example:8000")
	if !ok {
		t.Fatal("expected record after Put")
	}
	want := domain.ValidationRecord{Address: "a.example:8000", Reachable: true, CheckedAt: now}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	if err := c.Put("a.example:8000", false, now.Add(time.Minute)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, _ = c.Get("a.example:8000")
	if got.Reachable || !got.CheckedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("expected overwrite, got %+v", got)
	}
}

func TestValidationCacheSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validation_cache.csv")
	now := time.Date(2026, 10, 17, 12, 0, 0, 123456789, time.UTC)

	first := NewValidationCache(path, nil)
	if err := first.Put("b.example:8000", false, now); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := first.Put("a.example:8000", true, now); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	second := NewValidationCache(path, nil)
	rec, ok := second.Get("b.example:8000")
	if !ok || rec.Reachable || !rec.CheckedAt.Equal(now) {
		t.Fatalf("unexpected reloaded record: %+v (ok=%v)", rec, ok)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if lines[0] != "address,reachable,checked_at" {
		t.Fatalf("missing header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "b.example:8000,false,") {
		t.Fatalf("rows should keep first-seen order, got %q", lines[1])
	}
}

func TestValidationCacheFreshnessBoundary(t *testing.T) {
	c := NewValidationCache(filepath.Join(t.TempDir(), "v.csv"), nil)
	checked := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	rec := domain.ValidationRecord{Address: "a", Reachable: true, CheckedAt: checked}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"just checked", checked, true},
		{"one second before window", checked.Add(domain.FreshnessWindow - time.Second), true},
		{"exactly at window", checked.Add(domain.FreshnessWindow), false},
		{"past window", checked.Add(domain.FreshnessWindow + time.Nanosecond), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsFresh(rec, tt.now); got != tt.want {
				t.Errorf("IsFresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationCacheDropsUnparsableRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validation_cache.csv")
	content := strings.Join([]string{
		"address,reachable,checked_at",
		"a.example:8000,true,2026-10-17T12:00:00Z",
		"b.example:8000,maybe,2026-10-17T12:00:00Z",
		"c.example:8000,true,yesterday",
		"d.example:8000,true",
		"a.example:8000,false,2026-10-17T12:05:00Z",
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c := NewValidationCache(path, nil)
	if c.Dropped() != 3 {
		t.Fatalf("Dropped() = %d, want 3", c.Dropped())
	}
	if c.LoadWarning() != "" {
		t.Fatalf("row-level drops must not discard the file: %s", c.LoadWarning())
	}
	rec, ok := c.Get("a.example:8000")
	if !ok || rec.Reachable {
		t.Fatalf("later row should win for a.example:8000, got %+v", rec)
	}
	for _, addr := range []string{"b.example:8000", "c.example:8000", "d.example:8000"} {
		if _, ok := c.Get(addr); ok {
			t.Errorf("expected %s to be dropped", addr)
		}
	}
}

func TestValidationCacheMalformedFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validation_cache.csv")
	if err := os.WriteFile(path, []byte("address,reachable\n\"broken,true,x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := NewValidationCache(path, logger.NewNop())
	if len(c.Records()) != 0 {
		t.Fatalf("expected empty cache, got %+v", c.Records())
	}
	if c.LoadWarning() == "" {
		t.Fatal("expected a load warning for malformed file")
	}
	if err := c.Put("a", true, time.Now()); err != nil {
		t.Fatalf("Put() after malformed load error = %v", err)
	}
}

func TestValidationCacheMissingFile(t *testing.T) {
	c := NewValidationCache(filepath.Join(t.TempDir(), "absent.csv"), nil)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected no record")
	}
	if c.LoadWarning() != "" {
		t.Fatalf("missing file is not a warning: %s", c.LoadWarning())
	}
}

func TestValidationCacheClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.csv")
	c := NewValidationCache(path, nil)
	if err := c.Put("a", true, time.Now()); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}
	if len(c.Records()) != 0 {
		t.Fatal("expected no records after Clear")
	}
}

func TestValidationCacheFailedPutKeepsPreviousState(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	c := NewValidationCache(filepath.Join(dir, "validation_cache.csv"), logger.NewNop())
	old := time.Date(2026, 10, 17, 11, 0, 0, 0, time.UTC)
	now := old.Add(50 * time.Minute)
	if err := c.Put("a.example:8000", false, old); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := c.Put("a.example:8000", true, now); err == nil {
		t.Fatal("expected Put to fail")
	}
	if err := c.Put("b.example:8000", true, now); err == nil {
		t.Fatal("expected Put on a new address to fail")
	}

	got, ok := c.Get("a.example:8000")
	if !ok {
		t.Fatal("previous record lost")
	}
	want := domain.ValidationRecord{Address: "a.example:8000", Reachable: false, CheckedAt: old}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record changed by failed Put (-want +got):\n%s", diff)
	}
	if c.IsFresh(got, now) {
		t.Fatal("stale record became fresh after a failed Put")
	}
	if _, ok := c.Get("b.example:8000"); ok {
		t.Fatal("unsaved address is visible in memory")
	}
	if got := len(c.Records()); got != 1 {
		t.Fatalf("Records() has %d entries, want 1", got)
	}
}
