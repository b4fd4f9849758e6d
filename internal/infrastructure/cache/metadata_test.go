package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/infernav/internal/domain"
)

func TestMetadataStoreNoteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server_metadata.json")
	store := NewMetadataStore(path, nil)

	if got := store.GetNote("a.example:8000"); got != "" {
		t.Fatalf("GetNote() = %q, want empty", got)
	}
	if err := store.SetNote("a.example:8000", "fast"); err != nil {
		t.Fatalf("SetNote() error = %v", err)
	}
	if got := store.GetNote("a.example:8000"); got != "fast" {
		t.Fatalf("GetNote() = %q, want %q", got, "fast")
	}

	reloaded := NewMetadataStore(path, nil)
	if got := reloaded.GetNote("a.example:8000"); got != "fast" {
		t.Fatalf("note did not survive reload: %q", got)
	}
}

func TestMetadataStoreCacheModelsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server_metadata.json")
	store := NewMetadataStore(path, nil)
	fixed := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	models := []domain.ModelDescriptor{{ID: "llama3:8b"}, {ID: "qwen2:7b"}, {ID: "mistral"}}
	if err := store.CacheModels("a.example:8000", models); err != nil {
		t.Fatalf("CacheModels() error = %v", err)
	}

	if diff := cmp.Diff(domain.ModelIDs(models), domain.ModelIDs(store.GetCachedModels("a.example:8000"))); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}

	reloaded := NewMetadataStore(path, nil)
	if diff := cmp.Diff(domain.ModelIDs(models), domain.ModelIDs(reloaded.GetCachedModels("a.example:8000"))); diff != "" {
		t.Fatalf("catalog mismatch after reload (-want +got):\n%s", diff)
	}
	rec, ok := reloaded.Record("a.example:8000")
	if !ok || rec.ModelsCachedAt == nil || !rec.ModelsCachedAt.Equal(fixed) {
		t.Fatalf("models_cached_at not persisted: %+v", rec)
	}
}

func TestMetadataStoreCatalogKeyedByAddress(t *testing.T) {
	store := NewMetadataStore(filepath.Join(t.TempDir(), "m.json"), nil)
	if err := store.CacheModels("a", []domain.ModelDescriptor{{ID: "one"}}); err != nil {
		t.Fatalf("CacheModels() error = %v", err)
	}
	if got := store.GetCachedModels("b"); len(got) != 0 {
		t.Fatalf("unexpected catalog for b: %+v", got)
	}
}

func TestMetadataStoreClearModelsKeepsNote(t *testing.T) {
	store := NewMetadataStore(filepath.Join(t.TempDir(), "m.json"), nil)
	if err := store.SetNote("a", "gpu box"); err != nil {
		t.Fatalf("SetNote() error = %v", err)
	}
	if err := store.CacheModels("a", []domain.ModelDescriptor{{ID: "one"}}); err != nil {
		t.Fatalf("CacheModels() error = %v", err)
	}
	if err := store.ClearModels("a"); err != nil {
		t.Fatalf("ClearModels() error = %v", err)
	}
	if got := store.GetCachedModels("a"); len(got) != 0 {
		t.Fatalf("expected empty catalog, got %+v", got)
	}
	if store.GetNote("a") != "gpu box" {
		t.Fatal("ClearModels must not touch the note")
	}
}

func TestMetadataStoreDocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	store := NewMetadataStore(path, nil)
	if err := store.SetNote("a.example:8000", "fast"); err != nil {
		t.Fatalf("SetNote() error = %v", err)
	}
	if err := store.CacheModels("a.example:8000", []domain.ModelDescriptor{{ID: "x"}}); err != nil {
		t.Fatalf("CacheModels() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc map[string]struct {
		Note           string `json:"note"`
		Models         []struct{ ID string `json:"id"` } `json:"models"`
		ModelsCachedAt string `json:"models_cached_at"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("document is not JSON: %v", err)
	}
	entry, ok := doc["a.example:8000"]
	if !ok {
		t.Fatalf("document not keyed by address: %s", raw)
	}
	if entry.Note != "fast" || len(entry.Models) != 1 || entry.Models[0].ID != "x" || entry.ModelsCachedAt == "" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestMetadataStoreMalformedFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewMetadataStore(path, nil)
	if store.LoadWarning() == "" {
		t.Fatal("expected load warning")
	}
	if len(store.Records()) != 0 {
		t.Fatalf("expected empty store, got %+v", store.Records())
	}
	if err := store.SetNote("a", "recovered"); err != nil {
		t.Fatalf("SetNote() error = %v", err)
	}
	if NewMetadataStore(path, nil).GetNote("a") != "recovered" {
		t.Fatal("rewrite after malformed load did not persist")
	}
}

// breakParent replaces dir with a regular file so writes beneath it fail.
func breakParent(t *testing.T, dir string) {
	t.Helper()
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMetadataStoreFailedSaveKeepsPreviousState(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	store := NewMetadataStore(filepath.Join(dir, "server_metadata.json"), nil)
	models := []domain.ModelDescriptor{{ID: "llama3"}}
	if err := store.SetNote("a.example:8000", "fast"); err != nil {
		t.Fatalf("SetNote() error = %v", err)
	}
	if err := store.CacheModels("a.example:8000", models); err != nil {
		t.Fatalf("CacheModels() error = %v", err)
	}
	before, _ := store.Record("a.example:8000")

	breakParent(t, dir)

	if err := store.SetNote("a.example:8000", "slow"); err == nil {
		t.Fatal("expected SetNote to fail")
	}
	if err := store.CacheModels("a.example:8000", []domain.ModelDescriptor{{ID: "mistral"}}); err == nil {
		t.Fatal("expected CacheModels to fail")
	}
	if err := store.ClearModels("a.example:8000"); err == nil {
		t.Fatal("expected ClearModels to fail")
	}
	if err := store.SetNote("b.example:8000", "new"); err == nil {
		t.Fatal("expected SetNote on a new address to fail")
	}

	after, _ := store.Record("a.example:8000")
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("record changed by failed saves (-want +got):\n%s", diff)
	}
	if got := store.GetNote("a.example:8000"); got != "fast" {
		t.Fatalf("GetNote() = %q, want fast", got)
	}
	if _, ok := store.Record("b.example:8000"); ok {
		t.Fatal("unsaved address is visible in memory")
	}
	if got := len(store.Records()); got != 1 {
		t.Fatalf("Records() has %d entries, want 1", got)
	}
}
