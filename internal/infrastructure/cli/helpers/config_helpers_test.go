package helpers

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/infernav/internal/domain"
)

func TestConfigKeys(t *testing.T) {
	want := []string{
		"catalog_timeout",
		"generation_timeout",
		"log_level",
		"metadata_file",
		"probe_timeout",
		"servers_file",
		"validation_cache_file",
	}
	if diff := cmp.Diff(want, ConfigKeys()); diff != "" {
		t.Fatalf("ConfigKeys() mismatch (-want +got):\n%s", diff)
	}
}

func TestSetConfigValue(t *testing.T) {
	cfg := domain.Config{ProbeTimeout: "5s", LogLevel: "warn"}

	updated, err := SetConfigValue(cfg, "probe_timeout", "2s")
	if err != nil {
		t.Fatalf("SetConfigValue: %v", err)
	}
	want := domain.Config{ProbeTimeout: "2s", LogLevel: "warn"}
	if diff := cmp.Diff(want, updated); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	got, err := GetConfigValue(updated, "probe_timeout")
	if err != nil || got != "2s" {
		t.Fatalf("GetConfigValue() = %q, %v", got, err)
	}
}

func TestSetConfigValueRejectsUnknownKey(t *testing.T) {
	cfg := domain.Config{LogLevel: "warn"}
	got, err := SetConfigValue(cfg, "colour", "blue")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Fatalf("config changed on error (-want +got):\n%s", diff)
	}
	if _, err := GetConfigValue(cfg, "colour"); err == nil {
		t.Fatal("expected error from GetConfigValue for unknown key")
	}
}
