package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/pkg/logger"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	var errs []error
	for _, p := range []struct{ key, value string }{
		{"servers_file", cfg.ServersFile},
		{"validation_cache_file", cfg.ValidationCacheFile},
		{"metadata_file", cfg.MetadataFile},
	} {
		if strings.TrimSpace(p.value) == "" {
			errs = append(errs, fmt.Errorf("%s must be set", p.key))
		}
	}
	if err := validateDuration("probe_timeout", cfg.ProbeTimeout, false); err != nil {
		errs = append(errs, err)
	}
	if err := validateDuration("catalog_timeout", cfg.CatalogTimeout, false); err != nil {
		errs = append(errs, err)
	}
	if err := validateDuration("generation_timeout", cfg.GenerationTimeout, true); err != nil {
		errs = append(errs, err)
	}
	if cfg.LogLevel != "" && !logger.ValidLevel(cfg.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level must be debug|info|warn|error, got %s", cfg.LogLevel))
	}
	return errors.Join(errs...)
}

func validateDuration(key, raw string, allowZero bool) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s invalid: %w", key, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return fmt.Errorf("%s must be > 0, got %s", key, raw)
	}
	return nil
}
