package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// ApplyDefaults fills unset fields. Path defaults are resolved against home.
func (c *Config) ApplyDefaults(home string) {
	appDir := filepath.Join(home, AppDirName)
	if strings.TrimSpace(c.ServersFile) == "" {
		c.ServersFile = filepath.Join(appDir, DefaultServersFileName)
	}
	if strings.TrimSpace(c.ValidationCacheFile) == "" {
		c.ValidationCacheFile = filepath.Join(appDir, DefaultValidationCacheName)
	}
	if strings.TrimSpace(c.MetadataFile) == "" {
		c.MetadataFile = filepath.Join(appDir, DefaultMetadataFileName)
	}
	if strings.TrimSpace(c.ProbeTimeout) == "" {
		c.ProbeTimeout = DefaultProbeTimeout.String()
	}
	if strings.TrimSpace(c.CatalogTimeout) == "" {
		c.CatalogTimeout = DefaultCatalogTimeout.String()
	}
	if strings.TrimSpace(c.GenerationTimeout) == "" {
		c.GenerationTimeout = "0s"
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// ProbeTimeoutDuration returns the health probe timeout, falling back to the default
// when the configured value is missing, unparsable or not positive.
func (c Config) ProbeTimeoutDuration() time.Duration {
	return parseDurationOr(c.ProbeTimeout, DefaultProbeTimeout, false)
}

// CatalogTimeoutDuration returns the catalog fetch timeout.
func (c Config) CatalogTimeoutDuration() time.Duration {
	return parseDurationOr(c.CatalogTimeout, DefaultCatalogTimeout, false)
}

// GenerationTimeoutDuration returns the generation timeout; zero disables it.
func (c Config) GenerationTimeoutDuration() time.Duration {
	return parseDurationOr(c.GenerationTimeout, DefaultGenerationTimeout, true)
}

func parseDurationOr(raw string, fallback time.Duration, allowZero bool) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	if d == 0 && !allowZero {
		return fallback
	}
	return d
}
