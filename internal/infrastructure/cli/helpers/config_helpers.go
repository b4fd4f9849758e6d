package helpers

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/infernav/internal/app"
	configapp "github.com/doeshing/infernav/internal/application/config"
	"github.com/doeshing/infernav/internal/domain"
	configinfra "github.com/doeshing/infernav/internal/infrastructure/config"
)

// GetConfigLoader extracts the config loader from container with error handling
func GetConfigLoader(container *app.Container) (*configinfra.FileLoader, error) {
	if container == nil || container.ConfigLoader == nil {
		return nil, fmt.Errorf("config loader unavailable")
	}
	return container.ConfigLoader, nil
}

// SaveConfigWithValidation validates and saves configuration with automatic backup
func SaveConfigWithValidation(container *app.Container, cfg domain.Config) error {
	loader, err := GetConfigLoader(container)
	if err != nil {
		return err
	}

	if err := configapp.Validate(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := createBackupIfExists(loader); err != nil {
		return err
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	return nil
}

// createBackupIfExists creates a backup of the config file if it exists
func createBackupIfExists(loader *configinfra.FileLoader) error {
	if _, err := os.Stat(loader.Path()); err == nil {
		if _, err := loader.Backup(); err != nil {
			return fmt.Errorf("failed to create configuration backup: %w", err)
		}
	}
	return nil
}

// ConfigKeys lists the top-level configuration keys in sorted order.
func ConfigKeys() []string {
	m, _ := configToMap(domain.Config{})
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetConfigValue returns the value stored under a top-level key.
func GetConfigValue(cfg domain.Config, key string) (string, error) {
	m, err := configToMap(cfg)
	if err != nil {
		return "", err
	}
	value, ok := m[key]
	if !ok {
		return "", fmt.Errorf("unknown key %q (known: %v)", key, ConfigKeys())
	}
	return fmt.Sprint(value), nil
}

// SetConfigValue returns cfg with key replaced by value.
func SetConfigValue(cfg domain.Config, key, value string) (domain.Config, error) {
	m, err := configToMap(cfg)
	if err != nil {
		return cfg, err
	}
	if _, ok := m[key]; !ok {
		return cfg, fmt.Errorf("unknown key %q (known: %v)", key, ConfigKeys())
	}
	m[key] = value
	raw, err := yaml.Marshal(m)
	if err != nil {
		return cfg, err
	}
	var out domain.Config
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return cfg, err
	}
	return out, nil
}

func configToMap(cfg domain.Config) (map[string]interface{}, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	m := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
