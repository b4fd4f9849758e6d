package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/infernav/assets"
	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/pkg/filesystem"
	"github.com/doeshing/infernav/internal/ports"
)

// EnvConfigPath names the variable that relocates the config file.
const EnvConfigPath = "INFERNAV_CONFIG"

// FileLoader loads configuration from ~/.infernav/config.yaml (overridable via
// INFERNAV_CONFIG or an explicit path). The format follows the file extension.
type FileLoader struct {
	overridePath string
	home         string
}

// NewFileLoader builds a new loader. An empty path uses the default location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, home: filesystem.UserHomeDir()}
}

// Path returns the config file the loader reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(l.home, domain.AppDirName, domain.DefaultConfigFileName)
}

// Load implements ports.ConfigProvider. A missing file is created from the
// embedded defaults. Environment variables override file values.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, fmt.Errorf("create config dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, fmt.Errorf("read config: %w", err)
		}
		if data, err = l.writeDefault(path); err != nil {
			return domain.Config{}, err
		}
	}

	cfg, err := Decode(data, formatOf(path))
	if err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := env.Parse(&cfg); err != nil {
		return domain.Config{}, fmt.Errorf("env overrides: %w", err)
	}
	return l.hydrate(cfg), nil
}

// LoadFile decodes the config file alone, without environment overrides or
// defaults. A missing file decodes as the embedded defaults.
func (l *FileLoader) LoadFile() (domain.Config, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, fmt.Errorf("read config: %w", err)
		}
		return Decode(assets.DefaultConfigYAML, "yaml")
	}
	return Decode(data, formatOf(path))
}

// Backup copies the current config file next to itself and returns the copy's path.
func (l *FileLoader) Backup() (string, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.bak-%s", path, time.Now().Format("20060102-150405"))
	if err := filesystem.WriteFileAtomic(backup, data, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return backup, nil
}

// Save writes cfg to the loader's path in the format its extension selects.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.Path()
	raw, err := Encode(cfg, formatOf(path))
	if err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(path, raw, domain.SecureFilePermissions)
}

func (l *FileLoader) writeDefault(path string) ([]byte, error) {
	raw := assets.DefaultConfigYAML
	if format := formatOf(path); format != "yaml" {
		cfg, err := Decode(assets.DefaultConfigYAML, "yaml")
		if err != nil {
			return nil, fmt.Errorf("embedded defaults: %w", err)
		}
		if raw, err = Encode(cfg, format); err != nil {
			return nil, err
		}
	}
	if err := filesystem.WriteFileAtomic(path, raw, domain.SecureFilePermissions); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}
	return raw, nil
}

func (l *FileLoader) hydrate(cfg domain.Config) domain.Config {
	cfg.ServersFile = l.expand(cfg.ServersFile)
	cfg.ValidationCacheFile = l.expand(cfg.ValidationCacheFile)
	cfg.MetadataFile = l.expand(cfg.MetadataFile)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.ApplyDefaults(l.home)
	return cfg
}

func (l *FileLoader) expand(path string) string {
	path = strings.TrimSpace(path)
	switch {
	case path == "":
		return ""
	case path == "~":
		return l.home
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(l.home, strings.TrimPrefix(path, "~/"))
	}
	return filepath.Clean(path)
}

// Decode parses raw in the given format: yaml, json or toml.
func Decode(raw []byte, format string) (domain.Config, error) {
	var cfg domain.Config
	var err error
	switch format {
	case "yaml":
		err = yaml.Unmarshal(raw, &cfg)
	case "json":
		err = json.Unmarshal(raw, &cfg)
	case "toml":
		err = toml.Unmarshal(raw, &cfg)
	default:
		err = fmt.Errorf("unsupported config format: %s", format)
	}
	return cfg, err
}

// Encode renders cfg in the given format: yaml, json or toml.
func Encode(cfg domain.Config, format string) ([]byte, error) {
	switch format {
	case "yaml":
		return yaml.Marshal(cfg)
	case "json":
		raw, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(raw, '\n'), nil
	case "toml":
		return toml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}
}

// formatOf maps a file extension to a format. Unknown extensions read as yaml.
func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return "yaml"
	}
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
