package domain

// Config mirrors ~/.infernav/config.yaml. Every field can be overridden from the
// environment; env values win over the file.
type Config struct {
	ServersFile         string `yaml:"servers_file" json:"servers_file" toml:"servers_file" env:"INFERNAV_SERVERS_FILE"`
	ValidationCacheFile string `yaml:"validation_cache_file" json:"validation_cache_file" toml:"validation_cache_file" env:"INFERNAV_VALIDATION_CACHE_FILE"`
	MetadataFile        string `yaml:"metadata_file" json:"metadata_file" toml:"metadata_file" env:"INFERNAV_METADATA_FILE"`
	ProbeTimeout        string `yaml:"probe_timeout" json:"probe_timeout" toml:"probe_timeout" env:"INFERNAV_PROBE_TIMEOUT"`
	CatalogTimeout      string `yaml:"catalog_timeout" json:"catalog_timeout" toml:"catalog_timeout" env:"INFERNAV_CATALOG_TIMEOUT"`
	GenerationTimeout   string `yaml:"generation_timeout" json:"generation_timeout" toml:"generation_timeout" env:"INFERNAV_GENERATION_TIMEOUT"`
	LogLevel            string `yaml:"log_level" json:"log_level" toml:"log_level" env:"INFERNAV_LOG_LEVEL"`
}
