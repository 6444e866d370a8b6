package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roncuevas/LocalJSON/cache"
	"github.com/roncuevas/LocalJSON/errors"
	"github.com/roncuevas/LocalJSON/store/objectstore"
)

// Backends accepted by the backend setting.
const (
	BackendLocal  = "local"
	BackendMemory = "memory"
	BackendMinIO  = "minio"
)

// Config is the CLI configuration file.
//
//	backend: local
//	root: ./data
//	log_level: debug
//	cache:
//	  ttl: 30s
//	  max_entries: 500
type Config struct {
	Backend     string             `yaml:"backend"`
	Root        string             `yaml:"root"`
	LogLevel    string             `yaml:"log_level"`
	LogFormat   string             `yaml:"log_format"`
	MetricsAddr string             `yaml:"metrics_addr"`
	Cache       cache.Policy       `yaml:"cache"`
	MinIO       objectstore.Config `yaml:"minio"`
}

// DefaultConfig stores documents under ./data with the default cache policy.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendLocal,
		Root:      "data",
		LogLevel:  "warn",
		LogFormat: "text",
		Cache:     cache.DefaultPolicy(),
	}
}

// LoadConfig reads a YAML file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WrapWithContext(err, errors.CodeInvalidConfig, "cannot read config file",
			map[string]interface{}{"path": path})
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WrapWithContext(err, errors.CodeInvalidConfig, "cannot parse config file",
			map[string]interface{}{"path": path})
	}
	return cfg, cfg.Validate()
}

// Validate checks the backend selection and cache policy.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.Root == "" {
			return errors.New(errors.CodeInvalidConfig, "root is required for the local backend")
		}
	case BackendMemory, BackendMinIO:
	default:
		return errors.WithContext(errors.New(errors.CodeInvalidConfig, "unknown backend"), "backend", c.Backend)
	}
	return c.Cache.Validate()
}
