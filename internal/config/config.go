// Package config loads the provsql configuration file.
//
//	logger:
//	  level: info          # debug | info | warn | error
//	  type: text           # json | text | colored-text
//	catalog:
//	  type: memory         # memory | sqlite
//	  path: ./catalog.db   # sqlite only
//	serializer:
//	  max_depth: 256
package config

import (
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/lmittmann/tint"
	"gopkg.in/yaml.v3"

	"github.com/roach88/provsql/internal/catalog"
	"github.com/roach88/provsql/internal/querysql"
)

type Config struct {
	Logger     LoggerConfig     `yaml:"logger"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Serializer SerializerConfig `yaml:"serializer"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	Type  string `yaml:"type"`
}

type CatalogConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

type SerializerConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Logger:     LoggerConfig{Level: "info", Type: "text"},
		Catalog:    CatalogConfig{Type: "memory"},
		Serializer: SerializerConfig{MaxDepth: querysql.DefaultMaxDepth},
	}
}

// Load reads path over the defaults and validates the result. An empty
// path yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks enumerated fields and limits.
func (cfg Config) Validate() error {
	if _, err := parseLevel(cfg.Logger.Level); err != nil {
		return err
	}
	switch cfg.Logger.Type {
	case "json", "text", "colored-text":
	default:
		return errors.Newf("invalid log type: %s", cfg.Logger.Type)
	}
	switch cfg.Catalog.Type {
	case "memory":
	case "sqlite":
		if cfg.Catalog.Path == "" {
			return errors.New("sqlite catalog needs a path")
		}
	default:
		return errors.Newf("invalid catalog type: %s", cfg.Catalog.Type)
	}
	if cfg.Serializer.MaxDepth < 0 {
		return errors.Newf("serializer max_depth must not be negative, got %d", cfg.Serializer.MaxDepth)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.Newf("invalid log level: %s", s)
}

// NewLogger builds the configured logger writing to w.
func (cfg Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Logger.Level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch cfg.Logger.Type {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case "colored-text":
		handler = tint.NewHandler(w, &tint.Options{Level: level})
	default:
		return nil, errors.Newf("invalid log type: %s", cfg.Logger.Type)
	}
	return slog.New(handler), nil
}

// OpenCatalog opens the configured metadata backend.
func (cfg Config) OpenCatalog(logger *slog.Logger) (catalog.Lookup, error) {
	switch cfg.Catalog.Type {
	case "memory":
		return catalog.NewMemoryCatalog(), nil
	case "sqlite":
		c, err := catalog.Open(cfg.Catalog.Path, catalog.WithLogger(logger))
		if err != nil {
			return nil, errors.Wrap(err, "cannot open sqlite catalog")
		}
		return c, nil
	}
	return nil, errors.Newf("invalid catalog type: %s", cfg.Catalog.Type)
}

// NewSerializer returns a serializer with the configured limits.
func (cfg Config) NewSerializer(logger *slog.Logger) *querysql.Serializer {
	s := querysql.NewSerializer()
	if cfg.Serializer.MaxDepth > 0 {
		s.MaxDepth = cfg.Serializer.MaxDepth
	}
	s.Logger = logger
	return s
}
