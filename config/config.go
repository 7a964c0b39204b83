// Package config describes a layered store in a TOML or YAML file and opens it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/thoas/go-funk"
	"gopkg.in/yaml.v2"
)

// Backend kinds accepted in BackendConfig.Kind.
const (
	KindMemory   = "memory"
	KindFile     = "file"
	KindBolt     = "bolt"
	KindS3       = "s3"
	KindDynamoDB = "dynamodb"
	KindRedis    = "redis"
)

type Config struct {
	Backend BackendConfig `toml:"backend" yaml:"backend"`
	Keys    KeysConfig    `toml:"keys" yaml:"keys"`
	Codec   string        `toml:"codec" yaml:"codec"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// BackendConfig selects one backing. Only the fields of the chosen kind are read.
type BackendConfig struct {
	Kind string `toml:"kind" yaml:"kind"`

	// file root directory, or bolt database file
	Path string `toml:"path" yaml:"path"`

	// s3 bucket, or bolt bucket
	Bucket string `toml:"bucket" yaml:"bucket"`

	Table   string `toml:"table" yaml:"table"`
	KeyAttr string `toml:"key_attr" yaml:"key_attr"`

	Addr    string `toml:"addr" yaml:"addr"`
	Network string `toml:"network" yaml:"network"`
	DB      int    `toml:"db" yaml:"db"`

	// Timeout bounds waiting for the bolt file lock, e.g. "1s".
	Timeout string `toml:"timeout" yaml:"timeout"`
}

// KeysConfig places every key at Prefix+key+Suffix in the backing.
type KeysConfig struct {
	Prefix string `toml:"prefix" yaml:"prefix"`
	Suffix string `toml:"suffix" yaml:"suffix"`
}

// LoggingConfig is applied by Open only when at least one field is set. Left
// empty, the process-wide slog default is not touched.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Defaults returns an in-memory JSON store that leaves logging to the caller.
func Defaults() *Config {
	return &Config{
		Backend: BackendConfig{Kind: KindMemory},
		Codec:   "json",
	}
}

// Load reads a .toml, .yaml or .yml file over the defaults. If path is
// empty, only defaults are returned. Unknown fields are an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parsing config: unknown field %q", undecoded[0].String())
		}
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	return cfg, nil
}

var (
	validCodecs  = []string{"json", "yaml", "yml", "toml"}
	validLevels  = []string{"debug", "info", "warn", "warning", "error"}
	validFormats = []string{"text", "json"}
)

// Validate reports every problem with the config at once. Empty codec,
// level and format fields are allowed.
func (c *Config) Validate() error {
	var result *multierror.Error
	add := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}

	b := c.Backend
	switch b.Kind {
	case KindMemory, KindRedis:
	case KindFile:
		if b.Path == "" {
			add("backend.path is required for %s", b.Kind)
		}
	case KindBolt:
		if b.Path == "" {
			add("backend.path is required for %s", b.Kind)
		}
		if b.Timeout != "" {
			if _, err := time.ParseDuration(b.Timeout); err != nil {
				add("backend.timeout: %v", err)
			}
		}
	case KindS3:
		if b.Bucket == "" {
			add("backend.bucket is required for %s", b.Kind)
		}
	case KindDynamoDB:
		if b.Table == "" {
			add("backend.table is required for %s", b.Kind)
		}
	case "":
		add("backend.kind is required")
	default:
		add("backend.kind %q is not one of %s", b.Kind, strings.Join(kinds, ", "))
	}
	if b.Network != "" && b.Network != "tcp" && b.Network != "unix" {
		add("backend.network %q must be tcp or unix", b.Network)
	}

	if c.Codec != "" && !funk.ContainsString(validCodecs, c.Codec) {
		add("codec %q is not one of %s", c.Codec, strings.Join(validCodecs, ", "))
	}
	if c.Logging.Level != "" && !funk.ContainsString(validLevels, strings.ToLower(c.Logging.Level)) {
		add("logging.level %q is not one of %s", c.Logging.Level, strings.Join(validLevels, ", "))
	}
	if c.Logging.Format != "" && !funk.ContainsString(validFormats, strings.ToLower(c.Logging.Format)) {
		add("logging.format %q is not one of %s", c.Logging.Format, strings.Join(validFormats, ", "))
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// ErrInvalid is returned by Validate and Open for a config that cannot be used.
var ErrInvalid = errors.New("invalid config")

var kinds = []string{KindMemory, KindFile, KindBolt, KindS3, KindDynamoDB, KindRedis}
