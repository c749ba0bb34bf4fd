package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Duration parses YAML duration strings such as "30m" or "1h".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(v)
	return nil
}

// Database holds connection pool settings.
type Database struct {
	Driver string `yaml:"driver" validate:"required,oneof=postgres mysql"`

	// DSN is the data source name. When empty, DSNEnv names the
	// environment variable it is read from instead.
	DSN    string `yaml:"dsn"`
	DSNEnv string `yaml:"dsn_env"`

	MaxOpenConns    int      `yaml:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int      `yaml:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
}

// Logging controls the structured-log output.
type Logging struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
	File   string `yaml:"file"`
}

// Config is the top-level configuration document.
type Config struct {
	Database Database `yaml:"database"`
	Logging  Logging  `yaml:"logging"`
}

var validate = validator.New()

// Parse decodes and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Database.DSN == "" && cfg.Database.DSNEnv != "" {
		cfg.Database.DSN = os.Getenv(cfg.Database.DSNEnv)
	}
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}
