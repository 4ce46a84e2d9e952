package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"
)

//go:embed config.yaml
var defaults []byte

type (
	ServerConfig struct {
		Addr            string        `yaml:"addr" validate:"required,hostname_port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
	}

	SiteConfig struct {
		Organization    string   `yaml:"organization"`
		DefaultLanguage string   `yaml:"default_language" validate:"required,bcp47_language_tag"`
		Languages       []string `yaml:"languages" validate:"min=1,dive,bcp47_language_tag"`
		AssetsDir       string   `yaml:"assets_dir" validate:"required"`
		AssetsPrefix    string   `yaml:"assets_prefix" validate:"required,startswith=/"`
		MediaPrefix     string   `yaml:"media_prefix" validate:"required,startswith=/"`
		MaxUpload       int64    `yaml:"max_upload" validate:"gte=0"`
		// PagesFile persists pages across restarts. Empty keeps them in memory.
		PagesFile string `yaml:"pages_file"`
		// Translations maps a language to page labels and their localized text.
		Translations map[string]map[string]string `yaml:"translations" validate:"dive,keys,bcp47_language_tag,endkeys"`
	}

	CacheConfig struct {
		Addr string        `yaml:"addr" validate:"omitempty,hostname_port"`
		TTL  time.Duration `yaml:"ttl" validate:"gte=0"`
	}

	EditorConfig struct {
		Enabled  bool          `yaml:"enabled"`
		Secret   SecretString  `yaml:"secret" validate:"required_if=Enabled true,omitempty,min=16"`
		Issuer   string        `yaml:"issuer" validate:"required"`
		TokenTTL time.Duration `yaml:"token_ttl" validate:"gt=0"`
	}

	Config struct {
		Version int           `yaml:"version" validate:"eq=1"`
		Server  ServerConfig  `yaml:"server"`
		Site    SiteConfig    `yaml:"site"`
		Cache   CacheConfig   `yaml:"cache"`
		Editor  EditorConfig  `yaml:"editor"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// unknown keys are errors
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return cfg, nil
}

// Validate checks cfg against its field rules.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load reads the configuration file at path on top of the built in defaults and
// validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := unmarshalConfig(defaults, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to process default configuration: %w", err)
	}

	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if cfg, err = unmarshalConfig(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to process configuration file: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the built in configuration as yaml.
func Defaults() []byte {
	return bytes.Clone(defaults)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
