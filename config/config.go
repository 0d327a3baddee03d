package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	coremetrics "github.com/lkirchmair/bedcast/core/metrics"
	"github.com/lkirchmair/bedcast/infra/mqtt"
)

// Config is the root configuration of the service.
type Config struct {
	Data    DataConfig         `json:"data"`
	General GeneralConfig      `json:"general"`
	Model   ModelConfig        `json:"model"`
	Metrics coremetrics.Config `json:"metrics"`
	Feed    mqtt.Config        `json:"feed"`
	API     APIConfig          `json:"api"`
}

// Load reads the configuration file at path (yaml or json by extension) and
// applies environment overrides with the BEDCAST_ prefix, using __ as the
// key separator.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("BEDCAST_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "bedcast_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Model.SetDefaults()
	cfg.API.SetDefaults()
	cfg.Feed.SetDefaults()
	if err := cfg.Data.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.General.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Model.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Feed.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// APIConfig configures the JSON API server.
type APIConfig struct {
	// Address is the listen address, e.g. ":8080".
	Address string `json:"address"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}
