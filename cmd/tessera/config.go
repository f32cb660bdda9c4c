package main

import (
	"fmt"
	"os"

	"go-simpler.org/env"
	"gopkg.in/yaml.v3"

	"github.com/gardar/tessera/pkg/engine"
	"github.com/gardar/tessera/pkg/pdfocr"
	"github.com/gardar/tessera/pkg/tessera"
)

// ConfigEnv names the config file when --config is not given.
const ConfigEnv = "TESSERA_CONFIG"

// Config is the CLI configuration. Defaults are overlaid by the YAML config
// file, then by TESSERA_* environment variables, then by flags.
type Config struct {
	Languages string      `yaml:"languages" env:"TESSERA_LANGUAGES"` // "eng+fra"
	DataDir   string      `yaml:"data_dir" env:"TESSERA_DATA_DIR"`
	Mode      engine.Mode `yaml:"mode" env:"TESSERA_MODE"`
	Workers   int         `yaml:"workers" env:"TESSERA_WORKERS"`
	DPI       float64     `yaml:"dpi" env:"TESSERA_DPI"` // rasterizing resolution for PDF input
	Debug     bool        `yaml:"debug" env:"TESSERA_DEBUG"`

	Whitelist               string             `yaml:"whitelist" env:"TESSERA_WHITELIST"`
	Blacklist               string             `yaml:"blacklist" env:"TESSERA_BLACKLIST"`
	PageSegMode             engine.PageSegMode `yaml:"page_seg_mode" env:"TESSERA_PSM"`
	MinCharHeight           int                `yaml:"min_char_height" env:"TESSERA_MIN_CHAR_HEIGHT"`
	PreserveInterwordSpaces bool               `yaml:"preserve_interword_spaces" env:"TESSERA_PRESERVE_INTERWORD_SPACES"`
	Variables               map[string]string  `yaml:"variables"`

	LayerName  string `yaml:"layer_name" env:"TESSERA_LAYER_NAME"`
	Force      bool   `yaml:"force" env:"TESSERA_FORCE"`
	DebugLayer bool   `yaml:"debug_layer" env:"TESSERA_DEBUG_LAYER"`
}

// DefaultConfig is the configuration before any file, variable or flag.
func DefaultConfig() Config {
	return Config{
		Languages: string(tessera.English),
		Workers:   1,
		DPI:       tessera.DefaultDPI,
		LayerName: pdfocr.DefaultConfig().LayerName,
	}
}

// LoadConfig reads the YAML file at path, when set, over the defaults and
// then applies the environment. The result is validated by the caller once
// flags are applied.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := env.Load(&cfg, nil); err != nil {
		return cfg, fmt.Errorf("failed to load environment: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %v", c.DPI)
	}
	if len(tessera.ParseLanguages(c.Languages)) == 0 {
		return fmt.Errorf("no languages configured")
	}
	return nil
}

// Recognition is the per-pass config; every level is collected.
func (c Config) Recognition() tessera.Config {
	rc := tessera.DefaultConfig()
	rc.Whitelist = c.Whitelist
	rc.Blacklist = c.Blacklist
	rc.PageSegMode = c.PageSegMode
	rc.MinCharHeight = c.MinCharHeight
	rc.PreserveInterwordSpaces = c.PreserveInterwordSpaces
	rc.Variables = c.Variables
	return rc
}

// PDF is the searchable PDF config.
func (c Config) PDF() pdfocr.OCRConfig {
	pc := pdfocr.DefaultConfig()
	pc.LayerName = c.LayerName
	pc.Force = c.Force
	pc.Debug = c.DebugLayer
	return pc
}
