// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.22
//

package gopvt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the receiver-side PVT settings.
type Config struct {
	Channels       int    `yaml:"channels"`        // Number of tracking channels
	AveragingDepth int    `yaml:"averaging_depth"` // Moving average depth, 0 disables smoothing
	DumpEnabled    bool   `yaml:"dump_enabled"`
	DumpFilename   string `yaml:"dump_filename"`
	Debug          int    `yaml:"debug"` // Debug display level for PrintD
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Channels:       8,
		AveragingDepth: 0,
		DumpEnabled:    false,
		DumpFilename:   "pvt.dat",
		Debug:          0,
	}
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read PVT config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse PVT config: %w", err)
	}
	if cfg.Channels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", cfg.Channels)
	}
	if cfg.AveragingDepth < 0 {
		return nil, fmt.Errorf("invalid averaging depth %d", cfg.AveragingDepth)
	}
	return &cfg, nil
}
