// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Stats    StatsConfig    `toml:"stats"`
}

// PracticeConfig maps drill settings.
type PracticeConfig struct {
	Set        *string `toml:"set"`
	VocabFile  *string `toml:"vocab-file"`
	FocusWeak  *bool   `toml:"focus-weak"`
	WeakTop    *int    `toml:"weak-top"`
	WeakWindow *int    `toml:"weak-window"`
	Seed       *int64  `toml:"seed"`
}

// StatsConfig maps stats settings.
type StatsConfig struct {
	CurveWindow *int `toml:"curve-window"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
