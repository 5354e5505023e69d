package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-playground/validator/v10"

	"github.com/petems/waverec/internal/sink"
)

type Config struct {
	LogLevel string       `json:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	Audio    AudioConfig  `json:"audio"`
	Output   OutputConfig `json:"output"`
	Gain     GainConfig   `json:"gain"`
}

type AudioConfig struct {
	// DeviceName is the preferred capture device; empty means the default
	// loopback device from the current enumeration.
	DeviceName string `json:"device_name" validate:"omitempty,max=256"`
}

type OutputConfig struct {
	SaveDir    string `json:"save_dir" validate:"omitempty,max=4096"`
	FilePrefix string `json:"file_prefix" validate:"omitempty,max=128"`
	// DateLayout is a Go reference-time layout rendered into the filename.
	DateLayout string `json:"date_layout" validate:"omitempty,max=128"`
	FileSuffix string `json:"file_suffix" validate:"omitempty,max=128"`
}

type GainConfig struct {
	Normalize    bool    `json:"normalize"`
	TargetDBFS   float64 `json:"target_dbfs" validate:"gte=-20,lte=0"`
	ManualFactor float64 `json:"manual_factor" validate:"gte=1,lte=20"`
}

// Load reads the config from disk, merged over defaults, and validates it.
func Load() (*Config, error) {
	path := configPath()

	cfg := &Config{
		LogLevel: "info",
		Audio:    AudioConfig{DeviceName: ""},
		Output: OutputConfig{
			SaveDir:    defaultSaveDir(),
			FilePrefix: sink.DefaultPrefix,
			DateLayout: sink.DefaultDateLayout,
			FileSuffix: "",
		},
		Gain: GainConfig{
			Normalize:    true,
			TargetDBFS:   -1.0,
			ManualFactor: 5,
		},
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	path := configPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks field constraints via struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Template returns the filename template built from the output settings.
func (c *Config) Template() sink.Template {
	return sink.Template{
		Prefix:     c.Output.FilePrefix,
		DateLayout: c.Output.DateLayout,
		Suffix:     c.Output.FileSuffix,
	}
}

// configPath returns the platform-specific config file path.
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "waverec", "config.json")
}

// defaultSaveDir is where recordings land until the user picks a directory.
func defaultSaveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		wd, _ := os.Getwd()
		return wd
	}
	return filepath.Join(home, "Recordings")
}
