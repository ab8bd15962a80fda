// Package config holds the persisted engine settings.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Config struct to hold all configuration data
type Config struct {
	EncodingQuality int     `json:"encoding_quality"`
	PreviewQuality  int     `json:"preview_quality"`
	PreviewFPS      float64 `json:"preview_fps"`
	Workers         int     `json:"workers"`
	MinCropSize     float64 `json:"min_crop_size"`
	ServerAddr      string  `json:"server_addr"`
	PresetDir       string  `json:"preset_dir"`
	FaceModel       string  `json:"face_model"` // pigo cascade; face boost is off when missing

	// Tuning overrides shader thresholds; absent keys keep their defaults.
	Tuning json.RawMessage `json:"tuning,omitempty"`
}

var (
	instance *Config
	once     sync.Once
)

// GetConfig returns the singleton instance of Config.
func GetConfig() *Config {
	once.Do(func() {
		instance = &Config{}
		instance.setDefaultValues()
		if err := instance.loadFromFile(GetFilename()); err != nil {
			if !os.IsNotExist(err) {
				log.Println("Error loading config:", err)
			}
			instance.setDefaultValues()
		}
	})
	return instance
}

// Default returns a config holding only default values.
func Default() *Config {
	c := &Config{}
	c.setDefaultValues()
	return c
}

// Load reads a config from filename. Fields missing from the file keep
// their defaults.
func Load(filename string) (*Config, error) {
	c := Default()
	if err := c.loadFromFile(filename); err != nil {
		return nil, err
	}
	return c, nil
}

// GetFilename returns the path to the user's config file
func GetFilename() string {
	return filepath.Join(GetPath(), "config.json")
}

// GetPath returns the path to the user's config directory
func GetPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Error getting user home directory: %v", err)
	}
	return filepath.Join(homeDir, "."+strings.ToLower(AppName))
}

// loadFromFile loads configuration from the specified file
func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}
	c.sanitize()
	return nil
}

// setDefaultValues sets default values for the configuration
func (c *Config) setDefaultValues() {
	c.EncodingQuality = 92
	c.PreviewQuality = 80
	c.PreviewFPS = 30
	c.Workers = runtime.NumCPU()
	c.MinCropSize = 0.05
	c.ServerAddr = DefaultServerAddr
	c.PresetDir = filepath.Join(GetPath(), "presets")
	c.FaceModel = filepath.Join(GetPath(), "facefinder")
	c.Tuning = nil
}

// sanitize replaces unusable values read from disk with defaults.
func (c *Config) sanitize() {
	d := Default()
	if c.EncodingQuality < 1 || c.EncodingQuality > 100 {
		c.EncodingQuality = d.EncodingQuality
	}
	if c.PreviewQuality < 1 || c.PreviewQuality > 100 {
		c.PreviewQuality = d.PreviewQuality
	}
	if c.PreviewFPS <= 0 {
		c.PreviewFPS = d.PreviewFPS
	}
	if c.Workers < 1 {
		c.Workers = d.Workers
	}
	if c.MinCropSize <= 0 || c.MinCropSize > 1 {
		c.MinCropSize = d.MinCropSize
	}
	if c.ServerAddr == "" {
		c.ServerAddr = d.ServerAddr
	}
}

// Save saves the current configuration to the user's config file
func (c *Config) Save() error {
	return c.SaveTo(GetFilename())
}

// SaveTo writes the configuration to filename, creating its directory.
func (c *Config) SaveTo(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
