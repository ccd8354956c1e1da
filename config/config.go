package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	storage "github.com/pixelpoint/cli/internal/infra/storage"
	"github.com/pixelpoint/cli/internal/logger"
)

// Config represents the CLI configuration
type Config struct {
	Display   DisplayConfig   `yaml:"display" mapstructure:"display"`
	Capture   CaptureConfig   `yaml:"capture" mapstructure:"capture"`
	Detection DetectionConfig `yaml:"detection" mapstructure:"detection"`
	Learning  LearningConfig  `yaml:"learning" mapstructure:"learning"`
	Focus     FocusConfig     `yaml:"focus" mapstructure:"focus"`
}

// DisplayConfig selects the display provider
type DisplayConfig struct {
	// Provider is "auto", "x11" or "robotgo"
	Provider string `yaml:"provider" mapstructure:"provider"`
}

// CaptureConfig contains region/zoom capture settings
type CaptureConfig struct {
	Enhance     bool `yaml:"enhance" mapstructure:"enhance"`
	GridSpacing int  `yaml:"grid_spacing" mapstructure:"grid_spacing"`
}

// DetectionConfig contains ensemble settings
type DetectionConfig struct {
	// StrategyTimeout bounds each strategy, in seconds
	StrategyTimeout int     `yaml:"strategy_timeout" mapstructure:"strategy_timeout"`
	Floor           float64 `yaml:"floor" mapstructure:"floor"`
	OCRLanguage     string  `yaml:"ocr_language" mapstructure:"ocr_language"`
}

// LearningConfig contains cache update-rule parameters and the store backend
type LearningConfig struct {
	Alpha float64        `yaml:"alpha" mapstructure:"alpha"`
	Beta  float64        `yaml:"beta" mapstructure:"beta"`
	Floor float64        `yaml:"floor" mapstructure:"floor"`
	Store storage.Config `yaml:"store" mapstructure:"store"`
}

// FocusConfig contains orchestrator settings
type FocusConfig struct {
	Zoom           float64 `yaml:"zoom" mapstructure:"zoom"`
	MaxZoom        float64 `yaml:"max_zoom" mapstructure:"max_zoom"`
	ResolveRetries int     `yaml:"resolve_retries" mapstructure:"resolve_retries"`
	VerifyRetries  int     `yaml:"verify_retries" mapstructure:"verify_retries"`
	// StageTimeout bounds every external call, in seconds
	StageTimeout int `yaml:"stage_timeout" mapstructure:"stage_timeout"`
	// SettleDelayMillis is the post-click wait before verification
	SettleDelayMillis int     `yaml:"settle_delay_millis" mapstructure:"settle_delay_millis"`
	VerifyDistance    int     `yaml:"verify_distance" mapstructure:"verify_distance"`
	AmbiguityDelta    float64 `yaml:"ambiguity_delta" mapstructure:"ambiguity_delta"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Provider: "auto",
		},
		Capture: CaptureConfig{
			Enhance:     true,
			GridSpacing: 100,
		},
		Detection: DetectionConfig{
			StrategyTimeout: 5,
			Floor:           0.4,
			OCRLanguage:     "eng",
		},
		Learning: LearningConfig{
			Alpha: 0.2,
			Beta:  0.3,
			Floor: 0.4,
			Store: storage.Config{
				Type: "sqlite",
				SQLite: storage.SQLiteConfig{
					Path: ".pixelpoint/learning.db",
				},
			},
		},
		Focus: FocusConfig{
			Zoom:              2.0,
			MaxZoom:           4.0,
			ResolveRetries:    2,
			VerifyRetries:     2,
			StageTimeout:      10,
			SettleDelayMillis: 300,
			VerifyDistance:    5,
			AmbiguityDelta:    0.05,
		},
	}
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = getDefaultConfigPath()
		logger.Debug("Using default config path", "path", configPath)
	} else {
		logger.Debug("Using custom config path", "path", configPath)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		logger.Debug("Config file not found, using default configuration", "path", configPath)
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		logger.Error("Failed to read config file", "path", configPath, "error", err)
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		logger.Error("Failed to parse config file", "path", configPath, "error", err)
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	logger.Debug("Successfully loaded config", "path", configPath, "store", config.Learning.Store.Type)
	return config, nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	defer func() {
		if err := encoder.Close(); err != nil {
			logger.Error("Failed to close YAML encoder", "error", err)
		}
	}()

	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	logger.Debug("Successfully saved config", "path", configPath)
	return nil
}

func getDefaultConfigPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return ".pixelpoint/config.yaml"
	}
	return filepath.Join(wd, ".pixelpoint/config.yaml")
}
