package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("display defaults", func(t *testing.T) {
		if cfg.Display.Provider != "auto" {
			t.Errorf("Expected display provider to be 'auto', got %q", cfg.Display.Provider)
		}
	})
	t.Run("detection defaults", func(t *testing.T) {
		if cfg.Detection.StrategyTimeout != 5 {
			t.Errorf("Expected strategy timeout to be 5, got %d", cfg.Detection.StrategyTimeout)
		}
		if cfg.Detection.Floor != 0.4 {
			t.Errorf("Expected floor to be 0.4, got %v", cfg.Detection.Floor)
		}
	})
	t.Run("learning defaults", func(t *testing.T) {
		if cfg.Learning.Alpha != 0.2 {
			t.Errorf("Expected alpha to be 0.2, got %v", cfg.Learning.Alpha)
		}
		if cfg.Learning.Beta != 0.3 {
			t.Errorf("Expected beta to be 0.3, got %v", cfg.Learning.Beta)
		}
		if cfg.Learning.Store.Type != "sqlite" {
			t.Errorf("Expected default store to be 'sqlite', got %q", cfg.Learning.Store.Type)
		}
	})
	t.Run("focus defaults", func(t *testing.T) {
		if cfg.Focus.Zoom != 2.0 {
			t.Errorf("Expected zoom to be 2.0, got %v", cfg.Focus.Zoom)
		}
		if cfg.Focus.MaxZoom != 4.0 {
			t.Errorf("Expected max zoom to be 4.0, got %v", cfg.Focus.MaxZoom)
		}
		if cfg.Focus.ResolveRetries != 2 {
			t.Errorf("Expected resolve retries to be 2, got %d", cfg.Focus.ResolveRetries)
		}
	})
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Learning.Store.Type != "sqlite" {
		t.Errorf("Expected default store, got %q", cfg.Learning.Store.Type)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("focus:\n  zoom: 3.0\nlearning:\n  store:\n    type: memory\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Focus.Zoom != 3.0 {
		t.Errorf("Expected zoom 3.0, got %v", cfg.Focus.Zoom)
	}
	if cfg.Learning.Store.Type != "memory" {
		t.Errorf("Expected memory store, got %q", cfg.Learning.Store.Type)
	}
	// Unset keys keep their defaults.
	if cfg.Focus.MaxZoom != 4.0 {
		t.Errorf("Expected max zoom default 4.0, got %v", cfg.Focus.MaxZoom)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Focus.Zoom = 2.5
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig returned error: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if loaded.Focus.Zoom != 2.5 {
		t.Errorf("Expected zoom 2.5 after round trip, got %v", loaded.Focus.Zoom)
	}
}
