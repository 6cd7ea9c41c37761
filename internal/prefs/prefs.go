// Package prefs remembers CLI defaults between runs in a small JSON file.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Prefs holds the defaults applied when a flag is not given.
type Prefs struct {
	LastPreset string `json:"last_preset,omitempty"`
	DPI        int    `json:"default_dpi,omitempty"`
	MaxSize    int    `json:"max_size,omitempty"`
	OutputDir  string `json:"output_dir,omitempty"` // Where results go when -out is not set

	path string
}

// DefaultPath returns <user config dir>/laser-prep/preferences.json.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "laser-prep", "preferences.json")
}

// Load reads the preferences from DefaultPath.
func Load() (*Prefs, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads preferences from path. A missing file is not an error. An
// unreadable or corrupt file returns empty preferences along with the error,
// so callers can report it and carry on.
func LoadFrom(path string) (*Prefs, error) {
	p := &Prefs{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := json.Unmarshal(data, p); err != nil {
		*p = Prefs{path: path}
		return p, fmt.Errorf("failed to parse preferences %s: %w", path, err)
	}
	return p, nil
}

// Path returns the file the preferences are saved to.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes the preferences, creating the config directory if needed.
func (p *Prefs) Save() error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// PresetOr returns the remembered preset, or fallback when none is stored.
func (p *Prefs) PresetOr(fallback string) string {
	if p.LastPreset == "" {
		return fallback
	}
	return p.LastPreset
}

// DPIOr returns the remembered resolution, or fallback when none is stored.
func (p *Prefs) DPIOr(fallback int) int {
	if p.DPI <= 0 {
		return fallback
	}
	return p.DPI
}
