package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Library stores user-defined presets alongside the built-in catalogue.
type Library struct {
	Presets []Config `json:"presets"`
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{Presets: make([]Config, 0)}
}

// Add validates cfg and stores it, replacing any user preset with the same id.
// Built-in ids cannot be redefined.
func (lib *Library) Add(cfg Config) error {
	if cfg.ID == "" {
		return errors.New("preset id is required")
	}
	if _, err := Lookup(cfg.ID); err == nil {
		return fmt.Errorf("preset %q is built in", cfg.ID)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	lib.Remove(cfg.ID)
	lib.Presets = append(lib.Presets, cfg)
	lib.Sort()
	return nil
}

// Sort orders the presets by name, ignoring case.
func (lib *Library) Sort() {
	sort.Slice(lib.Presets, func(i, j int) bool {
		return strings.ToLower(lib.Presets[i].Name) < strings.ToLower(lib.Presets[j].Name)
	})
}

// Remove deletes a user preset by id.
func (lib *Library) Remove(id string) {
	for i, c := range lib.Presets {
		if c.ID == id {
			lib.Presets = append(lib.Presets[:i], lib.Presets[i+1:]...)
			return
		}
	}
}

// Get returns a user preset by id.
func (lib *Library) Get(id string) (Config, bool) {
	for _, c := range lib.Presets {
		if c.ID == id {
			return c, true
		}
	}
	return Config{}, false
}

// Lookup resolves id against the built-in catalogue first, then the library.
func (lib *Library) Lookup(id string) (Config, error) {
	if cfg, err := Lookup(id); err == nil {
		return cfg, nil
	}
	if cfg, ok := lib.Get(id); ok {
		return cfg, nil
	}
	return Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
}

// LibraryPath returns <user config dir>/laser-prep/presets.json.
func LibraryPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine config directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "laser-prep", "presets.json"), nil
}

// Save writes the library to path, creating the directory if needed.
func (lib *Library) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize preset library: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write preset library: %w", err)
	}
	return nil
}

// LoadLibrary reads a library from path. A missing file yields an empty
// library. Entries that fail validation or shadow a built-in are dropped.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewLibrary(), nil
		}
		return NewLibrary(), fmt.Errorf("cannot read preset library: %w", err)
	}

	var raw Library
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewLibrary(), fmt.Errorf("cannot parse preset library: %w", err)
	}

	lib := NewLibrary()
	for _, c := range raw.Presets {
		if err := lib.Add(c); err != nil {
			continue
		}
	}
	return lib, nil
}
