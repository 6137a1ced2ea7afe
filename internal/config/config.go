// Package config persists mdictcli's user-facing settings: which
// dictionary directory to read from, which .mdx/.mdd/.css files inside it
// to use, and display preferences for rendered definitions.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DisplaySettings controls how internal/render formats a definition.
type DisplaySettings struct {
	FontFamily string `json:"font_family"`
	FontSize   string `json:"font_size"`
	LineHeight string `json:"line_height"`
}

// AppConfig is the persisted configuration. Desktop-only concerns (hotkey,
// clipboard monitor, window geometry) have no place here.
type AppConfig struct {
	DictionaryPath string          `json:"dictionary_path"`
	MdxFile        string          `json:"mdx_file,omitempty"`
	MddFile        string          `json:"mdd_file,omitempty"`
	CSSFile        string          `json:"css_file,omitempty"`
	Display        DisplaySettings `json:"display"`
}

// Default returns the configuration used when no config file exists yet.
func Default() AppConfig {
	return AppConfig{
		Display: DisplaySettings{
			FontFamily: "Segoe UI",
			FontSize:   "14",
			LineHeight: "1.6",
		},
	}
}

// Dir returns the directory mdictcli stores its config file in, under the
// OS's standard per-user config directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "mdictcli"), nil
}

// File returns the full path to the config file.
func File() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file, returning Default() if it does not exist yet.
func Load() (AppConfig, error) {
	path, err := File()
	if err != nil {
		return AppConfig{}, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return AppConfig{}, errors.Wrap(err, "config: read")
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, errors.Wrap(err, "config: parse")
	}
	return cfg, nil
}

// Save writes the config file, creating its directory if necessary.
func (c AppConfig) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "config: create directory")
	}

	path, err := File()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "config: encode")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "config: write")
	}
	return nil
}

// WithDictionaryDir sets DictionaryPath and auto-detects the .mdx/.mdd/.css
// files inside it.
func (c AppConfig) WithDictionaryDir(dir string) (AppConfig, error) {
	c.DictionaryPath = dir
	detected, err := DetectDictionaryFiles(dir)
	if err != nil {
		return AppConfig{}, err
	}
	c.MdxFile = detected.MdxFile
	c.MddFile = detected.MddFile
	c.CSSFile = detected.CSSFile
	return c, nil
}

// DetectedFiles holds the dictionary-related files found in a directory.
type DetectedFiles struct {
	MdxFile string
	MddFile string
	CSSFile string
}

// DetectDictionaryFiles scans dir for the first .mdx, .mdd, and .css files
// it finds, so a user can point the tool at a directory instead of naming
// files individually.
func DetectDictionaryFiles(dir string) (DetectedFiles, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return DetectedFiles{}, errors.Wrap(err, "config: scan dictionary directory")
	}

	var found DetectedFiles
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		switch filepath.Ext(entry.Name()) {
		case ".mdx":
			if found.MdxFile == "" {
				found.MdxFile = full
			}
		case ".mdd":
			if found.MddFile == "" {
				found.MddFile = full
			}
		case ".css":
			if found.CSSFile == "" {
				found.CSSFile = full
			}
		}
	}
	return found, nil
}
