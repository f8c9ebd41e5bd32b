// Package config holds the panel configuration: a pure value object
// consumed by the display and the notification policy. Persisted
// configs are deep-merged against compiled-in defaults on load so a
// partial or older file never breaks the renderer.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lfmorais/expede/internal/logger"
)

// PanelConfig drives rendering and notification policy. No behavior,
// no invariants beyond shape; clamping of numeric inputs is the
// input-control's concern, not storage's.
type PanelConfig struct {
	Columns      ColumnsConfig      `json:"columns"`
	Colors       ColorsConfig       `json:"colors"`
	Fonts        FontsConfig        `json:"fonts"`
	Sound        SoundConfig        `json:"sound"`
	Speech       SpeechConfig       `json:"speech"`
	AutoExpedite AutoExpediteConfig `json:"autoExpedite"`
}

// ColumnConfig sizes and toggles one panel column.
type ColumnConfig struct {
	Visible bool `json:"visible"`
	Weight  int  `json:"weight"` // relative width share
}

// ColumnsConfig holds the per-column layout settings.
type ColumnsConfig struct {
	Production ColumnConfig `json:"production"`
	Ready      ColumnConfig `json:"ready"`
	LastReady  ColumnConfig `json:"lastReady"`
	Ticker     ColumnConfig `json:"ticker"`
}

// ColorsConfig holds the panel palette as hex strings.
type ColorsConfig struct {
	Background string `json:"background"`
	Production string `json:"production"`
	Ready      string `json:"ready"`
	LastReady  string `json:"lastReady"`
	AutoSweep  string `json:"autoSweep"`
	Text       string `json:"text"`
}

// FontsConfig holds relative text sizing.
type FontsConfig struct {
	CardScale      int `json:"cardScale"`
	LastReadyScale int `json:"lastReadyScale"`
}

// SoundConfig selects the notification sound.
type SoundConfig struct {
	Kind string `json:"kind"` // chime | chime2 | bell | file
	File string `json:"file"` // WAV path, used when kind == file
}

// SpeechConfig is the announcement policy.
type SpeechConfig struct {
	Enabled        bool    `json:"enabled"`
	Template       string  `json:"template"` // number_only | name_ready | order_ready | name_order_ready | custom
	CustomTemplate string  `json:"customTemplate"`
	VoiceName      string  `json:"voiceName"`
	Locale         string  `json:"locale"`
	Rate           float64 `json:"rate"`
	Pitch          float64 `json:"pitch"`
	Volume         float64 `json:"volume"`
	RepeatCount    int     `json:"repeatCount"`
	RepeatSeconds  int     `json:"repeatSeconds"`
}

// AutoExpediteConfig controls the stale-order sweep.
type AutoExpediteConfig struct {
	Enabled bool `json:"enabled"`
	Minutes int  `json:"minutes"`
}

// Defaults returns the compiled-in configuration.
func Defaults() PanelConfig {
	return PanelConfig{
		Columns: ColumnsConfig{
			Production: ColumnConfig{Visible: true, Weight: 2},
			Ready:      ColumnConfig{Visible: true, Weight: 2},
			LastReady:  ColumnConfig{Visible: true, Weight: 3},
			Ticker:     ColumnConfig{Visible: true, Weight: 1},
		},
		Colors: ColorsConfig{
			Background: "#18181b",
			Production: "#fde68a",
			Ready:      "#bbf7d0",
			LastReady:  "#bae6fd",
			AutoSweep:  "#fca5a5",
			Text:       "#d4d4d8",
		},
		Fonts: FontsConfig{
			CardScale:      1,
			LastReadyScale: 3,
		},
		Sound: SoundConfig{Kind: "chime2"},
		Speech: SpeechConfig{
			Enabled:  true,
			Template: "number_only",
			Locale:   "pt-BR",
			Rate:     1.0,
			Pitch:    1.0,
			Volume:   1.0,
		},
		AutoExpedite: AutoExpediteConfig{
			Enabled: true,
			Minutes: 10,
		},
	}
}

// Load reads the config file at path, merged over defaults. A missing
// file yields plain defaults; a corrupt file is discarded with a
// warning — startup never fails on configuration.
func Load(path string, log *logger.Logger) PanelConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("config: reading %s: %v (using defaults)", path, err)
		}
		return Defaults()
	}

	cfg, err := Import(data)
	if err != nil {
		log.Warn("config: %s is corrupt: %v (using defaults)", path, err)
		return Defaults()
	}
	return cfg
}

// Save writes the config as indented JSON, creating parent
// directories as needed.
func Save(path string, cfg PanelConfig) error {
	data, err := Export(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Export serializes the config to JSON.
func Export(cfg PanelConfig) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// Import parses JSON over the defaults: keys present override, keys
// missing keep their default, unknown keys are ignored.
func Import(data []byte) (PanelConfig, error) {
	cfg := Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
