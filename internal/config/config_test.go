package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfmorais/expede/internal/logger"
)

func TestExportImportRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Speech.VoiceName = "pt-BR-FranciscaNeural"
	cfg.Speech.RepeatCount = 3
	cfg.AutoExpedite.Minutes = 25
	cfg.Columns.Ticker.Visible = false

	data, err := Export(cfg)
	require.NoError(t, err)

	got, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, got, "round-trip must reconstruct an equivalent config")
}

func TestImportPartialKeepsDefaults(t *testing.T) {
	got, err := Import([]byte(`{"speech":{"enabled":false},"autoExpedite":{"minutes":5}}`))
	require.NoError(t, err)

	assert.False(t, got.Speech.Enabled)
	assert.Equal(t, 5, got.AutoExpedite.Minutes)

	// Untouched keys keep their defaults.
	def := Defaults()
	assert.Equal(t, def.Speech.Template, got.Speech.Template)
	assert.Equal(t, def.Colors, got.Colors)
	assert.Equal(t, def.Columns, got.Columns)
	assert.True(t, got.AutoExpedite.Enabled, "sibling key must survive a partial section")
}

func TestImportIgnoresUnknownKeys(t *testing.T) {
	got, err := Import([]byte(`{"legacySetting":true,"colors":{"text":"#ffffff"}}`))
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", got.Colors.Text)
}

func TestImportCorruptFallsBack(t *testing.T) {
	got, err := Import([]byte(`{not json`))
	assert.Error(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestLoad(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	dir := t.TempDir()

	t.Run("missing file yields defaults", func(t *testing.T) {
		got := Load(filepath.Join(dir, "nope.json"), log)
		assert.Equal(t, Defaults(), got)
	})

	t.Run("corrupt file yields defaults", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o644))
		got := Load(path, log)
		assert.Equal(t, Defaults(), got)
	})

	t.Run("save then load", func(t *testing.T) {
		path := filepath.Join(dir, "sub", "panel.json")
		cfg := Defaults()
		cfg.Sound.Kind = "bell"
		require.NoError(t, Save(path, cfg))

		got := Load(path, log)
		assert.Equal(t, cfg, got)
	})
}
