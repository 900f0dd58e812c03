package qc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`
spike:
  window: 7
  thresh: 4.5
flatline:
  window: 5
  tol: 0.001
`))
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Spike.Window)
		assert.Equal(t, 4.5, cfg.Spike.Thresh)
		assert.Equal(t, 5, cfg.Flatline.Window)
		assert.Equal(t, 0.001, cfg.Flatline.Tol)
	})

	t.Run("missing keys fall back to defaults", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("spike:\n  thresh: 3.0\n"))
		require.NoError(t, err)
		assert.Equal(t, DefaultSpikeWindow, cfg.Spike.Window)
		assert.Equal(t, 3.0, cfg.Spike.Thresh)
		assert.Equal(t, DefaultFlatlineWindow, cfg.Flatline.Window)
		assert.Equal(t, DefaultFlatlineTol, cfg.Flatline.Tol)
	})

	t.Run("even windows widened to odd", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("spike:\n  window: 10\nflatline:\n  window: 8\n"))
		require.NoError(t, err)
		assert.Equal(t, 11, cfg.Spike.Window)
		assert.Equal(t, 9, cfg.Flatline.Window)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := ParseConfig([]byte("{nope"))
		require.Error(t, err)
	})
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spike:\n  thresh: 8\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8.0, cfg.Spike.Thresh)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultSpikeWindow, cfg.Spike.Window)
	assert.Equal(t, DefaultSpikeThresh, cfg.Spike.Thresh)
	assert.Equal(t, DefaultFlatlineWindow, cfg.Flatline.Window)
	assert.Equal(t, DefaultFlatlineTol, cfg.Flatline.Tol)
}
