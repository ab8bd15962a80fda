package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 92, c.EncodingQuality)
	assert.Equal(t, 80, c.PreviewQuality)
	assert.Equal(t, 30.0, c.PreviewFPS)
	assert.Equal(t, runtime.NumCPU(), c.Workers)
	assert.Equal(t, 0.05, c.MinCropSize)
	assert.Equal(t, DefaultServerAddr, c.ServerAddr)
	assert.Equal(t, "presets", filepath.Base(c.PresetDir))
	assert.Equal(t, "facefinder", filepath.Base(c.FaceModel))
	assert.Empty(t, c.Tuning)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("PartialFileKeepsDefaults", func(t *testing.T) {
		path := filepath.Join(dir, "partial.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"encoding_quality": 75, "tuning": {"channel_width": 0.2}}`), 0644))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 75, c.EncodingQuality)
		assert.Equal(t, 80, c.PreviewQuality)
		assert.JSONEq(t, `{"channel_width": 0.2}`, string(c.Tuning))
	})

	t.Run("InvalidValuesFallBack", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"encoding_quality": 400, "workers": -1, "preview_fps": 0, "min_crop_size": 3, "server_addr": ""}`), 0644))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 92, c.EncodingQuality)
		assert.Equal(t, runtime.NumCPU(), c.Workers)
		assert.Equal(t, 30.0, c.PreviewFPS)
		assert.Equal(t, 0.05, c.MinCropSize)
		assert.Equal(t, DefaultServerAddr, c.ServerAddr)
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.json"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	c := Default()
	c.EncodingQuality = 88
	c.ServerAddr = "127.0.0.1:9000"
	require.NoError(t, c.SaveTo(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 88, loaded.EncodingQuality)
	assert.Equal(t, "127.0.0.1:9000", loaded.ServerAddr)
}

func TestGetFilename(t *testing.T) {
	assert.Equal(t, "config.json", filepath.Base(GetFilename()))
	assert.Equal(t, ".halook", filepath.Base(GetPath()))
}
