package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"cloud_dir": "/clouds/scan1",
		"preview_size": 256,
		"format": "tga"
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/clouds/scan1", cfg.CloudDir)
	assert.Equal(t, 256, cfg.PreviewSize)
	assert.Equal(t, "tga", cfg.Format)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestResolve_Defaults(t *testing.T) {
	t.Parallel()

	cfg := Config{CloudDir: "/clouds/scan1"}
	cfg.Resolve(Flags{})

	assert.Equal(t, filepath.Join("/clouds/scan1", "previews"), cfg.OutputDir)
	assert.Equal(t, 512, cfg.PreviewSize)
	assert.Equal(t, 2, cfg.Supersample)
	assert.Equal(t, "webp", cfg.Format)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}

func TestResolve_FlagsOverride(t *testing.T) {
	t.Parallel()

	cfg := Config{CloudDir: "/a", Format: "webp", Workers: 2}
	cfg.Resolve(Flags{CloudDir: "/b", Format: "tga", Workers: 8, MaxPoints: 100})

	assert.Equal(t, "/b", cfg.CloudDir)
	assert.Equal(t, "tga", cfg.Format)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 100, cfg.MaxPoints)
}

func TestResolve_RelativeOutputDir(t *testing.T) {
	t.Parallel()

	cfg := Config{CloudDir: "/clouds/scan1", OutputDir: "out"}
	cfg.Resolve(Flags{})
	assert.Equal(t, filepath.Join("/clouds/scan1", "out"), cfg.OutputDir)
}

func TestNormalizeFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "webp", NormalizeFormat(""))
	assert.Equal(t, "webp", NormalizeFormat("WEBP"))
	assert.Equal(t, "webp", NormalizeFormat("png"))
	assert.Equal(t, "tga", NormalizeFormat("TGA"))
}
