package pathtracer

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/pathtracer/pathtrace/rt/bvh"
	"github.com/gekko3d/pathtracer/pathtrace/rt/uniforms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, bvh.Options{MaxLeafSize: 4, BucketCount: 16}, cfg.BVH)
	assert.Equal(t, uniforms.DefaultCapacity(), cfg.Capacity)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Window.VSync)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pt.yaml")
	yml := `
window:
  title: From File
bvh:
  max_leaf_size: 8
  bucket_number: 32
capacity:
  lights: 16
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-config", path, "-debug", "-buckets", "8"}))

	cfg, err := LoadConfig(flags)
	require.NoError(t, err)

	assert.Equal(t, "From File", cfg.Window.Title)
	assert.Equal(t, 8, cfg.BVH.MaxLeafSize, "file overrides defaults")
	assert.Equal(t, 8, cfg.BVH.BucketCount, "flags override the file")
	assert.Equal(t, 16, cfg.Capacity.Lights)
	assert.Equal(t, 131072, cfg.Capacity.BVHNodes, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bvh:\n  bucket_number: 1\n"), 0644))

	_, err := LoadConfig(&Flags{ConfigPath: path})
	require.ErrorIs(t, err, bvh.ErrInvalidBucketCount)

	require.NoError(t, os.WriteFile(path, []byte("capacity:\n  objects: 0\n"), 0644))
	_, err = LoadConfig(&Flags{ConfigPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity.objects")

	_, err = LoadConfig(&Flags{ConfigPath: filepath.Join(dir, "missing.yaml")})
	require.Error(t, err)
}

func TestValidateReportsFirstBadCapacity(t *testing.T) {
	for range 20 {
		cfg := DefaultConfig()
		cfg.Capacity.Vertices = 0
		cfg.Capacity.Lights = -1
		cfg.Capacity.Objects = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, "config: capacity.vertices must be positive, got 0", err.Error())
	}
}

func TestConfigSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pt.yaml")
	cfg := DefaultConfig()
	cfg.BVH.ParallelAxes = true
	cfg.Window.Title = "saved"
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadConfig(&Flags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
