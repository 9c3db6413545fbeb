package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kiesman99/splitsave/pkg/tile"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, tile.BaseDPI, cfg.DPI)
	assert.True(t, cfg.Split.Enabled)
	assert.False(t, cfg.Split.Confirm)
	assert.Equal(t, tile.DefaultPolicy(), cfg.Policy())
	assert.Equal(t, 85, cfg.Encode.Quality)
	assert.Equal(t, "localhost", cfg.Server.Bind)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "splitsave.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
output: diagram.webp
split:
  threshold: 10000
  attempts: 6
  keep-partial: true
encode:
  format: webp
  max-dimension: 8000
server:
  timeout: 1m30s
`), 0o644))

	v := newViper()
	v.SetConfigFile(file)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "diagram.webp", cfg.Output)
	assert.True(t, cfg.Split.KeepPartial)
	assert.Equal(t, tile.SplitPolicy{Threshold: 10000, MinSteps: 2, Step: 2, Attempts: 6}, cfg.Policy())
	assert.Equal(t, 8000, cfg.Encode.MaxDimension)
	assert.Equal(t, 90*time.Second, cfg.Server.Timeout)

	enc, err := cfg.Encoder("ignored.png")
	require.NoError(t, err)
	assert.Equal(t, "webp", enc.Format())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SPLITSAVE_SPLIT_MIN_STEPS", "4")
	t.Setenv("SPLITSAVE_ENCODE_QUALITY", "70")

	v := newViper()
	BindEnv(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Split.MinSteps)
	assert.Equal(t, 70, cfg.Encode.Quality)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  interface{}
	}{
		{"negative dpi", "dpi", -1},
		{"zero threshold", "split.threshold", 0},
		{"zero step", "split.step", 0},
		{"zero attempts", "split.attempts", 0},
		{"quality out of range", "encode.quality", 101},
		{"negative limit", "encode.max-pixels", -5},
		{"unknown format", "encode.format", "bmp"},
		{"bad port", "server.port", 70000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.val)

			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestEncoder_ByExtension(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	enc, err := cfg.Encoder("out/diagram.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", enc.Format())

	_, err = cfg.Encoder("out/diagram.bmp")
	assert.Error(t, err)
}
