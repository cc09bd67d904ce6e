package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Default(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 1800, cfg.TStdSeconds)
	assert.Equal(t, 2, cfg.KCL)
	assert.Equal(t, "standard", cfg.DetStrategy)
}

func Test_Load_missingPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func Test_Load_fromFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "prins-*.toml")
	assert.NoError(t, err)
	_, err = f.WriteString("workers = 8\nk_cl = 3\ndet_strategy = \"hybrid-1\"\n")
	assert.NoError(t, err)
	assert.NoError(t, f.Close())

	cfg, err := Load(f.Name())
	assert.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 3, cfg.KCL)
	assert.Equal(t, "hybrid-1", cfg.DetStrategy)
	// fields absent from the file keep Default()'s value
	assert.Equal(t, 1800, cfg.TStdSeconds)
}

func Test_ApplyEnv_overridesDefaultValue(t *testing.T) {
	os.Setenv(EnvWorkers, "6")
	defer os.Unsetenv(EnvWorkers)

	cfg, err := Default().ApplyEnv()
	assert.NoError(t, err)
	assert.Equal(t, 6, cfg.Workers)
}

func Test_ParseStrategy(t *testing.T) {
	name, k, err := ParseStrategy("standard")
	assert.NoError(t, err)
	assert.Equal(t, "standard", name)
	assert.Equal(t, 0, k)

	name, k, err = ParseStrategy("heuristic")
	assert.NoError(t, err)
	assert.Equal(t, "heuristic", name)

	name, k, err = ParseStrategy("hybrid-3")
	assert.NoError(t, err)
	assert.Equal(t, "hybrid", name)
	assert.Equal(t, 3, k)

	name, k, err = ParseStrategy("hybrid-inf")
	assert.NoError(t, err)
	assert.Equal(t, "hybrid", name)
	assert.Equal(t, -1, k)

	_, _, err = ParseStrategy("nonsense")
	assert.Error(t, err)
}
