package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sea-shanty-2/clustering/errors"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestTimelessSkipsDecayValidation(t *testing.T) {
	cfg := Default()
	cfg.Variant = VariantTimeless
	cfg.DecayLambda = 0
	cfg.WeightThreshold = 0
	cfg.PruneInterval = 0
	require.NoError(t, cfg.Validate())
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Engine)
	}{
		{"unknown variant", func(c *Engine) { c.Variant = "sideways" }},
		{"zero max radius", func(c *Engine) { c.MaxRadius = 0 }},
		{"negative eps", func(c *Engine) { c.Eps = -1 }},
		{"negative min points", func(c *Engine) { c.MinPoints = -1 }},
		{"negative queue capacity", func(c *Engine) { c.QueueCapacity = -1 }},
		{"zero lambda", func(c *Engine) { c.DecayLambda = 0 }},
		{"zero weight threshold", func(c *Engine) { c.WeightThreshold = 0 }},
		{"prune above weight threshold", func(c *Engine) { c.PruneThreshold = c.WeightThreshold }},
		{"zero prune interval", func(c *Engine) { c.PruneInterval = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"30s"`), &d))
	assert.Equal(t, 30*time.Second, d.Std())

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.Std())

	require.Error(t, json.Unmarshal([]byte(`"not a duration"`), &d))
	require.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(out))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.json")

	body := `{
		"variant": "timeless",
		"max_radius": 4.5,
		"eps": 9,
		"min_points": 3,
		"prune_interval": "10s"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, VariantTimeless, cfg.Variant)
	assert.Equal(t, 4.5, cfg.MaxRadius)
	assert.Equal(t, 9.0, cfg.Eps)
	assert.Equal(t, 3, cfg.MinPoints)
	assert.Equal(t, 10*time.Second, cfg.PruneInterval.Std())
	// Unset fields keep defaults.
	assert.Equal(t, Default().QueueCapacity, cfg.QueueCapacity)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = Load(path)
	require.Error(t, err)

	path = filepath.Join(t.TempDir(), "invalid.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_radius": -1}`), 0o600))
	_, err = Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}
