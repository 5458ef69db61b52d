package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplelab/tierank/schema"
)

// validInput returns raw input equivalent to the command-line defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Output:                  "text",
		Precision:               DefaultPrecision,
		Workers:                 4,
		Color:                   "yes",
		TrimPercent:             DefaultTrimPercent,
		RawScoreFallback:        "yes",
		DistributionTarget:      DefaultDistributionTarget,
		DistributionTolerance:   DefaultDistributionTolerance,
		DistributionMinProducts: DefaultDistributionMinProducts,
		SnapshotBackend:         string(schema.SQLiteBackend),
		RankBackend:             string(schema.SQLiteBackend),
	}
}

func ptr(v float64) *float64 { return &v }

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid defaults", modify: func(*ConfigRawInput) {}},
		{name: "invalid output", modify: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet output", modify: func(in *ConfigRawInput) { in.Output = "PARQUET" }},
		{name: "zero workers", modify: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: true},
		{name: "precision too high", modify: func(in *ConfigRawInput) { in.Precision = 3 }, expectError: true},
		{name: "invalid color", modify: func(in *ConfigRawInput) { in.Color = "sometimes" }, expectError: true},
		{name: "trim disabled", modify: func(in *ConfigRawInput) { in.TrimPercent = 0 }},
		{name: "negative trim", modify: func(in *ConfigRawInput) { in.TrimPercent = -1 }, expectError: true},
		{name: "trim too high", modify: func(in *ConfigRawInput) { in.TrimPercent = 30 }, expectError: true},
		{name: "invalid fallback", modify: func(in *ConfigRawInput) { in.RawScoreFallback = "perhaps" }, expectError: true},
		{name: "distribution target above 100", modify: func(in *ConfigRawInput) { in.DistributionTarget = 101 }, expectError: true},
		{name: "negative tolerance", modify: func(in *ConfigRawInput) { in.DistributionTolerance = -5 }, expectError: true},
		{name: "min products zero", modify: func(in *ConfigRawInput) { in.DistributionMinProducts = 0 }, expectError: true},
		{name: "negative run id", modify: func(in *ConfigRawInput) { in.RunID = -2 }, expectError: true},
		{name: "invalid snapshot backend", modify: func(in *ConfigRawInput) { in.SnapshotBackend = "redis" }, expectError: true},
		{name: "invalid rank backend", modify: func(in *ConfigRawInput) { in.RankBackend = "mongo" }, expectError: true},
		{
			name: "mysql backend without connection string",
			modify: func(in *ConfigRawInput) {
				in.RankBackend = string(schema.MySQLBackend)
			},
			expectError: true,
		},
		{
			name: "mysql backend with connection string",
			modify: func(in *ConfigRawInput) {
				in.RankBackend = string(schema.MySQLBackend)
				in.RankDBConnect = "user:pass@tcp(localhost:3306)/tierank"
			},
		},
		{
			name: "postgresql backend missing dbname",
			modify: func(in *ConfigRawInput) {
				in.SnapshotBackend = string(schema.PostgreSQLBackend)
				in.SnapshotDBConnect = "host=localhost port=5432"
			},
			expectError: true,
		},
		{
			name: "same sqlite file for both stores",
			modify: func(in *ConfigRawInput) {
				in.SnapshotDBConnect = "/tmp/tierank.db"
				in.RankDBConnect = "/tmp/tierank.db"
			},
			expectError: true,
		},
		{
			name: "in-memory sqlite for both stores",
			modify: func(in *ConfigRawInput) {
				in.SnapshotDBConnect = ":memory:"
				in.RankDBConnect = ":memory:"
			},
		},
		{
			name: "none backends",
			modify: func(in *ConfigRawInput) {
				in.SnapshotBackend = string(schema.NoneBackend)
				in.RankBackend = ""
			},
		},
		{
			name: "custom weights summing to one",
			modify: func(in *ConfigRawInput) {
				in.Weights = WeightsRawInput{Price: ptr(0.25), CostEffectiveness: ptr(0.05)}
			},
		},
		{
			name: "custom weights not summing to one",
			modify: func(in *ConfigRawInput) {
				in.Weights = WeightsRawInput{Evidence: ptr(0.9)}
			},
			expectError: true,
		},
		{
			name: "negative weight",
			modify: func(in *ConfigRawInput) {
				in.Weights = WeightsRawInput{Content: ptr(-0.1), Price: ptr(0.35)}
			},
			expectError: true,
		},
		{
			name: "evidence score out of range",
			modify: func(in *ConfigRawInput) {
				in.EvidenceLevels = map[string]float64{"high": 120}
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.modify(input)

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)

			if tt.expectError {
				assert.Error(t, err, "ProcessAndValidate should return an error for %s", tt.name)
			} else {
				assert.NoError(t, err, "ProcessAndValidate should not return an error for %s", tt.name)
				assert.Equal(t, input.Workers, cfg.Workers)
				assert.Len(t, cfg.Weights, len(schema.AllAxes))
			}
		})
	}
}

func TestProcessAndValidate_MergesWeights(t *testing.T) {
	input := validInput()
	input.Weights = WeightsRawInput{Price: ptr(0.25), CostEffectiveness: ptr(0.05)}

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, map[schema.Axis]float64{schema.AxisPrice: 0.25, schema.AxisCostEffectiveness: 0.05}, cfg.CustomWeights)
	assert.Equal(t, 0.25, cfg.Weights[schema.AxisPrice])
	assert.Equal(t, 0.05, cfg.Weights[schema.AxisCostEffectiveness])
	assert.Equal(t, 0.30, cfg.Weights[schema.AxisEvidence])
}

func TestProcessAndValidate_EvidenceLevels(t *testing.T) {
	input := validInput()
	input.EvidenceLevels = map[string]float64{" High ": 90, "preclinical": 10}

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, 90.0, cfg.EvidenceScores[schema.EvidenceHigh])
	assert.Equal(t, 10.0, cfg.EvidenceScores["preclinical"])
	assert.Equal(t, 75.0, cfg.EvidenceScores[schema.EvidenceModerate])
	assert.Equal(t, 100.0, schema.DefaultEvidenceScores[schema.EvidenceHigh], "defaults must not be mutated")
}

func TestProcessAndValidate_CatalogPatterns(t *testing.T) {
	t.Run("config key split on commas", func(t *testing.T) {
		input := validInput()
		input.Catalog = "catalog/*.yaml, extra/**/*.json,"

		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, []string{"catalog/*.yaml", "extra/**/*.json"}, cfg.CatalogPatterns)
	})

	t.Run("positional args win", func(t *testing.T) {
		input := validInput()
		input.Catalog = "catalog/*.yaml"
		input.CatalogArgs = []string{"products.json"}

		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, []string{"products.json"}, cfg.CatalogPatterns)
	})
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))
	cfg.CatalogPatterns = []string{"a.yaml"}

	clone := cfg.Clone()
	clone.CatalogPatterns[0] = "b.yaml"
	clone.Weights[schema.AxisPrice] = 0.99
	clone.EvidenceScores[schema.EvidenceLow] = 1

	assert.Equal(t, "a.yaml", cfg.CatalogPatterns[0])
	assert.Equal(t, 0.15, cfg.Weights[schema.AxisPrice])
	assert.Equal(t, 50.0, cfg.EvidenceScores[schema.EvidenceLow])
}

func TestParseBackend(t *testing.T) {
	backend, err := ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, schema.NoneBackend, backend)

	backend, err = ParseBackend("SQLite")
	require.NoError(t, err)
	assert.Equal(t, schema.SQLiteBackend, backend)

	_, err = ParseBackend("oracle")
	assert.Error(t, err)
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "tierank"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "tierank", profile.Prefix)
}
