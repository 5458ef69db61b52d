package contract

import (
	"fmt"
	"maps"
	"math"
	"runtime"
	"strings"

	"github.com/supplelab/tierank/schema"
)

// Default values for configuration.
const (
	DefaultPrecision               = 1
	DefaultTrimPercent             = 5.0
	MaxTrimPercent                 = 25.0
	DefaultDistributionTarget      = 10.0
	DefaultDistributionTolerance   = 10.0
	DefaultDistributionMinProducts = 10
)

// DefaultWorkers is the default number of concurrent partition workers.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// WeightsRawInput holds custom axis weights from the YAML config file.
// Pointers distinguish an omitted axis from an explicit zero.
type WeightsRawInput struct {
	Price             *float64 `mapstructure:"price"`
	CostEffectiveness *float64 `mapstructure:"cost_effectiveness"`
	Content           *float64 `mapstructure:"content"`
	Evidence          *float64 `mapstructure:"evidence"`
	Safety            *float64 `mapstructure:"safety"`
}

// Config holds the runtime configuration for ranking and auditing.
// This struct is the "final, validated" config.
type Config struct {
	CatalogPatterns []string
	Workers         int
	Precision       int
	Output          schema.OutputMode
	OutputFile      string
	Width           int // Terminal width override (0 = auto-detect)
	UseColors       bool

	TrimPercent      float64
	RawScoreFallback bool

	DistributionTarget      float64 // expected share of S grades per axis, in percent
	DistributionTolerance   float64 // allowed deviation from the target, in percentage points
	DistributionMinProducts int     // axes with fewer graded products skip the distribution check

	Verbose bool
	Fix     bool
	Strict  bool
	RunID   int64 // 0 = latest run

	SnapshotBackend   schema.DatabaseBackend
	SnapshotDBConnect string // Please use env var as this is plaintext

	RankBackend   schema.DatabaseBackend
	RankDBConnect string // Please use env var as this is plaintext

	MetricsDir string // node_exporter textfile collector directory

	// CustomWeights holds only the axes overridden in the config file.
	CustomWeights map[schema.Axis]float64

	// Weights is the final weights map, computed from defaults + custom overrides.
	Weights map[schema.Axis]float64

	// EvidenceScores maps an evidence label to its 0..100 axis value.
	EvidenceScores map[schema.EvidenceLevel]float64
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	CatalogArgs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Catalog                 string  `mapstructure:"catalog"`
	Output                  string  `mapstructure:"output"`
	OutputFile              string  `mapstructure:"output-file"`
	Precision               int     `mapstructure:"precision"`
	Workers                 int     `mapstructure:"workers"`
	Width                   int     `mapstructure:"width"`
	Color                   string  `mapstructure:"color"`
	TrimPercent             float64 `mapstructure:"trim-percent"`
	RawScoreFallback        string  `mapstructure:"raw-score-fallback"`
	DistributionTarget      float64 `mapstructure:"distribution-target"`
	DistributionTolerance   float64 `mapstructure:"distribution-tolerance"`
	DistributionMinProducts int     `mapstructure:"distribution-min-products"`
	SnapshotBackend         string  `mapstructure:"snapshot-backend"`
	SnapshotDBConnect       string  `mapstructure:"snapshot-db-connect"`
	RankBackend             string  `mapstructure:"rank-backend"`
	RankDBConnect           string  `mapstructure:"rank-db-connect"`
	MetricsDir              string  `mapstructure:"metrics-dir"`

	// --- Fields from auditCmd.Flags() ---
	Verbose bool  `mapstructure:"verbose"`
	Fix     bool  `mapstructure:"fix"`
	Strict  bool  `mapstructure:"strict"`
	RunID   int64 `mapstructure:"run-id"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`

	// --- Evidence label overrides from config file ---
	EvidenceLevels map[string]float64 `mapstructure:"evidence_levels"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.CatalogPatterns != nil {
		clone.CatalogPatterns = make([]string, len(c.CatalogPatterns))
		copy(clone.CatalogPatterns, c.CatalogPatterns)
	}
	if c.CustomWeights != nil {
		clone.CustomWeights = maps.Clone(c.CustomWeights)
	}
	if c.Weights != nil {
		clone.Weights = maps.Clone(c.Weights)
	}
	if c.EvidenceScores != nil {
		clone.EvidenceScores = maps.Clone(c.EvidenceScores)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processRankingOptions(cfg, input); err != nil {
		return err
	}
	if err := processAuditOptions(cfg, input); err != nil {
		return err
	}
	if err := processCustomWeights(cfg, input); err != nil {
		return err
	}
	if err := processEvidenceLevels(cfg, input); err != nil {
		return err
	}
	processCatalogPatterns(cfg, input)
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseBackend lowercases and validates a backend name. Empty means none.
func ParseBackend(name string) (schema.DatabaseBackend, error) {
	if name == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(name))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", name)
	}
	return backend, nil
}

// validateBackendConfigs validates snapshot and rank backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Snapshot Backend Validation ---
	backend, err := ParseBackend(input.SnapshotBackend)
	if err != nil {
		return fmt.Errorf("snapshot-backend: %w", err)
	}
	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = input.SnapshotDBConnect
	if err := ValidateDatabaseConnectionString(cfg.SnapshotBackend, cfg.SnapshotDBConnect); err != nil {
		return err
	}

	// --- Rank Backend Validation ---
	backend, err = ParseBackend(input.RankBackend)
	if err != nil {
		return fmt.Errorf("rank-backend: %w", err)
	}
	cfg.RankBackend = backend
	cfg.RankDBConnect = input.RankDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RankBackend, cfg.RankDBConnect); err != nil {
		return err
	}

	// Snapshot and rank tables live in separate SQLite files
	if cfg.SnapshotBackend == schema.SQLiteBackend && cfg.RankBackend == schema.SQLiteBackend {
		snapshotPath := cfg.SnapshotDBConnect
		if snapshotPath == "" {
			snapshotPath = GetSnapshotDBFilePath()
		}
		rankPath := cfg.RankDBConnect
		if rankPath == "" {
			rankPath = GetRankDBFilePath()
		}
		if snapshotPath == rankPath && snapshotPath != ":memory:" {
			return fmt.Errorf("snapshot and rank storage must use different SQLite database files. Both resolve to %q", snapshotPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates output and worker settings.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.MetricsDir = input.MetricsDir

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	return validateBackendConfigs(cfg, input)
}

// processRankingOptions validates trimming and the raw score fallback.
func processRankingOptions(cfg *Config, input *ConfigRawInput) error {
	if err := ValidateTrimPercent(input.TrimPercent); err != nil {
		return err
	}
	cfg.TrimPercent = input.TrimPercent

	fallback, err := ParseBoolString(input.RawScoreFallback)
	if err != nil {
		return fmt.Errorf("invalid --raw-score-fallback value: %w", err)
	}
	cfg.RawScoreFallback = fallback
	return nil
}

// processAuditOptions validates the distribution band and the audit flags.
func processAuditOptions(cfg *Config, input *ConfigRawInput) error {
	if input.DistributionTarget < 0 || input.DistributionTarget > 100 {
		return fmt.Errorf("distribution-target must be between 0 and 100 (received %.2f)", input.DistributionTarget)
	}
	if input.DistributionTolerance < 0 || input.DistributionTolerance > 100 {
		return fmt.Errorf("distribution-tolerance must be between 0 and 100 (received %.2f)", input.DistributionTolerance)
	}
	if input.DistributionMinProducts < 1 {
		return fmt.Errorf("distribution-min-products must be at least 1 (received %d)", input.DistributionMinProducts)
	}
	if input.RunID < 0 {
		return fmt.Errorf("run-id must not be negative (received %d)", input.RunID)
	}
	cfg.DistributionTarget = input.DistributionTarget
	cfg.DistributionTolerance = input.DistributionTolerance
	cfg.DistributionMinProducts = input.DistributionMinProducts
	cfg.Verbose = input.Verbose
	cfg.Fix = input.Fix
	cfg.Strict = input.Strict
	cfg.RunID = input.RunID
	return nil
}

// ValidateTrimPercent checks that a tail trim share is within 0..MaxTrimPercent.
// It is also used by callers that override the trim share after startup.
func ValidateTrimPercent(trim float64) error {
	if math.IsNaN(trim) || trim < 0 || trim > MaxTrimPercent {
		return fmt.Errorf("trim-percent must be between 0 and %.0f (received %v)", MaxTrimPercent, trim)
	}
	return nil
}

// ProcessWeightsRawInput converts WeightsRawInput into a map holding only the provided axes.
func ProcessWeightsRawInput(weights WeightsRawInput) (map[schema.Axis]float64, error) {
	raw := map[schema.Axis]*float64{
		schema.AxisPrice:             weights.Price,
		schema.AxisCostEffectiveness: weights.CostEffectiveness,
		schema.AxisContent:           weights.Content,
		schema.AxisEvidence:          weights.Evidence,
		schema.AxisSafety:            weights.Safety,
	}

	result := make(map[schema.Axis]float64)
	for _, axis := range schema.AllAxes {
		w := raw[axis]
		if w == nil {
			continue
		}
		if *w < 0 || math.IsNaN(*w) {
			return nil, fmt.Errorf("weight for axis %s must not be negative, got %v", axis, *w)
		}
		result[axis] = *w
	}
	return result, nil
}

// processCustomWeights merges the custom weights over the defaults and checks
// that the final weights sum to 1.0.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	custom, err := ProcessWeightsRawInput(input.Weights)
	if err != nil {
		return err
	}
	cfg.CustomWeights = custom

	weights := schema.GetDefaultWeights()
	maps.Copy(weights, custom)

	sum := 0.0
	for _, axis := range schema.AllAxes {
		sum += weights[axis]
	}
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("axis weights must sum to 1.0, got %.3f", sum)
	}
	cfg.Weights = weights
	return nil
}

// processEvidenceLevels overlays configured label scores on the defaults.
func processEvidenceLevels(cfg *Config, input *ConfigRawInput) error {
	scores := make(map[schema.EvidenceLevel]float64, len(schema.DefaultEvidenceScores))
	maps.Copy(scores, schema.DefaultEvidenceScores)

	for label, score := range input.EvidenceLevels {
		key := schema.EvidenceLevel(strings.ToLower(strings.TrimSpace(label)))
		if key == "" {
			return fmt.Errorf("evidence level labels must not be empty")
		}
		if score < 0 || score > 100 || math.IsNaN(score) {
			return fmt.Errorf("evidence score for %q must be between 0 and 100 (received %v)", label, score)
		}
		scores[key] = score
	}
	cfg.EvidenceScores = scores
	return nil
}

// processCatalogPatterns combines positional catalog arguments with the catalog key.
// Positional arguments take precedence.
func processCatalogPatterns(cfg *Config, input *ConfigRawInput) {
	cfg.CatalogPatterns = nil
	if len(input.CatalogArgs) > 0 {
		cfg.CatalogPatterns = append(cfg.CatalogPatterns, input.CatalogArgs...)
		return
	}
	for p := range strings.SplitSeq(input.Catalog, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cfg.CatalogPatterns = append(cfg.CatalogPatterns, trimmed)
		}
	}
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
