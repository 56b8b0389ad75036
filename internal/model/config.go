package model

import (
	"time"
)

// Defaults shared across the pipeline.
const (
	DefaultOwnershipYears = 5
	DefaultTopN           = 10

	// DefaultReliability is the mid-scale fallback used when a vehicle has no
	// complaint history and the dataset supplied no usable reliability score.
	DefaultReliability = 0.5
)

// Config is the immutable configuration for one pipeline. Constructed once,
// passed by pointer, never mutated; concurrent pipelines may each carry their
// own copy with different weights.
type Config struct {
	ReferenceYear int                `yaml:"reference_year"` // model year treated as "now" for age math
	Data          DataConfig         `yaml:"data"`
	Weights       WeightConfig       `yaml:"weights"`
	Depreciation  DepreciationConfig `yaml:"depreciation"`
	Maintenance   MaintenanceConfig  `yaml:"maintenance"`
	Reliability   ReliabilityConfig  `yaml:"reliability"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	Semantic      SemanticConfig     `yaml:"semantic"`
	Concurrency   ConcurrencyConfig  `yaml:"concurrency"`
	Output        OutputConfig       `yaml:"output"`
	LLM           LLMConfig          `yaml:"llm"`
	Server        ServerConfig       `yaml:"server"`
}

// DataConfig locates the vehicle datasets.
type DataConfig struct {
	IntegratedPath string `yaml:"integrated_path"` // integrated CSV produced by `carscout integrate`
	RawDir         string `yaml:"raw_dir"`         // directory holding the raw source CSVs
}

// WeightConfig holds the composite score weights. They must sum to 1.0.
type WeightConfig struct {
	Safety      float64 `yaml:"safety"`
	Reliability float64 `yaml:"reliability"`
	Price       float64 `yaml:"price"`
	TCO         float64 `yaml:"tco"`
	RuleBonus   float64 `yaml:"rule_bonus"`
}

// Sum returns the total weight, used to verify the 1.0 invariant.
func (w WeightConfig) Sum() float64 {
	return w.Safety + w.Reliability + w.Price + w.TCO + w.RuleBonus
}

// DepreciationConfig parameterizes the year-by-year value simulation.
type DepreciationConfig struct {
	FirstYearRate     float64            `yaml:"first_year_rate"`    // fraction lost in the first simulated year
	BaseRate          float64            `yaml:"base_rate"`          // fraction lost in subsequent years, before adjustments
	AgeRate           float64            `yaml:"age_rate"`           // additive rate increase per year of vehicle age
	ReliabilityCredit float64            `yaml:"reliability_credit"` // max fractional rate reduction at reliability 1.0
	MakeMultipliers   map[string]float64 `yaml:"make_multipliers"`   // <1.0 for makes with strong resale history
}

// MultiplierFor returns the reputation multiplier for a make, 1.0 by default.
func (d DepreciationConfig) MultiplierFor(make string) float64 {
	if m, ok := d.MakeMultipliers[make]; ok && m > 0 {
		return m
	}
	return 1.0
}

// MaintenanceConfig parameterizes the annual maintenance estimate.
type MaintenanceConfig struct {
	BaseAnnual float64 `yaml:"base_annual"` // flat annual cost for a new vehicle
	AgeGrowth  float64 `yaml:"age_growth"`  // fractional cost growth per year of age
	PerMile    float64 `yaml:"per_mile"`    // annual cost per mile already on the odometer
}

// ReliabilityConfig parameterizes the probabilistic estimator.
type ReliabilityConfig struct {
	ComplaintWeight  float64 `yaml:"complaint_weight"`   // failure-rate multiplier per unit complaint density
	MaxAnnualFailure float64 `yaml:"max_annual_failure"` // cap on the one-year failure probability
	DefaultScore     float64 `yaml:"default_score"`      // fallback when no complaint data exists
}

// ClassifierConfig selects and tunes the rule classifier collaborator.
type ClassifierConfig struct {
	Engine    string        `yaml:"engine"`     // "cel" (default), "swipl", or "none"
	RulesPath string        `yaml:"rules_path"` // optional YAML rule file for the CEL engine
	SwiplPath string        `yaml:"swipl_path"` // optional explicit swipl binary path
	Timeout   time.Duration `yaml:"timeout"`    // per-invocation bound
	CacheTTL  time.Duration `yaml:"cache_ttl"`  // classification result cache
}

// SemanticConfig tunes the semantic matcher collaborator. The thresholds bind
// as parameters into the knowledge-base concept queries.
type SemanticConfig struct {
	Enabled bool          `yaml:"enabled"`
	Path    string        `yaml:"path"` // sqlite path; ":memory:" builds per run
	Timeout time.Duration `yaml:"timeout"`

	SafetyFloor           float64 `yaml:"safety_floor"`            // minimum rating for the safe-vehicle concept
	ReliabilityFloor      float64 `yaml:"reliability_floor"`       // minimum score for the proven-reliable concept
	ValuePriceCeiling     float64 `yaml:"value_price_ceiling"`     // price cap for the best-value concept
	ValueReliabilityFloor float64 `yaml:"value_reliability_floor"` // reliability floor for the best-value concept
	MileageCeiling        float64 `yaml:"mileage_ceiling"`         // odometer cap for the low-mileage concept
}

// WithDefaults fills unset concept thresholds with the documented defaults.
func (s SemanticConfig) WithDefaults() SemanticConfig {
	if s.SafetyFloor == 0 {
		s.SafetyFloor = 4.5
	}
	if s.ReliabilityFloor == 0 {
		s.ReliabilityFloor = 0.85
	}
	if s.ValuePriceCeiling == 0 {
		s.ValuePriceCeiling = 20000
	}
	if s.ValueReliabilityFloor == 0 {
		s.ValueReliabilityFloor = 0.75
	}
	if s.MileageCeiling == 0 {
		s.MileageCeiling = 50000
	}
	return s
}

// ConcurrencyConfig bounds batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// LLMConfig configures the optional advisor summary.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai", "ollama", or "" (disabled)
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"` // from environment only, never persisted
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// ServerConfig configures the HTTP query surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns the documented defaults. The weights are the
// composite weighting from the original scoring design (safety and
// reliability dominate; price, cost of ownership and the rule bonus share
// the rest) and sum to 1.0.
func DefaultConfig() *Config {
	return &Config{
		ReferenceYear: time.Now().UTC().Year(),
		Data: DataConfig{
			IntegratedPath: "data/integrated_cars.csv",
			RawDir:         "raw_data",
		},
		Weights: WeightConfig{
			Safety:      0.25,
			Reliability: 0.25,
			Price:       0.20,
			TCO:         0.15,
			RuleBonus:   0.15,
		},
		Depreciation: DepreciationConfig{
			FirstYearRate:     0.10,
			BaseRate:          0.09,
			AgeRate:           0.01,
			ReliabilityCredit: 0.20,
			MakeMultipliers: map[string]float64{
				"TOYOTA": 0.95,
				"HONDA":  0.95,
				"LEXUS":  0.95,
				"SUBARU": 0.95,
			},
		},
		Maintenance: MaintenanceConfig{
			BaseAnnual: 500,
			AgeGrowth:  0.12,
			PerMile:    0.02,
		},
		Reliability: ReliabilityConfig{
			ComplaintWeight:  0.05,
			MaxAnnualFailure: 0.80,
			DefaultScore:     DefaultReliability,
		},
		Classifier: ClassifierConfig{
			Engine:   "cel",
			Timeout:  10 * time.Second,
			CacheTTL: 15 * time.Minute,
		},
		Semantic: SemanticConfig{
			Enabled: true,
			Path:    ":memory:",
			Timeout: 10 * time.Second,
		}.WithDefaults(),
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 600,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}
