package model

import "time"

// Confidence indicates whether a derived value came from measured data or a
// documented default.
type Confidence string

const (
	ConfidenceMeasured Confidence = "measured"
	ConfidenceDefault  Confidence = "default"
)

// ReliabilityEstimate is the probabilistic reliability assessment for one
// vehicle over the requested ownership horizon. Computed once per pipeline
// run and never mutated.
type ReliabilityEstimate struct {
	Score              float64    `json:"score"`                // probability-like, 0-1, higher is better
	Confidence         Confidence `json:"confidence"`           // measured vs. dataset default
	FailureProb1Yr     float64    `json:"failure_prob_1yr"`     // chance of a significant failure within a year
	FailureProbHorizon float64    `json:"failure_prob_horizon"` // cumulative over the ownership horizon
	ExpectedRepairCost float64    `json:"expected_repair_cost"` // over the ownership horizon
	Age                int        `json:"age"`
	ComplaintCount     int        `json:"complaint_count"`
	Horizon            int        `json:"horizon_years"`
}

// YearValue is one point of the simulated depreciation schedule.
type YearValue struct {
	Year  int     `json:"year"`  // simulated year offset, 0 = purchase
	Value float64 `json:"value"` // projected market value
}

// OwnershipProjection is the deterministic multi-year ownership cost
// simulation for one vehicle. Values[0] is the purchase price and the
// sequence is monotonically non-increasing.
type OwnershipProjection struct {
	Years               int         `json:"years"`
	Values              []YearValue `json:"values"` // length Years+1
	ResaleValue         float64     `json:"resale_value"`
	TotalDepreciation   float64     `json:"total_depreciation"`
	ValueRetention      float64     `json:"value_retention"` // resale / purchase price
	MaintenanceEstimate float64     `json:"maintenance_estimate"`
	TotalCost           float64     `json:"total_cost_of_ownership"` // price + maintenance - resale
	CostPerYear         float64     `json:"cost_per_year"`
}

// Signal names used as SignalMap keys.
const (
	SignalRuleCategories = "rule_categories"
	SignalSemanticMatch  = "semantic_match"
)

// VehicleSignals holds the normalized external signals for one vehicle.
type VehicleSignals struct {
	RuleCategories     []string `json:"rule_categories,omitempty"`     // tags from the rule classifier
	RuleStrengths      []string `json:"rule_strengths,omitempty"`      // strength facts from the rule classifier
	SemanticMatch      bool     `json:"semantic_match"`                // matched at least one knowledge-base concept
	SemanticAnnotation string   `json:"semantic_annotation,omitempty"` // matched concept labels, joined
}

// SignalMap maps vehicle identifiers to their external signals. Built once by
// the adapters and read-only afterwards.
type SignalMap map[string]VehicleSignals

// SignalSet is the adapter output: the per-vehicle signals plus availability
// flags so "no categories matched" can be told apart from "classifier absent".
type SignalSet struct {
	Signals             SignalMap `json:"signals"`
	ClassifierAvailable bool      `json:"classifier_available"`
	MatcherAvailable    bool      `json:"matcher_available"`
}

// EmptySignalSet returns a SignalSet with empty signals for every vehicle,
// used when both collaborators are absent.
func EmptySignalSet(vehicles []VehicleRecord) *SignalSet {
	signals := make(SignalMap, len(vehicles))
	for _, v := range vehicles {
		signals[v.ID] = VehicleSignals{}
	}
	return &SignalSet{Signals: signals}
}

// Recommendation is one ranked result. Created fresh per query, immutable
// after construction, no identity across runs.
type Recommendation struct {
	Rank               int                 `json:"rank"`
	Vehicle            VehicleRecord       `json:"vehicle"`
	Score              float64             `json:"score"` // composite, 0-1
	Breakdown          map[string]float64  `json:"breakdown"`
	Reliability        ReliabilityEstimate `json:"reliability"`
	Projection         OwnershipProjection `json:"projection"`
	RuleCategories     []string            `json:"rule_categories,omitempty"`
	SemanticMatch      bool                `json:"semantic_match"`
	SemanticAnnotation string              `json:"semantic_annotation,omitempty"`
	Strengths          []string            `json:"strengths,omitempty"`
	Weaknesses         []string            `json:"weaknesses,omitempty"`
}

// Report is the complete output of one recommendation run.
type Report struct {
	RunID               string           `json:"run_id"`
	GeneratedAt         time.Time        `json:"generated_at"`
	Query               Query            `json:"query"`
	TotalVehicles       int              `json:"total_vehicles"`
	FilteredVehicles    int              `json:"filtered_vehicles"`
	ClassifierAvailable bool             `json:"classifier_available"`
	MatcherAvailable    bool             `json:"matcher_available"`
	Recommendations     []Recommendation `json:"recommendations"`
	Advisor             *AdvisorSummary  `json:"advisor,omitempty"` // optional, never affects scores
}

// AdvisorSummary is an optional LLM-generated narrative for a finished report.
// It is produced after scoring and never feeds back into it.
type AdvisorSummary struct {
	Enabled  bool     `json:"enabled"`
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
