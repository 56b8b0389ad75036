package reliability

import (
	"math"

	"github.com/carscout/carscout/internal/model"
)

// baseFailureRates maps vehicle age to the annual probability of a
// significant failure. Ages beyond the table grow linearly, capped below.
var baseFailureRates = []float64{
	0.02, // age 0
	0.03,
	0.04,
	0.05,
	0.06,
	0.08,
	0.10,
	0.12,
	0.15,
	0.18,
	0.22, // age 10
}

const (
	agedFailureGrowth = 0.03
	agedFailureCap    = 0.60
)

// Repair cost buckets used for the expected-cost estimate.
const (
	repairCostMinor    = 500
	repairCostModerate = 1500
	repairCostMajor    = 4000
)

// Estimator computes probabilistic reliability estimates from vehicle age and
// complaint density. Stateless; safe for concurrent use.
type Estimator struct {
	cfg           model.ReliabilityConfig
	referenceYear int
}

// NewEstimator creates an estimator for the given reference year.
func NewEstimator(cfg model.ReliabilityConfig, referenceYear int) *Estimator {
	return &Estimator{cfg: cfg, referenceYear: referenceYear}
}

// baseFailureRate returns the annual failure probability for a vehicle age.
func baseFailureRate(age int) float64 {
	if age < 0 {
		age = 0
	}
	if age < len(baseFailureRates) {
		return baseFailureRates[age]
	}
	extra := float64(age-(len(baseFailureRates)-1)) * agedFailureGrowth
	return math.Min(baseFailureRates[len(baseFailureRates)-1]+extra, agedFailureCap)
}

// Estimate computes the reliability estimate for one vehicle over the given
// ownership horizon. The score is always within [0, 1]; an age of zero is
// normalized to one year so complaint density never divides by zero.
func (e *Estimator) Estimate(v model.VehicleRecord, years int) model.ReliabilityEstimate {
	if years < 1 {
		years = 1
	}
	age := v.Age(e.referenceYear)

	if !v.HasComplaintData {
		return e.defaultEstimate(v, age, years)
	}

	// Complaint density: complaints per year of service. Age 0 counts as 1 so
	// a current-model-year vehicle with complaints is not scored as ageless.
	normAge := age
	if normAge < 1 {
		normAge = 1
	}
	density := float64(v.ComplaintCount) / float64(normAge)

	complaintMult := 1.0 + e.cfg.ComplaintWeight*density
	prob1 := math.Min(baseFailureRate(age)*complaintMult, e.cfg.MaxAnnualFailure)
	probHorizon := 1 - math.Pow(1-prob1, float64(years))

	score := clamp01(1 - probHorizon)

	return model.ReliabilityEstimate{
		Score:              score,
		Confidence:         model.ConfidenceMeasured,
		FailureProb1Yr:     prob1,
		FailureProbHorizon: probHorizon,
		ExpectedRepairCost: expectedRepairCost(age, complaintMult, probHorizon, years),
		Age:                age,
		ComplaintCount:     v.ComplaintCount,
		Horizon:            years,
	}
}

// defaultEstimate is the data-quality fallback: no complaint history exists,
// so the dataset-supplied score (or the documented mid-scale constant) is
// used and flagged as low confidence.
func (e *Estimator) defaultEstimate(v model.VehicleRecord, age, years int) model.ReliabilityEstimate {
	score := v.ReliabilityScore
	if score <= 0 || score > 1 {
		score = e.cfg.DefaultScore
	}

	prob1 := baseFailureRate(age)
	probHorizon := 1 - math.Pow(1-prob1, float64(years))

	return model.ReliabilityEstimate{
		Score:              clamp01(score),
		Confidence:         model.ConfidenceDefault,
		FailureProb1Yr:     prob1,
		FailureProbHorizon: probHorizon,
		ExpectedRepairCost: expectedRepairCost(age, 1.0, probHorizon, years),
		Age:                age,
		ComplaintCount:     0,
		Horizon:            years,
	}
}

// expectedRepairCost estimates repair spending over the horizon from three
// severity buckets, scaled from a five-year baseline.
func expectedRepairCost(age int, complaintMult, probHorizon float64, years int) float64 {
	minorIssues := 2.5 * (1 + float64(age)*0.05)
	moderateIssues := 1.0 * complaintMult
	majorIssues := probHorizon * 0.5

	fiveYear := minorIssues*repairCostMinor +
		moderateIssues*repairCostModerate +
		majorIssues*repairCostMajor

	return fiveYear * float64(years) / 5.0
}

// Advice maps the horizon failure probability to a maintenance-risk note.
func Advice(est model.ReliabilityEstimate) string {
	switch {
	case est.FailureProbHorizon < 0.20:
		return "low risk, standard maintenance should be fine"
	case est.FailureProbHorizon < 0.40:
		return "moderate risk, consider an extended warranty"
	case est.FailureProbHorizon < 0.60:
		return "higher risk, extended warranty recommended and budget for repairs"
	default:
		return "high risk, expect significant maintenance costs"
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
