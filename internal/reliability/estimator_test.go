package reliability

import (
	"math"
	"strings"
	"testing"

	"github.com/carscout/carscout/internal/model"
)

const refYear = 2025

func newTestEstimator() *Estimator {
	return NewEstimator(model.DefaultConfig().Reliability, refYear)
}

func TestEstimate_Measured(t *testing.T) {
	e := newTestEstimator()
	v := model.VehicleRecord{
		ID: "v1", Make: "TOYOTA", Model: "CAMRY", Year: 2020, Price: 22000,
		ComplaintCount: 10, HasComplaintData: true,
	}

	est := e.Estimate(v, 5)

	if est.Confidence != model.ConfidenceMeasured {
		t.Errorf("expected measured confidence, got %s", est.Confidence)
	}
	if est.Score < 0 || est.Score > 1 {
		t.Errorf("score out of range: %f", est.Score)
	}
	if est.Age != 5 || est.Horizon != 5 || est.ComplaintCount != 10 {
		t.Errorf("unexpected metadata: age=%d horizon=%d complaints=%d",
			est.Age, est.Horizon, est.ComplaintCount)
	}

	// age 5 base 0.08, density 10/5=2, multiplier 1+0.05*2=1.1
	wantProb1 := 0.08 * 1.1
	if math.Abs(est.FailureProb1Yr-wantProb1) > 1e-9 {
		t.Errorf("expected 1yr failure prob %f, got %f", wantProb1, est.FailureProb1Yr)
	}
	wantHorizon := 1 - math.Pow(1-wantProb1, 5)
	if math.Abs(est.FailureProbHorizon-wantHorizon) > 1e-9 {
		t.Errorf("expected horizon prob %f, got %f", wantHorizon, est.FailureProbHorizon)
	}
	if math.Abs(est.Score-(1-wantHorizon)) > 1e-9 {
		t.Errorf("score must be 1 - horizon prob, got %f", est.Score)
	}
	if est.ExpectedRepairCost <= 0 {
		t.Errorf("expected positive repair cost, got %f", est.ExpectedRepairCost)
	}
}

func TestEstimate_HorizonMonotonic(t *testing.T) {
	e := newTestEstimator()
	v := model.VehicleRecord{
		ID: "v1", Year: 2019, Price: 15000,
		ComplaintCount: 8, HasComplaintData: true,
	}

	prev := e.Estimate(v, 1)
	for years := 2; years <= 10; years++ {
		cur := e.Estimate(v, years)
		if cur.FailureProbHorizon < prev.FailureProbHorizon {
			t.Fatalf("horizon failure prob decreased at %d years: %f < %f",
				years, cur.FailureProbHorizon, prev.FailureProbHorizon)
		}
		if cur.Score > prev.Score {
			t.Fatalf("score increased with a longer horizon at %d years", years)
		}
		prev = cur
	}
}

func TestEstimate_CurrentModelYearDensity(t *testing.T) {
	e := newTestEstimator()
	// Age 0 normalizes to one year of service, so the density is finite and
	// the annual probability stays capped.
	v := model.VehicleRecord{
		ID: "v1", Year: refYear, Price: 30000,
		ComplaintCount: 400, HasComplaintData: true,
	}

	est := e.Estimate(v, 5)
	if est.FailureProb1Yr > model.DefaultConfig().Reliability.MaxAnnualFailure {
		t.Errorf("1yr probability exceeds cap: %f", est.FailureProb1Yr)
	}
	if est.Score < 0 || est.Score > 1 {
		t.Errorf("score out of range: %f", est.Score)
	}
}

func TestEstimate_DefaultFallback(t *testing.T) {
	e := newTestEstimator()

	// Dataset score present: it is used as-is.
	v := model.VehicleRecord{ID: "v1", Year: 2020, Price: 20000, ReliabilityScore: 0.9}
	est := e.Estimate(v, 5)
	if est.Confidence != model.ConfidenceDefault {
		t.Errorf("expected default confidence, got %s", est.Confidence)
	}
	if est.Score != 0.9 {
		t.Errorf("expected dataset score 0.9, got %f", est.Score)
	}
	if est.ComplaintCount != 0 {
		t.Errorf("fallback estimate must report zero complaints, got %d", est.ComplaintCount)
	}

	// No usable dataset score either: documented mid-scale default.
	v.ReliabilityScore = 0
	est = e.Estimate(v, 5)
	if est.Score != model.DefaultReliability {
		t.Errorf("expected default score %f, got %f", model.DefaultReliability, est.Score)
	}
}

func TestBaseFailureRate(t *testing.T) {
	if got := baseFailureRate(-3); got != baseFailureRates[0] {
		t.Errorf("negative age should use the age-0 rate, got %f", got)
	}
	if got := baseFailureRate(5); got != 0.08 {
		t.Errorf("expected 0.08 at age 5, got %f", got)
	}
	// Past the table the rate grows linearly then caps.
	if got := baseFailureRate(12); math.Abs(got-0.28) > 1e-9 {
		t.Errorf("expected 0.28 at age 12, got %f", got)
	}
	if got := baseFailureRate(100); got != agedFailureCap {
		t.Errorf("expected cap %f for very old vehicles, got %f", agedFailureCap, got)
	}
}

func TestAdvice(t *testing.T) {
	cases := []struct {
		prob float64
		want string
	}{
		{0.10, "low risk"},
		{0.30, "moderate risk"},
		{0.50, "higher risk"},
		{0.80, "high risk"},
	}
	for _, tc := range cases {
		got := Advice(model.ReliabilityEstimate{FailureProbHorizon: tc.prob})
		if !strings.HasPrefix(got, tc.want) {
			t.Errorf("prob %.2f: expected advice starting %q, got %q", tc.prob, tc.want, got)
		}
	}
}
