package recommend

import (
	"testing"

	"github.com/carscout/carscout/internal/model"
)

func defaultWeights() model.WeightConfig {
	return model.DefaultConfig().Weights
}

// assessed builds the estimate and projection maps a Rank call expects,
// deriving plausible values from the raw records.
func assessed(vehicles []model.VehicleRecord) (map[string]model.ReliabilityEstimate, map[string]model.OwnershipProjection) {
	estimates := make(map[string]model.ReliabilityEstimate, len(vehicles))
	projections := make(map[string]model.OwnershipProjection, len(vehicles))
	for _, v := range vehicles {
		estimates[v.ID] = model.ReliabilityEstimate{
			Score:      v.ReliabilityScore,
			Confidence: model.ConfidenceMeasured,
			Horizon:    5,
		}
		projections[v.ID] = model.OwnershipProjection{
			Years:          5,
			ResaleValue:    v.Price * 0.5,
			ValueRetention: 0.5,
			TotalCost:      v.Price * 0.7,
		}
	}
	return estimates, projections
}

func rankVehicles() []model.VehicleRecord {
	return []model.VehicleRecord{
		{ID: "good", Make: "TOYOTA", Model: "CAMRY", Year: 2021, Price: 22000,
			SafetyRating: 4.8, ReliabilityScore: 0.92, Mileage: 30000},
		{ID: "mid", Make: "HONDA", Model: "ACCORD", Year: 2018, Price: 24000,
			SafetyRating: 4.3, ReliabilityScore: 0.8, Mileage: 70000},
		{ID: "poor", Make: "FIAT", Model: "500", Year: 2014, Price: 26000,
			SafetyRating: 3.2, ReliabilityScore: 0.45, Mileage: 120000},
	}
}

func TestNewScorer_WeightValidation(t *testing.T) {
	if _, err := NewScorer(defaultWeights()); err != nil {
		t.Fatalf("default weights rejected: %v", err)
	}

	bad := model.WeightConfig{Safety: 0.5, Reliability: 0.5, Price: 0.5}
	if _, err := NewScorer(bad); err == nil {
		t.Fatal("expected error for weights not summing to 1.0")
	}
}

func TestRank_OrderAndBounds(t *testing.T) {
	s, err := NewScorer(defaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	vehicles := rankVehicles()
	estimates, projections := assessed(vehicles)
	recs := s.Rank(vehicles, estimates, projections, model.EmptySignalSet(vehicles))

	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}
	for i, r := range recs {
		if r.Rank != i+1 {
			t.Errorf("rank %d not 1-based sequential: %d", i, r.Rank)
		}
		if r.Score < 0 || r.Score > 1 {
			t.Errorf("%s: score out of range: %f", r.Vehicle.ID, r.Score)
		}
		for name, val := range r.Breakdown {
			if val < 0 || val > 1 {
				t.Errorf("%s: component %s out of range: %f", r.Vehicle.ID, name, val)
			}
		}
	}

	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Errorf("recommendations not ordered best-first at %d", i)
		}
	}
	if recs[0].Vehicle.ID != "good" || recs[len(recs)-1].Vehicle.ID != "poor" {
		t.Errorf("unexpected order: %s first, %s last",
			recs[0].Vehicle.ID, recs[len(recs)-1].Vehicle.ID)
	}
}

func TestRank_RuleBonusBreaksDeadHeat(t *testing.T) {
	s, err := NewScorer(defaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	// Two identical vehicles; only one carries a classifier tag.
	vehicles := []model.VehicleRecord{
		{ID: "plain", Make: "HONDA", Model: "CIVIC", Year: 2019, Price: 16000,
			SafetyRating: 4.5, ReliabilityScore: 0.85, Mileage: 40000},
		{ID: "tagged", Make: "HONDA", Model: "CIVIC", Year: 2019, Price: 16000,
			SafetyRating: 4.5, ReliabilityScore: 0.85, Mileage: 40000},
	}
	estimates, projections := assessed(vehicles)

	sigs := model.EmptySignalSet(vehicles)
	sigs.ClassifierAvailable = true
	sigs.Signals["tagged"] = model.VehicleSignals{RuleCategories: []string{"good_value"}}

	recs := s.Rank(vehicles, estimates, projections, sigs)
	if recs[0].Vehicle.ID != "tagged" {
		t.Errorf("tagged vehicle should outrank its untagged twin, got %s first", recs[0].Vehicle.ID)
	}
	if recs[0].Score <= recs[1].Score {
		t.Errorf("rule bonus did not raise the score: %f <= %f", recs[0].Score, recs[1].Score)
	}
	if recs[0].Breakdown[ComponentRuleBonus] != 1.0 || recs[1].Breakdown[ComponentRuleBonus] != 0.0 {
		t.Errorf("unexpected bonus components: %f / %f",
			recs[0].Breakdown[ComponentRuleBonus], recs[1].Breakdown[ComponentRuleBonus])
	}
}

func TestRank_TieBreakTotalOrder(t *testing.T) {
	s, err := NewScorer(defaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	// Identical records except the ID, so every score component ties and the
	// order falls through to the ID comparison.
	vehicles := []model.VehicleRecord{
		{ID: "zeta", Make: "KIA", Model: "SOUL", Year: 2020, Price: 14000,
			SafetyRating: 4.0, ReliabilityScore: 0.7},
		{ID: "alpha", Make: "KIA", Model: "SOUL", Year: 2020, Price: 14000,
			SafetyRating: 4.0, ReliabilityScore: 0.7},
	}
	estimates, projections := assessed(vehicles)

	recs := s.Rank(vehicles, estimates, projections, model.EmptySignalSet(vehicles))
	if recs[0].Vehicle.ID != "alpha" {
		t.Errorf("full tie should order by ID, got %s first", recs[0].Vehicle.ID)
	}

	// Same result regardless of input order.
	reversed := []model.VehicleRecord{vehicles[1], vehicles[0]}
	recs2 := s.Rank(reversed, estimates, projections, model.EmptySignalSet(reversed))
	if recs2[0].Vehicle.ID != recs[0].Vehicle.ID {
		t.Error("tie-break order depends on input order")
	}
}

func TestRank_SingletonNormalization(t *testing.T) {
	s, err := NewScorer(defaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	vehicles := rankVehicles()[:1]
	estimates, projections := assessed(vehicles)

	recs := s.Rank(vehicles, estimates, projections, model.EmptySignalSet(vehicles))
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	// With nothing to compare against, every comparative component is 1.0.
	for _, comp := range []string{ComponentSafety, ComponentPrice, ComponentTCO} {
		if recs[0].Breakdown[comp] != 1.0 {
			t.Errorf("singleton component %s should normalize to 1.0, got %f",
				comp, recs[0].Breakdown[comp])
		}
	}
	// Reliability stays absolute even with a single candidate.
	if recs[0].Breakdown[ComponentReliability] != vehicles[0].ReliabilityScore {
		t.Errorf("singleton reliability component should be the raw score %f, got %f",
			vehicles[0].ReliabilityScore, recs[0].Breakdown[ComponentReliability])
	}
}

func TestRank_ReliabilityIsAbsolute(t *testing.T) {
	s, err := NewScorer(defaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	// Identical vehicles apart from reliability. The least reliable candidate
	// must keep its real score as the component, not be flattened to zero, and
	// the composite gap must be exactly the weighted reliability gap.
	vehicles := []model.VehicleRecord{
		{ID: "shaky", Make: "HONDA", Model: "CIVIC", Year: 2019, Price: 16000,
			SafetyRating: 4.5, ReliabilityScore: 0.5, Mileage: 40000},
		{ID: "solid", Make: "HONDA", Model: "CIVIC", Year: 2019, Price: 16000,
			SafetyRating: 4.5, ReliabilityScore: 0.9, Mileage: 40000},
	}
	estimates, projections := assessed(vehicles)

	recs := s.Rank(vehicles, estimates, projections, model.EmptySignalSet(vehicles))
	byID := map[string]model.Recommendation{
		recs[0].Vehicle.ID: recs[0],
		recs[1].Vehicle.ID: recs[1],
	}

	if got := byID["shaky"].Breakdown[ComponentReliability]; got != 0.5 {
		t.Errorf("shaky reliability component should be 0.5, got %f", got)
	}
	if got := byID["solid"].Breakdown[ComponentReliability]; got != 0.9 {
		t.Errorf("solid reliability component should be 0.9, got %f", got)
	}

	wantGap := defaultWeights().Reliability * (0.9 - 0.5)
	gotGap := byID["solid"].Score - byID["shaky"].Score
	if diff := gotGap - wantGap; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("score gap should be the weighted reliability gap %f, got %f", wantGap, gotGap)
	}
}

func TestRank_Empty(t *testing.T) {
	s, err := NewScorer(defaultWeights())
	if err != nil {
		t.Fatal(err)
	}
	recs := s.Rank(nil, nil, nil, model.EmptySignalSet(nil))
	if recs == nil || len(recs) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", recs)
	}
}

func TestExplain(t *testing.T) {
	rec := &model.Recommendation{
		Vehicle: model.VehicleRecord{
			ID: "v", Make: "TOYOTA", Model: "CAMRY", Year: 2021,
			Price: 22000, SafetyRating: 4.8,
		},
		Score: 0.85,
		Breakdown: map[string]float64{
			ComponentPrice: 0.9,
			ComponentTCO:   0.8,
		},
		Reliability:        model.ReliabilityEstimate{Score: 0.9, Confidence: model.ConfidenceMeasured},
		Projection:         model.OwnershipProjection{ValueRetention: 0.63, Years: 5},
		RuleCategories:     []string{"excellent_choice"},
		SemanticMatch:      true,
		SemanticAnnotation: "proven reliable",
	}

	Explain(rec)

	if len(rec.Strengths) < 4 {
		t.Errorf("expected several strengths, got %v", rec.Strengths)
	}
	if len(rec.Weaknesses) != 0 {
		t.Errorf("expected no weaknesses for a strong candidate, got %v", rec.Weaknesses)
	}

	weak := &model.Recommendation{
		Vehicle: model.VehicleRecord{
			ID: "w", Make: "FIAT", Model: "500", Year: 2012, Price: 9000,
			SafetyRating: 3.0, ComplaintCount: 45, HasComplaintData: true,
		},
		Score:       0.3,
		Breakdown:   map[string]float64{ComponentTCO: 0.1},
		Reliability: model.ReliabilityEstimate{Score: 0.4, Confidence: model.ConfidenceMeasured},
		Projection:  model.OwnershipProjection{ValueRetention: 0.3, Years: 5},
	}

	Explain(weak)
	if len(weak.Weaknesses) < 4 {
		t.Errorf("expected several weaknesses, got %v", weak.Weaknesses)
	}

	// Default-confidence estimates always surface as a caveat.
	fallback := &model.Recommendation{
		Vehicle:     model.VehicleRecord{ID: "f", SafetyRating: 4.0},
		Score:       0.6,
		Breakdown:   map[string]float64{ComponentTCO: 0.5},
		Reliability: model.ReliabilityEstimate{Score: 0.5, Confidence: model.ConfidenceDefault},
		Projection:  model.OwnershipProjection{ValueRetention: 0.5, Years: 5},
	}
	Explain(fallback)
	found := false
	for _, w := range fallback.Weaknesses {
		if w == "reliability estimate based on defaults, not complaint history" {
			found = true
		}
	}
	if !found {
		t.Errorf("default confidence caveat missing: %v", fallback.Weaknesses)
	}
}
