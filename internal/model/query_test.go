package model

import (
	"errors"
	"testing"
)

func TestQuery_Validate(t *testing.T) {
	valid := []Query{
		{},
		{MaxPrice: 25000, MinSafety: 4.0},
		{MinYear: 2015, MaxYear: 2022},
		{MinReliability: 0.7, MaxMileage: 80000, Years: 3, TopN: 5},
	}
	for i, q := range valid {
		if err := q.Validate(); err != nil {
			t.Errorf("query %d: expected valid, got %v", i, err)
		}
	}

	invalid := []Query{
		{MaxPrice: -1},
		{MaxMileage: -10},
		{MinYear: 1800},
		{MaxYear: 3000},
		{MinYear: 2022, MaxYear: 2015},
		{MinSafety: 5.5},
		{MinSafety: -0.1},
		{MinReliability: 1.5},
		{Years: -1},
		{TopN: -1},
	}
	for i, q := range invalid {
		err := q.Validate()
		if err == nil {
			t.Errorf("query %d: expected error, got nil", i)
			continue
		}
		if !errors.Is(err, ErrInvalidConstraint) {
			t.Errorf("query %d: expected ErrInvalidConstraint, got %v", i, err)
		}
	}
}

func TestQuery_Defaults(t *testing.T) {
	var q Query
	if q.Horizon() != DefaultOwnershipYears {
		t.Errorf("expected default horizon %d, got %d", DefaultOwnershipYears, q.Horizon())
	}
	if q.Limit() != DefaultTopN {
		t.Errorf("expected default limit %d, got %d", DefaultTopN, q.Limit())
	}

	q = Query{Years: 3, TopN: 7}
	if q.Horizon() != 3 {
		t.Errorf("expected horizon 3, got %d", q.Horizon())
	}
	if q.Limit() != 7 {
		t.Errorf("expected limit 7, got %d", q.Limit())
	}
}

func TestWeightConfig_Sum(t *testing.T) {
	w := DefaultConfig().Weights
	if sum := w.Sum(); sum < 0.999999 || sum > 1.000001 {
		t.Errorf("default weights must sum to 1.0, got %f", sum)
	}
}

func TestSemanticConfig_WithDefaults(t *testing.T) {
	s := SemanticConfig{Enabled: true}.WithDefaults()
	if s.SafetyFloor != 4.5 || s.ReliabilityFloor != 0.85 {
		t.Errorf("unexpected default floors: %+v", s)
	}
	if s.ValuePriceCeiling != 20000 || s.ValueReliabilityFloor != 0.75 || s.MileageCeiling != 50000 {
		t.Errorf("unexpected default ceilings: %+v", s)
	}

	// Explicit thresholds survive.
	s = SemanticConfig{SafetyFloor: 4.0, MileageCeiling: 100000}.WithDefaults()
	if s.SafetyFloor != 4.0 || s.MileageCeiling != 100000 {
		t.Errorf("explicit thresholds overwritten: %+v", s)
	}
}
