package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/carscout/carscout/internal/model"
)

// Breakdown keys. Each maps to a component value in [0, 1]; the composite
// score is their weighted sum. Safety, price and total cost are min-max
// normalized over the candidate set; reliability enters as the absolute
// probability-derived score.
const (
	ComponentSafety      = "safety"
	ComponentReliability = "reliability"
	ComponentPrice       = "price"
	ComponentTCO         = "tco"
	ComponentRuleBonus   = "rule_bonus"
)

const weightSumTolerance = 1e-6

// Scorer combines the per-vehicle assessments into one composite score and
// produces the ranked recommendation list.
type Scorer struct {
	weights model.WeightConfig
}

// NewScorer validates the weights (they must sum to 1.0) and builds a scorer.
func NewScorer(weights model.WeightConfig) (*Scorer, error) {
	if math.Abs(weights.Sum()-1.0) > weightSumTolerance {
		return nil, fmt.Errorf("score weights must sum to 1.0, got %.4f", weights.Sum())
	}
	return &Scorer{weights: weights}, nil
}

// Rank scores every candidate and returns them ordered best-first. Rank
// numbers are 1-based. Ties on the composite score break on lower total cost
// of ownership, then higher safety rating, then vehicle ID, so the order is
// total and reproducible across runs.
func (s *Scorer) Rank(
	vehicles []model.VehicleRecord,
	estimates map[string]model.ReliabilityEstimate,
	projections map[string]model.OwnershipProjection,
	sigs *model.SignalSet,
) []model.Recommendation {
	if len(vehicles) == 0 {
		return []model.Recommendation{}
	}

	norms := buildNorms(vehicles, estimates, projections)

	recs := make([]model.Recommendation, 0, len(vehicles))
	for _, v := range vehicles {
		sig := sigs.Signals[v.ID]

		breakdown := map[string]float64{
			ComponentSafety:      norms.safety[v.ID],
			ComponentReliability: norms.reliability[v.ID],
			ComponentPrice:       norms.price[v.ID],
			ComponentTCO:         norms.tco[v.ID],
			ComponentRuleBonus:   ruleBonus(sig),
		}

		score := s.weights.Safety*breakdown[ComponentSafety] +
			s.weights.Reliability*breakdown[ComponentReliability] +
			s.weights.Price*breakdown[ComponentPrice] +
			s.weights.TCO*breakdown[ComponentTCO] +
			s.weights.RuleBonus*breakdown[ComponentRuleBonus]

		recs = append(recs, model.Recommendation{
			Vehicle:            v,
			Score:              clamp01(score),
			Breakdown:          breakdown,
			Reliability:        estimates[v.ID],
			Projection:         projections[v.ID],
			RuleCategories:     sig.RuleCategories,
			SemanticMatch:      sig.SemanticMatch,
			SemanticAnnotation: sig.SemanticAnnotation,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Projection.TotalCost != b.Projection.TotalCost {
			return a.Projection.TotalCost < b.Projection.TotalCost
		}
		if a.Vehicle.SafetyRating != b.Vehicle.SafetyRating {
			return a.Vehicle.SafetyRating > b.Vehicle.SafetyRating
		}
		return a.Vehicle.ID < b.Vehicle.ID
	})

	for i := range recs {
		recs[i].Rank = i + 1
	}
	return recs
}

// ruleBonus converts classifier output into the bonus component. Every tag in
// the category vocabulary is favorable; any match earns the full bonus.
func ruleBonus(sig model.VehicleSignals) float64 {
	if len(sig.RuleCategories) > 0 {
		return 1.0
	}
	return 0.0
}

// componentNorms holds the per-vehicle component values. Safety, price and
// total cost of ownership are min-max normalized over the candidate set, with
// price and cost inverted: cheaper is better. Reliability is the estimator's
// absolute score; a candidate set of uniformly unreliable vehicles must not
// inflate anyone's reliability component.
type componentNorms struct {
	safety      map[string]float64
	reliability map[string]float64
	price       map[string]float64
	tco         map[string]float64
}

func buildNorms(
	vehicles []model.VehicleRecord,
	estimates map[string]model.ReliabilityEstimate,
	projections map[string]model.OwnershipProjection,
) componentNorms {
	safety := make([]float64, len(vehicles))
	price := make([]float64, len(vehicles))
	tco := make([]float64, len(vehicles))
	reliability := make(map[string]float64, len(vehicles))

	for i, v := range vehicles {
		safety[i] = v.SafetyRating
		price[i] = v.Price
		tco[i] = projections[v.ID].TotalCost
		reliability[v.ID] = clamp01(estimates[v.ID].Score)
	}

	return componentNorms{
		safety:      normalize(vehicles, safety, false),
		reliability: reliability,
		price:       normalize(vehicles, price, true),
		tco:         normalize(vehicles, tco, true),
	}
}

// normalize min-max scales the values over the candidate set. When every
// candidate shares the same value (including the singleton set) the component
// cannot discriminate and everyone gets 1.0.
func normalize(vehicles []model.VehicleRecord, values []float64, invert bool) map[string]float64 {
	lo, hi := values[0], values[0]
	for _, x := range values[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}

	out := make(map[string]float64, len(vehicles))
	span := hi - lo
	for i, v := range vehicles {
		if span == 0 {
			out[v.ID] = 1.0
			continue
		}
		n := (values[i] - lo) / span
		if invert {
			n = 1.0 - n
		}
		out[v.ID] = n
	}
	return out
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
