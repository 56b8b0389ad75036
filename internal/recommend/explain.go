package recommend

import (
	"fmt"

	"github.com/carscout/carscout/internal/model"
)

// Explanation thresholds. Strengths fire on absolute quality or on clearly
// beating the rest of the candidate set; weaknesses flag what a buyer should
// double-check before committing.
const (
	strongReliability  = 0.80
	strongRetention    = 0.60
	strongSafety       = 4.5
	strongPriceNorm    = 0.80
	weakScore          = 0.50
	weakRetention      = 0.40
	weakComplaintCount = 20
	weakTCONorm        = 0.20
	weakSafety         = 3.5
)

// Explain fills in the strengths and weaknesses for a scored recommendation.
// The lists are derived from the same assessments the score used, so an
// explanation never contradicts the ranking.
func Explain(rec *model.Recommendation) {
	var strengths, weaknesses []string

	if rec.Reliability.Score >= strongReliability {
		strengths = append(strengths, fmt.Sprintf("high reliability (%.2f)", rec.Reliability.Score))
	}
	if rec.Projection.ValueRetention >= strongRetention {
		strengths = append(strengths, fmt.Sprintf("strong value retention (%.0f%% after %d years)",
			rec.Projection.ValueRetention*100, rec.Projection.Years))
	}
	if rec.Vehicle.SafetyRating >= strongSafety {
		strengths = append(strengths, fmt.Sprintf("top safety rating (%.1f/5)", rec.Vehicle.SafetyRating))
	}
	if rec.Breakdown[ComponentPrice] >= strongPriceNorm {
		strengths = append(strengths, "priced well below comparable candidates")
	}
	for _, cat := range rec.RuleCategories {
		strengths = append(strengths, fmt.Sprintf("expert rules tag it %s", cat))
	}
	if rec.SemanticMatch && rec.SemanticAnnotation != "" {
		strengths = append(strengths, "knowledge base: "+rec.SemanticAnnotation)
	}

	if rec.Score < weakScore {
		weaknesses = append(weaknesses, fmt.Sprintf("weak composite score (%.2f)", rec.Score))
	}
	if rec.Projection.ValueRetention < weakRetention {
		weaknesses = append(weaknesses, fmt.Sprintf("heavy projected depreciation (%.0f%% retained)",
			rec.Projection.ValueRetention*100))
	}
	if rec.Vehicle.HasComplaintData && rec.Vehicle.ComplaintCount > weakComplaintCount {
		weaknesses = append(weaknesses, fmt.Sprintf("%d owner complaints on record", rec.Vehicle.ComplaintCount))
	}
	if rec.Breakdown[ComponentTCO] < weakTCONorm {
		weaknesses = append(weaknesses, "among the most expensive candidates to own")
	}
	if rec.Vehicle.SafetyRating < weakSafety {
		weaknesses = append(weaknesses, fmt.Sprintf("below-average safety rating (%.1f/5)", rec.Vehicle.SafetyRating))
	}
	if rec.Reliability.Confidence == model.ConfidenceDefault {
		weaknesses = append(weaknesses, "reliability estimate based on defaults, not complaint history")
	}

	rec.Strengths = strengths
	rec.Weaknesses = weaknesses
}
