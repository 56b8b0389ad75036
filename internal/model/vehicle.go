package model

import (
	"fmt"
	"strings"
)

// Plausible model-year bounds for listings. Anything outside is a data error.
const (
	MinModelYear = 1980
	MaxModelYear = 2030
)

// VehicleRecord holds the immutable per-listing facts for a single vehicle.
// Instances are normalized once at load time and never mutated afterward.
type VehicleRecord struct {
	ID               string  `json:"id"`                 // stable identifier, e.g. "TOYOTA_CAMRY_2020_1"
	Make             string  `json:"make"`               // upper-cased manufacturer name
	Model            string  `json:"model"`              // upper-cased model name
	Year             int     `json:"year"`               // model year
	Price            float64 `json:"price"`              // asking price, currency units, > 0
	SafetyRating     float64 `json:"safety_rating"`      // 0-5 stars
	ReliabilityScore float64 `json:"reliability_score"`  // 0-1, may be a dataset default
	Mileage          float64 `json:"mileage"`            // odometer reading
	ComplaintCount   int     `json:"complaint_count"`    // aggregated complaint records
	HasComplaintData bool    `json:"has_complaint_data"` // false when the complaint source had no match
	DepreciationRate float64 `json:"depreciation_rate"`  // baseline depreciation already incurred
}

// Age returns the vehicle age relative to the given reference year, floored at zero.
func (v VehicleRecord) Age(referenceYear int) int {
	age := referenceYear - v.Year
	if age < 0 {
		return 0
	}
	return age
}

// Label returns the human-readable "2020 TOYOTA CAMRY" form.
func (v VehicleRecord) Label() string {
	return fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
}

// Normalize clamps score fields into their declared ranges and upper-cases names.
// It returns an error for facts that cannot be repaired (non-positive price,
// implausible model year).
func (v *VehicleRecord) Normalize() error {
	if v.Price <= 0 {
		return fmt.Errorf("vehicle %s: price must be positive, got %.2f", v.ID, v.Price)
	}
	if v.Year < MinModelYear || v.Year > MaxModelYear {
		return fmt.Errorf("vehicle %s: model year %d outside plausible range [%d, %d]",
			v.ID, v.Year, MinModelYear, MaxModelYear)
	}

	v.Make = strings.ToUpper(strings.TrimSpace(v.Make))
	v.Model = strings.ToUpper(strings.TrimSpace(v.Model))
	v.SafetyRating = clamp(v.SafetyRating, 0, 5)
	v.ReliabilityScore = clamp(v.ReliabilityScore, 0, 1)
	if v.Mileage < 0 {
		v.Mileage = 0
	}
	if v.ComplaintCount < 0 {
		v.ComplaintCount = 0
	}
	return nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
