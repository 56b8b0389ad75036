package model

import (
	"errors"
	"fmt"
)

// ErrInvalidConstraint marks caller-supplied constraints that must abort the
// pipeline before filtering runs. Every other failure mode degrades instead.
var ErrInvalidConstraint = errors.New("invalid constraint")

// Query holds the user's search constraints plus the ownership horizon.
// Zero values mean "unconstrained" for the bound fields.
type Query struct {
	MaxPrice       float64 `json:"max_price,omitempty" yaml:"max_price,omitempty"`
	MinYear        int     `json:"min_year,omitempty" yaml:"min_year,omitempty"`
	MaxYear        int     `json:"max_year,omitempty" yaml:"max_year,omitempty"`
	MinSafety      float64 `json:"min_safety,omitempty" yaml:"min_safety,omitempty"`
	MinReliability float64 `json:"min_reliability,omitempty" yaml:"min_reliability,omitempty"`
	MaxMileage     float64 `json:"max_mileage,omitempty" yaml:"max_mileage,omitempty"`
	Category       string  `json:"category,omitempty" yaml:"category,omitempty"` // desired rule category
	Years          int     `json:"years,omitempty" yaml:"years,omitempty"`       // ownership horizon, default 5
	TopN           int     `json:"top_n,omitempty" yaml:"top_n,omitempty"`       // result cap, default 10
}

// Validate rejects malformed constraint sets with ErrInvalidConstraint.
// Unsatisfiable-but-well-formed constraints are not an error; they simply
// filter down to an empty set.
func (q Query) Validate() error {
	if q.MaxPrice < 0 {
		return fmt.Errorf("%w: max price must not be negative, got %.2f", ErrInvalidConstraint, q.MaxPrice)
	}
	if q.MaxMileage < 0 {
		return fmt.Errorf("%w: max mileage must not be negative, got %.0f", ErrInvalidConstraint, q.MaxMileage)
	}
	if q.MinYear != 0 && (q.MinYear < MinModelYear || q.MinYear > MaxModelYear) {
		return fmt.Errorf("%w: min year %d outside [%d, %d]", ErrInvalidConstraint, q.MinYear, MinModelYear, MaxModelYear)
	}
	if q.MaxYear != 0 && (q.MaxYear < MinModelYear || q.MaxYear > MaxModelYear) {
		return fmt.Errorf("%w: max year %d outside [%d, %d]", ErrInvalidConstraint, q.MaxYear, MinModelYear, MaxModelYear)
	}
	if q.MinYear != 0 && q.MaxYear != 0 && q.MinYear > q.MaxYear {
		return fmt.Errorf("%w: min year %d greater than max year %d", ErrInvalidConstraint, q.MinYear, q.MaxYear)
	}
	if q.MinSafety < 0 || q.MinSafety > 5 {
		return fmt.Errorf("%w: min safety %.1f outside [0, 5]", ErrInvalidConstraint, q.MinSafety)
	}
	if q.MinReliability < 0 || q.MinReliability > 1 {
		return fmt.Errorf("%w: min reliability %.2f outside [0, 1]", ErrInvalidConstraint, q.MinReliability)
	}
	if q.Years < 0 {
		return fmt.Errorf("%w: ownership horizon must not be negative, got %d", ErrInvalidConstraint, q.Years)
	}
	if q.TopN < 0 {
		return fmt.Errorf("%w: result count must not be negative, got %d", ErrInvalidConstraint, q.TopN)
	}
	return nil
}

// Horizon returns the ownership horizon in years, applying the default.
func (q Query) Horizon() int {
	if q.Years <= 0 {
		return DefaultOwnershipYears
	}
	return q.Years
}

// Limit returns the result cap, applying the default.
func (q Query) Limit() int {
	if q.TopN <= 0 {
		return DefaultTopN
	}
	return q.TopN
}
