package filter

import (
	"fmt"
	"strings"

	"github.com/carscout/carscout/internal/model"
)

// Constraint is a single named predicate over a vehicle. A vehicle passes the
// filter only when every constraint holds (propositional AND).
type Constraint struct {
	Name     string
	Describe string
	Check    func(model.VehicleRecord) bool
}

// Build converts a validated query into its constraint conjunction.
// It returns model.ErrInvalidConstraint for malformed queries; an empty
// constraint list (match everything) is legal.
func Build(q model.Query) ([]Constraint, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var cs []Constraint

	if q.MaxPrice > 0 {
		max := q.MaxPrice
		cs = append(cs, Constraint{
			Name:     "max_price",
			Describe: fmt.Sprintf("price <= %.0f", max),
			Check:    func(v model.VehicleRecord) bool { return v.Price <= max },
		})
	}
	if q.MinYear > 0 {
		min := q.MinYear
		cs = append(cs, Constraint{
			Name:     "min_year",
			Describe: fmt.Sprintf("year >= %d", min),
			Check:    func(v model.VehicleRecord) bool { return v.Year >= min },
		})
	}
	if q.MaxYear > 0 {
		max := q.MaxYear
		cs = append(cs, Constraint{
			Name:     "max_year",
			Describe: fmt.Sprintf("year <= %d", max),
			Check:    func(v model.VehicleRecord) bool { return v.Year <= max },
		})
	}
	if q.MinSafety > 0 {
		min := q.MinSafety
		cs = append(cs, Constraint{
			Name:     "min_safety",
			Describe: fmt.Sprintf("safety >= %.1f", min),
			Check:    func(v model.VehicleRecord) bool { return v.SafetyRating >= min },
		})
	}
	if q.MinReliability > 0 {
		min := q.MinReliability
		cs = append(cs, Constraint{
			Name:     "min_reliability",
			Describe: fmt.Sprintf("reliability >= %.2f", min),
			Check:    func(v model.VehicleRecord) bool { return v.ReliabilityScore >= min },
		})
	}
	if q.MaxMileage > 0 {
		max := q.MaxMileage
		cs = append(cs, Constraint{
			Name:     "max_mileage",
			Describe: fmt.Sprintf("mileage <= %.0f", max),
			Check:    func(v model.VehicleRecord) bool { return v.Mileage <= max },
		})
	}

	return cs, nil
}

// Apply returns the subset of vehicles satisfying every constraint, in the
// original order. An unsatisfiable conjunction yields an empty slice, not an
// error. Pure function: neither input is modified.
func Apply(vehicles []model.VehicleRecord, cs []Constraint) []model.VehicleRecord {
	out := make([]model.VehicleRecord, 0, len(vehicles))
	for _, v := range vehicles {
		if satisfiesAll(v, cs) {
			out = append(out, v)
		}
	}
	return out
}

func satisfiesAll(v model.VehicleRecord, cs []Constraint) bool {
	for _, c := range cs {
		if !c.Check(v) {
			return false
		}
	}
	return true
}

// Summary renders the active constraints for verbose output.
func Summary(cs []Constraint) string {
	if len(cs) == 0 {
		return "Constraints: none"
	}
	lines := []string{"Constraints:"}
	for _, c := range cs {
		lines = append(lines, fmt.Sprintf("  - %s: %s", c.Name, c.Describe))
	}
	return strings.Join(lines, "\n")
}
