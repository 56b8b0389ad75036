package ownership

import (
	"github.com/carscout/carscout/internal/model"
)

// Projector runs the deterministic year-by-year depreciation and total cost
// of ownership simulation. No randomness: identical inputs always produce
// identical projections. Stateless; safe for concurrent use.
type Projector struct {
	dep           model.DepreciationConfig
	maint         model.MaintenanceConfig
	referenceYear int
}

// NewProjector creates a projector for the given reference year.
func NewProjector(dep model.DepreciationConfig, maint model.MaintenanceConfig, referenceYear int) *Projector {
	return &Projector{dep: dep, maint: maint, referenceYear: referenceYear}
}

// Project simulates `years` of ownership for one vehicle.
//
// The effective depreciation rate is recomputed every simulated year because
// the vehicle's age advances and feeds back into the age adjustment:
//
//	rate_t = (base_t + age_rate * age_t) * (1 - credit * reliability) * make_mult
//
// where base_1 is the first-year rate and base_t>1 the subsequent base rate.
// Values are clamped at zero; a vehicle cannot have negative resale value.
func (p *Projector) Project(v model.VehicleRecord, years int) model.OwnershipProjection {
	if years < 1 {
		years = 1
	}

	startAge := v.Age(p.referenceYear)
	reliabilityFactor := 1 - p.dep.ReliabilityCredit*clamp01(v.ReliabilityScore)
	if reliabilityFactor < 0 {
		reliabilityFactor = 0
	}
	makeMult := p.dep.MultiplierFor(v.Make)

	values := make([]model.YearValue, 0, years+1)
	values = append(values, model.YearValue{Year: 0, Value: v.Price})

	value := v.Price
	var maintenance float64

	for t := 1; t <= years; t++ {
		// Age at the start of simulated year t.
		age := startAge + t - 1

		base := p.dep.BaseRate
		if t == 1 {
			base = p.dep.FirstYearRate
		}

		rate := (base + p.dep.AgeRate*float64(age)) * reliabilityFactor * makeMult
		if rate < 0 {
			rate = 0
		}
		if rate > 1 {
			rate = 1
		}

		value *= 1 - rate
		if value < 0 {
			value = 0
		}
		values = append(values, model.YearValue{Year: t, Value: value})

		maintenance += p.annualMaintenance(age, v.Mileage)
	}

	resale := values[len(values)-1].Value
	total := v.Price + maintenance - resale

	return model.OwnershipProjection{
		Years:               years,
		Values:              values,
		ResaleValue:         resale,
		TotalDepreciation:   v.Price - resale,
		ValueRetention:      resale / v.Price,
		MaintenanceEstimate: maintenance,
		TotalCost:           total,
		CostPerYear:         total / float64(years),
	}
}

// annualMaintenance estimates one year of upkeep from vehicle age and the
// mileage already on the odometer, independent of the depreciation schedule.
func (p *Projector) annualMaintenance(age int, mileage float64) float64 {
	cost := p.maint.BaseAnnual*(1+p.maint.AgeGrowth*float64(age)) + p.maint.PerMile*mileage
	if cost < 0 {
		return 0
	}
	return cost
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
