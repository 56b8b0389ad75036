package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/carscout/carscout/internal/model"
)

// columnIndex locates dataset columns by case-insensitive substring match.
// The raw datasets disagree on exact header names ("Year", "model_year",
// "MODEL_YR"), so matching is fuzzy on purpose.
type columnIndex struct {
	make        int
	model       int
	year        int
	price       int
	mileage     int
	safety      int
	complaints  int
	reliability int
	deprec      int
}

func indexColumns(header []string) columnIndex {
	idx := columnIndex{
		make: -1, model: -1, year: -1, price: -1, mileage: -1,
		safety: -1, complaints: -1, reliability: -1, deprec: -1,
	}
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		switch {
		case idx.make < 0 && strings.Contains(name, "make"):
			idx.make = i
		case idx.model < 0 && strings.Contains(name, "model") && !strings.Contains(name, "year") && !strings.Contains(name, "yr"):
			idx.model = i
		case idx.year < 0 && (strings.Contains(name, "year") || strings.Contains(name, "yr")):
			idx.year = i
		case idx.price < 0 && strings.Contains(name, "price"):
			idx.price = i
		case idx.mileage < 0 && (strings.Contains(name, "mile") || strings.Contains(name, "milage")):
			idx.mileage = i
		case idx.safety < 0 && (strings.Contains(name, "rating") || strings.Contains(name, "stars")):
			idx.safety = i
		case idx.complaints < 0 && strings.Contains(name, "complaint"):
			idx.complaints = i
		case idx.reliability < 0 && strings.Contains(name, "reliability"):
			idx.reliability = i
		case idx.deprec < 0 && strings.Contains(name, "depreciation"):
			idx.deprec = i
		}
	}
	return idx
}

func (idx columnIndex) complete() bool {
	return idx.make >= 0 && idx.model >= 0 && idx.year >= 0 && idx.price >= 0
}

// Load reads the integrated vehicle CSV into records. Rows with an unusable
// make, model, year, or price are skipped, not fatal: the raw datasets are
// messy and one bad listing must not sink the inventory.
func Load(path string) ([]model.VehicleRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parse(f, path)
}

func parse(r io.Reader, source string) ([]model.VehicleRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header from %s: %w", source, err)
	}

	idx := indexColumns(header)
	if !idx.complete() {
		return nil, fmt.Errorf("%s: could not locate make/model/year/price columns in header %v", source, header)
	}

	hasComplaintColumn := idx.complaints >= 0

	var vehicles []model.VehicleRecord
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", source, row+2, err)
		}
		row++

		v, ok := buildRecord(record, idx, row)
		if !ok {
			continue
		}
		v.HasComplaintData = hasComplaintColumn
		if err := v.Normalize(); err != nil {
			continue
		}
		vehicles = append(vehicles, v)
	}

	if len(vehicles) == 0 {
		return nil, fmt.Errorf("%s: no usable vehicle records", source)
	}
	return vehicles, nil
}

func buildRecord(record []string, idx columnIndex, row int) (model.VehicleRecord, bool) {
	get := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	mk := strings.ToUpper(get(idx.make))
	mdl := strings.ToUpper(get(idx.model))
	if mk == "" || mdl == "" {
		return model.VehicleRecord{}, false
	}

	year, err := strconv.Atoi(get(idx.year))
	if err != nil {
		return model.VehicleRecord{}, false
	}

	price, ok := CleanPrice(get(idx.price))
	if !ok || price <= 0 {
		return model.VehicleRecord{}, false
	}

	v := model.VehicleRecord{
		ID:    fmt.Sprintf("%s-%s-%d-%05d", slug(mk), slug(mdl), year, row),
		Make:  mk,
		Model: mdl,
		Year:  year,
		Price: price,
	}

	if m, ok := CleanMileage(get(idx.mileage)); ok {
		v.Mileage = m
	}
	if s, err := strconv.ParseFloat(get(idx.safety), 64); err == nil {
		v.SafetyRating = s
	} else {
		v.SafetyRating = 3.0 // dataset default when no NHTSA rating merged
	}
	// Complaint counts come back as "12" or "12.0" depending on the merge
	if c, err := strconv.ParseFloat(get(idx.complaints), 64); err == nil && c >= 0 {
		v.ComplaintCount = int(c)
	}
	if r, err := strconv.ParseFloat(get(idx.reliability), 64); err == nil {
		v.ReliabilityScore = r
	}
	if d, err := strconv.ParseFloat(get(idx.deprec), 64); err == nil {
		v.DepreciationRate = d
	}

	return v, true
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), " ", "_")
}
