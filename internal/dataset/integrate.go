package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Raw dataset file names inside the raw data directory.
const (
	priceFile      = "used_car_prices.csv"
	safetyFile     = "nhtsa_safety_ratings.csv"
	complaintsFile = "nhtsa_complaints.csv"

	// The complaints dump is huge; the first N rows are plenty for
	// per-model aggregation.
	maxComplaintRows = 100000
)

// Integrator merges the price, safety, and complaint datasets into the one
// integrated CSV the recommendation pipeline loads. Price data is required;
// the other two enrich it when present.
type Integrator struct {
	rawDir  string
	verbose bool
}

// NewIntegrator creates an integrator over the given raw data directory.
func NewIntegrator(rawDir string, verbose bool) *Integrator {
	return &Integrator{rawDir: rawDir, verbose: verbose}
}

type listing struct {
	make      string
	model     string
	modelNorm string
	year      int
	price     float64
	mileage   float64
}

// Integrate builds the integrated dataset and writes it to outPath.
func (it *Integrator) Integrate(outPath string) (int, error) {
	listings, err := it.loadListings()
	if err != nil {
		return 0, err
	}
	it.logf("loaded %d price listings", len(listings))

	safety, err := it.loadSafetyRatings()
	if err != nil {
		return 0, err
	}
	it.logf("loaded %d safety ratings", len(safety))

	complaints, hasComplaints, err := it.loadComplaintCounts()
	if err != nil {
		return 0, err
	}
	it.logf("aggregated complaints for %d vehicle combinations", len(complaints))

	maxComplaints := 0
	for _, n := range complaints {
		if n > maxComplaints {
			maxComplaints = n
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	defer func() { _ = out.Close() }()

	w := csv.NewWriter(out)
	header := []string{"make", "model", "year", "price", "mileage", "overall_rating", "reliability_score"}
	if hasComplaints {
		header = append(header, "complaint_count")
	}
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	written := 0
	for _, l := range listings {
		key := mergeKey(l.make, l.modelNorm, l.year)

		rating := 3.0 // default when no NHTSA rating matches
		if r, ok := safety[key]; ok {
			rating = r
		}

		count := complaints[key]
		reliability := 1.0
		if maxComplaints > 0 {
			// More complaints relative to the worst offender lowers the
			// score; the +100 damps small-sample extremes.
			reliability = 1.0 - float64(count)/float64(maxComplaints+100)
			if reliability < 0 {
				reliability = 0
			}
		}

		row := []string{
			l.make,
			l.model,
			strconv.Itoa(l.year),
			strconv.FormatFloat(l.price, 'f', 2, 64),
			strconv.FormatFloat(l.mileage, 'f', 1, 64),
			strconv.FormatFloat(rating, 'f', 1, 64),
			strconv.FormatFloat(reliability, 'f', 4, 64),
		}
		if hasComplaints {
			row = append(row, strconv.Itoa(count))
		}
		if err := w.Write(row); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
		written++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush output: %w", err)
	}
	it.logf("wrote %d integrated records to %s", written, outPath)
	return written, nil
}

func (it *Integrator) loadListings() ([]listing, error) {
	path := filepath.Join(it.rawDir, priceFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("price data is required: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read price header: %w", err)
	}
	idx := indexColumns(header)
	if !idx.complete() {
		return nil, fmt.Errorf("%s: could not locate make/model/year/price columns", path)
	}

	var listings []listing
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read price data: %w", err)
		}

		get := func(i int) string {
			if i < 0 || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		mk := strings.ToUpper(get(idx.make))
		mdl := strings.ToUpper(get(idx.model))
		year, yearErr := strconv.Atoi(get(idx.year))
		price, priceOK := CleanPrice(get(idx.price))
		if mk == "" || mdl == "" || yearErr != nil || !priceOK || price <= 0 {
			continue
		}

		l := listing{
			make:      mk,
			model:     mdl,
			modelNorm: NormalizeModelName(mdl),
			year:      year,
			price:     price,
		}
		if m, ok := CleanMileage(get(idx.mileage)); ok {
			l.mileage = m
		}
		listings = append(listings, l)
	}

	if len(listings) == 0 {
		return nil, fmt.Errorf("%s: no usable price listings", path)
	}
	return listings, nil
}

// loadSafetyRatings reads the NHTSA ratings keyed by make, normalized model,
// and year. A missing file is not an error; every listing then defaults.
func (it *Integrator) loadSafetyRatings() (map[string]float64, error) {
	path := filepath.Join(it.rawDir, safetyFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			it.logf("no safety data at %s, using defaults", path)
			return map[string]float64{}, nil
		}
		return nil, fmt.Errorf("open safety data: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read safety header: %w", err)
	}

	makeCol, modelCol, yearCol, starsCol := -1, -1, -1, -1
	for i, col := range header {
		switch strings.ToUpper(strings.TrimSpace(col)) {
		case "MAKE":
			makeCol = i
		case "MODEL":
			modelCol = i
		case "MODEL_YR":
			yearCol = i
		case "OVERALL_STARS":
			starsCol = i
		}
	}
	if makeCol < 0 || modelCol < 0 || yearCol < 0 || starsCol < 0 {
		it.logf("safety data missing expected columns, using defaults")
		return map[string]float64{}, nil
	}

	ratings := make(map[string]float64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read safety data: %w", err)
		}
		if starsCol >= len(record) || makeCol >= len(record) || modelCol >= len(record) || yearCol >= len(record) {
			continue
		}

		stars, err := strconv.ParseFloat(strings.TrimSpace(record[starsCol]), 64)
		if err != nil {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[yearCol]))
		if err != nil {
			continue
		}

		mk := strings.ToUpper(strings.TrimSpace(record[makeCol]))
		norm := NormalizeModelName(record[modelCol])
		ratings[mergeKey(mk, norm, year)] = stars
	}
	return ratings, nil
}

// loadComplaintCounts aggregates NHTSA complaints per make, normalized model,
// and year. The second return reports whether complaint data existed at all.
func (it *Integrator) loadComplaintCounts() (map[string]int, bool, error) {
	path := filepath.Join(it.rawDir, complaintsFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			it.logf("no complaints data at %s", path)
			return map[string]int{}, false, nil
		}
		return nil, false, fmt.Errorf("open complaints data: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, false, fmt.Errorf("read complaints header: %w", err)
	}

	makeCol, modelCol, yearCol := -1, -1, -1
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		switch {
		case makeCol < 0 && strings.Contains(name, "make"):
			makeCol = i
		case modelCol < 0 && strings.Contains(name, "model") && !strings.Contains(name, "year") && !strings.Contains(name, "yr"):
			modelCol = i
		case yearCol < 0 && (strings.Contains(name, "year") || strings.Contains(name, "yr")):
			yearCol = i
		}
	}
	if makeCol < 0 || modelCol < 0 || yearCol < 0 {
		it.logf("complaints data missing expected columns")
		return map[string]int{}, false, nil
	}

	counts := make(map[string]int)
	rows := 0
	for rows < maxComplaintRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, fmt.Errorf("read complaints data: %w", err)
		}
		rows++

		if makeCol >= len(record) || modelCol >= len(record) || yearCol >= len(record) {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[yearCol]))
		if err != nil {
			continue
		}
		mk := strings.ToUpper(strings.TrimSpace(record[makeCol]))
		norm := NormalizeModelName(record[modelCol])
		counts[mergeKey(mk, norm, year)]++
	}
	return counts, true, nil
}

func mergeKey(mk, modelNorm string, year int) string {
	return fmt.Sprintf("%s|%s|%d", mk, modelNorm, year)
}

func (it *Integrator) logf(format string, args ...any) {
	if it.verbose {
		fmt.Fprintf(os.Stderr, "[integrate] "+format+"\n", args...)
	}
}
