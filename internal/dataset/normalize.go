package dataset

import (
	"regexp"
	"strconv"
	"strings"
)

// Model names arrive with trim levels, drivetrain tags, and engine sizes
// baked in ("CAMRY XLE 2.5L AWD"). Matching across the price, safety, and
// complaint datasets only works on the stripped base name.
var trimPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bBASE\b`), regexp.MustCompile(`\bSE\b`),
	regexp.MustCompile(`\bSEL\b`), regexp.MustCompile(`\bLIMITED\b`),
	regexp.MustCompile(`\bSPORT\b`), regexp.MustCompile(`\bLX\b`),
	regexp.MustCompile(`\bEX\b`), regexp.MustCompile(`\bDX\b`),
	regexp.MustCompile(`\bLE\b`), regexp.MustCompile(`\bXLE\b`),
	regexp.MustCompile(`\bSR\b`), regexp.MustCompile(`\bLT\b`),
	regexp.MustCompile(`\bLS\b`), regexp.MustCompile(`\bLTZ\b`),
	regexp.MustCompile(`\bPREMIUM\b`), regexp.MustCompile(`\bPLUS\b`),
	regexp.MustCompile(`\bS\s+LINE\b`), regexp.MustCompile(`\bLUXURY\b`),
	regexp.MustCompile(`\bTOURING\b`), regexp.MustCompile(`\bAWD\b`),
	regexp.MustCompile(`\bFWD\b`), regexp.MustCompile(`\b4WD\b`),
	regexp.MustCompile(`\b2WD\b`), regexp.MustCompile(`\bHYBRID\b`),
	regexp.MustCompile(`\bELECTRIC\b`), regexp.MustCompile(`\bDENALI\b`),
	regexp.MustCompile(`\bSLT\b`), regexp.MustCompile(`\bHIGHLAND\b`),
	regexp.MustCompile(`\bLARIAT\b`), regexp.MustCompile(`\bXLT\b`),
	regexp.MustCompile(`\bKING\s+RANCH\b`), regexp.MustCompile(`\bPLATINUM\b`),
	regexp.MustCompile(`\bTRAILHAWK\b`), regexp.MustCompile(`\bLATITUDE\b`),
	regexp.MustCompile(`\bALTITUDE\b`),
}

var descriptorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bLONG\s+RANGE\b`),
	regexp.MustCompile(`\bDUAL\s+CAB\b`),
	regexp.MustCompile(`\bCREW\s+CAB\b`),
	regexp.MustCompile(`\bEXTENDED\s+CAB\b`),
	regexp.MustCompile(`\bREGULAR\s+CAB\b`),
}

var (
	displacementPattern = regexp.MustCompile(`\b\d+\.\d+L?\b`)
	multiSpacePattern   = regexp.MustCompile(`\s+`)
	priceJunkPattern    = regexp.MustCompile(`[$,]`)
	mileageJunkPattern  = regexp.MustCompile(`(?i)[,\s]|mi\.?`)
)

// NormalizeModelName strips trim levels, drivetrain tags, cab styles, and
// engine displacements, then keeps at most the first two words.
func NormalizeModelName(name string) string {
	model := strings.ToUpper(strings.TrimSpace(name))
	if model == "" {
		return ""
	}

	for _, p := range trimPatterns {
		model = p.ReplaceAllString(model, "")
	}
	for _, p := range descriptorPatterns {
		model = p.ReplaceAllString(model, "")
	}
	model = displacementPattern.ReplaceAllString(model, "")
	model = strings.TrimSpace(multiSpacePattern.ReplaceAllString(model, " "))

	words := strings.Fields(model)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

// CleanPrice parses a price cell, tolerating "$18,500" style formatting.
func CleanPrice(raw string) (float64, bool) {
	cleaned := priceJunkPattern.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CleanMileage parses a mileage cell, tolerating "42,000 mi." style formatting.
func CleanMileage(raw string) (float64, bool) {
	cleaned := mileageJunkPattern.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
