package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cars.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"make,model,year,price,mileage,overall_rating,reliability_score,complaint_count",
		"Toyota,Camry,2020,\"$22,000\",\"45,000 mi.\",4.8,0.91,12.0",
		"Honda,Civic,2018,16000,70000,4.4,0.82,8",
		",,2019,15000,50000,4.0,0.8,0",       // no make/model: skipped
		"Ford,Focus,bad-year,9000,,,0.6,",    // unparseable year: skipped
		"Kia,Soul,2021,0,30000,4.1,0.78,3",   // zero price: skipped
	}, "\n"))

	vehicles, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(vehicles) != 2 {
		t.Fatalf("expected 2 usable records, got %d", len(vehicles))
	}

	camry := vehicles[0]
	if camry.Make != "TOYOTA" || camry.Model != "CAMRY" || camry.Year != 2020 {
		t.Errorf("unexpected first record: %s", camry.Label())
	}
	if camry.Price != 22000 {
		t.Errorf("price formatting not cleaned: %f", camry.Price)
	}
	if camry.Mileage != 45000 {
		t.Errorf("mileage formatting not cleaned: %f", camry.Mileage)
	}
	if camry.SafetyRating != 4.8 || camry.ReliabilityScore != 0.91 {
		t.Errorf("scores not parsed: %f / %f", camry.SafetyRating, camry.ReliabilityScore)
	}
	// "12.0" style counts still parse to an integer.
	if camry.ComplaintCount != 12 {
		t.Errorf("complaint count not parsed: %d", camry.ComplaintCount)
	}
	if !camry.HasComplaintData {
		t.Error("complaint column present, flag must be set")
	}
	if camry.ID == "" || camry.ID == vehicles[1].ID {
		t.Error("records need distinct non-empty IDs")
	}
}

func TestLoad_NoComplaintColumn(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"make,model,year,price",
		"Toyota,Corolla,2019,15000",
	}, "\n"))

	vehicles, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if vehicles[0].HasComplaintData {
		t.Error("no complaint column, flag must stay false")
	}
	// No merged NHTSA rating: the documented dataset default applies.
	if vehicles[0].SafetyRating != 3.0 {
		t.Errorf("expected default safety 3.0, got %f", vehicles[0].SafetyRating)
	}
}

func TestLoad_FuzzyHeaders(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"MAKE,MODEL,MODEL_YR,Asking Price,Milage,OVERALL_STARS",
		"Subaru,Outback,2020,27000,38000,4.9",
	}, "\n"))

	vehicles, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	v := vehicles[0]
	if v.Year != 2020 || v.Price != 27000 || v.Mileage != 38000 || v.SafetyRating != 4.9 {
		t.Errorf("fuzzy header mapping failed: %+v", v)
	}
}

func TestLoad_MissingRequiredColumns(t *testing.T) {
	path := writeCSV(t, "color,seats\nred,5\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error when make/model/year/price columns are absent")
	}
}

func TestLoad_NoUsableRows(t *testing.T) {
	path := writeCSV(t, "make,model,year,price\n,,2020,0\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error when every row is unusable")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
