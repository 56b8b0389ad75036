package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carscout/carscout/internal/dataset"
)

var (
	rawDir       string
	integrateOut string
)

// integrateCmd represents the integrate command
var integrateCmd = &cobra.Command{
	Use:   "integrate",
	Short: "Merge the raw datasets into the integrated vehicle CSV",
	Long: `Integrate merges the three raw datasets into one pipeline-ready CSV:
- used_car_prices.csv       (required: the listings themselves)
- nhtsa_safety_ratings.csv  (optional: overall star ratings)
- nhtsa_complaints.csv      (optional: complaint counts per model)

Vehicles are matched across datasets on make, normalized model name, and
model year. Listings without a safety match default to a 3.0 rating;
complaint counts feed the dataset-level reliability score.

Example:
  carscout integrate
  carscout integrate --raw-dir ./raw_data --out data/integrated_cars.csv`,
	RunE: runIntegrate,
}

func init() {
	rootCmd.AddCommand(integrateCmd)

	integrateCmd.Flags().StringVar(&rawDir, "raw-dir", "raw_data", "directory holding the raw CSVs")
	integrateCmd.Flags().StringVar(&integrateOut, "out", "data/integrated_cars.csv", "output path for the integrated CSV")
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	integrator := dataset.NewIntegrator(rawDir, verbose)

	n, err := integrator.Integrate(integrateOut)
	if err != nil {
		return fmt.Errorf("integration failed: %w", err)
	}

	fmt.Printf("✓ Integrated %d records into %s\n", n, integrateOut)
	return nil
}
