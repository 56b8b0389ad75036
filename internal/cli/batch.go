package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/carscout/carscout/internal/dataset"
	"github.com/carscout/carscout/internal/recommend"
	"github.com/carscout/carscout/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run multiple recommendation profiles from a file in parallel",
	Long: `Batch processes multiple query profiles concurrently:
- Read named profiles from a YAML file
- Run each query in parallel with configurable worker count
- All profiles share one loaded inventory
- Generate individual reports for each profile

Example:
  carscout batch profiles.yaml
  carscout batch profiles.yaml --concurrency 8 --output-dir ./reports
  carscout batch profiles.yaml --timeout 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchCmd,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./carscout-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&dataPath, "data", "data/integrated_cars.csv", "integrated dataset path")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().StringVar(&engineName, "classifier", "cel", "rule classifier engine (cel, swipl, none)")
	batchCmd.Flags().StringVar(&rulesPath, "rules", "", "rule file path (YAML for cel, Prolog for swipl)")
	batchCmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "disable the knowledge-base matcher")
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = concurrency

	vehicles, err := dataset.Load(dataPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Batch: %s, %d vehicles, %d workers, output %s\n",
		file, len(vehicles), concurrency, outputDir)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p, err := recommend.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	processor := worker.NewBatchProcessor(p, concurrency)
	results, err := processor.ProcessFile(ctx, vehicles, file)
	if err != nil {
		return err
	}

	renderer := recommend.NewRenderer(cfg.Output.IncludeFooter)
	failures := 0
	for _, res := range results {
		if res.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Profile.Name, res.Error)
			continue
		}
		if err := writeProfileReports(renderer, res); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Profile.Name, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s: %d recommendations\n",
			res.Profile.Name, len(res.Report.Recommendations))
	}

	fmt.Fprintf(os.Stderr, "\nCompleted %d profiles, %d failed\n", len(results), failures)
	if failures > 0 {
		return fmt.Errorf("%d of %d profiles failed", failures, len(results))
	}
	return nil
}

func writeProfileReports(renderer *recommend.Renderer, res *worker.RecommendResult) error {
	jsonPath := res.Profile.JSONOut
	if jsonPath == "" {
		jsonPath = filepath.Join(outputDir, res.Profile.Name+".json")
	}
	if err := renderer.RenderJSON(res.Report, jsonPath); err != nil {
		return err
	}

	mdPath := res.Profile.MarkdOut
	if mdPath == "" {
		mdPath = filepath.Join(outputDir, res.Profile.Name+".md")
	}
	return renderer.RenderMarkdown(res.Report, mdPath)
}
