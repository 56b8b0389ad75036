package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/carscout/carscout/internal/dataset"
	"github.com/carscout/carscout/internal/model"
	"github.com/carscout/carscout/internal/recommend"
)

var (
	dataPath       string
	outJSON        string
	outMD          string
	runTimeout     time.Duration
	noFooter       bool
	engineName     string
	rulesPath      string
	noSemantic     bool
	llmEnabled     bool
	llmProvider    string
	llmModel       string
	maxPrice       float64
	minYear        int
	maxYear        int
	minSafety      float64
	minReliability float64
	maxMileage     float64
	category       string
	years          int
	topN           int
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank vehicles against your constraints and explain the result",
	Long: `Recommend runs one query over the integrated vehicle dataset:
- Filter vehicles by hard constraints (price, year, safety, reliability, mileage)
- Estimate failure probability and repair cost over the ownership horizon
- Project depreciation and total cost of ownership year by year
- Collect expert rule categories and knowledge-base concept matches
- Combine everything into a ranked, explained recommendation list

Example:
  carscout recommend --max-price 25000 --min-safety 4.0
  carscout recommend --max-price 20000 --category family_car --json report.json --md report.md
  carscout recommend --max-price 30000 --llm --llm-provider openai`,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	// Data and output flags
	recommendCmd.Flags().StringVar(&dataPath, "data", "data/integrated_cars.csv", "integrated dataset path")
	recommendCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	recommendCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	recommendCmd.Flags().DurationVar(&runTimeout, "timeout", 2*time.Minute, "overall run timeout")
	recommendCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Query flags
	recommendCmd.Flags().Float64Var(&maxPrice, "max-price", 0, "maximum price (0 = unconstrained)")
	recommendCmd.Flags().IntVar(&minYear, "min-year", 0, "minimum model year")
	recommendCmd.Flags().IntVar(&maxYear, "max-year", 0, "maximum model year")
	recommendCmd.Flags().Float64Var(&minSafety, "min-safety", 0, "minimum safety rating (0-5)")
	recommendCmd.Flags().Float64Var(&minReliability, "min-reliability", 0, "minimum reliability score (0-1)")
	recommendCmd.Flags().Float64Var(&maxMileage, "max-mileage", 0, "maximum mileage")
	recommendCmd.Flags().StringVar(&category, "category", "", "desired rule category (e.g. family_car)")
	recommendCmd.Flags().IntVar(&years, "years", 0, "ownership horizon in years (default 5)")
	recommendCmd.Flags().IntVar(&topN, "top", 0, "number of recommendations (default 10)")

	// Collaborator flags
	recommendCmd.Flags().StringVar(&engineName, "classifier", "cel", "rule classifier engine (cel, swipl, none)")
	recommendCmd.Flags().StringVar(&rulesPath, "rules", "", "rule file path (YAML for cel, Prolog for swipl)")
	recommendCmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "disable the knowledge-base matcher")

	// LLM flags
	recommendCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable the advisor narrative")
	recommendCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	recommendCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	vehicles, err := dataset.Load(dataPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d vehicles from %s\n", len(vehicles), dataPath)
	}

	q := model.Query{
		MaxPrice:       maxPrice,
		MinYear:        minYear,
		MaxYear:        maxYear,
		MinSafety:      minSafety,
		MinReliability: minReliability,
		MaxMileage:     maxMileage,
		Category:       category,
		Years:          years,
		TopN:           topN,
	}

	p, err := recommend.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	report, err := p.Run(ctx, vehicles, q)
	if err != nil {
		return fmt.Errorf("recommendation run failed: %w", err)
	}

	renderer := recommend.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", outMD)
		}
	}

	renderer.PrintSummary(report, os.Stdout)
	return nil
}

// buildConfig assembles the pipeline configuration from defaults plus flags.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	cfg.Classifier.Engine = engineName
	cfg.Classifier.RulesPath = rulesPath
	cfg.Semantic.Enabled = !noSemantic

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel

		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}
