package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/carscout/carscout/internal/model"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Advise generates a buyer-facing narrative for a finished report
	Advise(ctx context.Context, req AdviseRequest) (*AdviseResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// AdviseRequest contains the input for advisor generation.
type AdviseRequest struct {
	// Report is the finished recommendation report. Scores and ranks are
	// already final; the advisor only narrates them.
	Report model.Report

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// AdviseResponse contains the advisor's output.
type AdviseResponse struct {
	// Summary is the generated narrative text
	Summary string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 600,
	}
}

const systemPrompt = "You are a used-car buying advisor. You narrate a finished " +
	"recommendation report; the ranking is already computed and you never change it."

// BuildPrompt constructs the default advisor prompt from a finished report.
// The advisor is constrained to the report contents; it narrates the ranking
// and must not invent vehicles, prices, or rankings of its own.
func BuildPrompt(report model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are advising a used-car buyer. A scoring pipeline already ranked the candidates below.

CRITICAL RULES:
1. Discuss ONLY the vehicles listed below. Do not invent vehicles, prices, or data.
2. Do not re-rank. The ranking is final; explain it, do not second-guess it.
3. If the list is empty, say no vehicle satisfied the constraints and suggest which constraint to relax based on the query.
4. Keep it to 4-5 sentences, plain language, no hype.

Query: max price $%.0f, min safety %.1f, min reliability %.2f, ownership horizon %d years.
Candidates considered: %d, passing constraints: %d.
`,
		report.Query.MaxPrice, report.Query.MinSafety, report.Query.MinReliability,
		report.Query.Horizon(), report.TotalVehicles, report.FilteredVehicles)

	if !report.ClassifierAvailable {
		b.WriteString("Note: the rule classifier was unavailable; category tags are missing from this run.\n")
	}
	if !report.MatcherAvailable {
		b.WriteString("Note: the knowledge-base matcher was unavailable; concept matches are missing from this run.\n")
	}

	b.WriteString("\nTop recommendations:\n")
	for i, rec := range report.Recommendations {
		if i >= 5 {
			fmt.Fprintf(&b, "... and %d more\n", len(report.Recommendations)-5)
			break
		}
		fmt.Fprintf(&b, "%d. %s, $%.0f, score %.3f, safety %.1f, reliability %.2f, est. 5yr cost $%.0f",
			rec.Rank, rec.Vehicle.Label(), rec.Vehicle.Price, rec.Score,
			rec.Vehicle.SafetyRating, rec.Reliability.Score, rec.Projection.TotalCost)
		if len(rec.RuleCategories) > 0 {
			fmt.Fprintf(&b, ", categories: %s", strings.Join(rec.RuleCategories, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nWrite the buyer-facing summary now.")
	return b.String()
}
