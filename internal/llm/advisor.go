package llm

import (
	"context"
	"fmt"

	"github.com/carscout/carscout/internal/model"
)

// Advisor wraps a provider and produces the optional narrative for a finished
// report. It runs after scoring and its output never feeds back into ranks.
type Advisor struct {
	provider Provider
	config   Config
}

// NewAdvisor creates an advisor from configuration. Returns nil when no
// provider is configured.
func NewAdvisor(cfg model.LLMConfig) (*Advisor, error) {
	config := ConfigFromModel(cfg)
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}
	return &Advisor{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured.
func (a *Advisor) IsEnabled() bool {
	return a != nil && a.provider != nil
}

// Summarize generates the advisor narrative. Failures produce a summary with
// warnings rather than an error; the report is complete without it.
func (a *Advisor) Summarize(ctx context.Context, report model.Report) *model.AdvisorSummary {
	summary := &model.AdvisorSummary{
		Enabled:  true,
		Provider: a.provider.Name(),
	}

	if !a.provider.IsAvailable(ctx) {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("advisor provider %s unavailable", a.provider.Name()))
		return summary
	}

	resp, err := a.provider.Advise(ctx, AdviseRequest{Report: report})
	if err != nil {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("advisor generation failed: %v", err))
		return summary
	}

	summary.Model = resp.Model
	summary.Summary = resp.Summary
	return summary
}
