package recommend

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/carscout/carscout/internal/model"
)

// Renderer writes a finished report as JSON, Markdown, or a console summary.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON to path.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes the report as a human-readable Markdown document.
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	b.WriteString("# Vehicle Recommendations\n\n")
	fmt.Fprintf(&b, "- **Run:** %s\n", report.RunID)
	fmt.Fprintf(&b, "- **Generated:** %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Candidates:** %d of %d vehicles passed the constraints\n\n",
		report.FilteredVehicles, report.TotalVehicles)

	writeQuerySection(&b, report.Query)
	writeAvailabilityNotes(&b, report)

	if len(report.Recommendations) == 0 {
		b.WriteString("No vehicle satisfied every constraint. Relax a bound and try again.\n")
	} else {
		b.WriteString("| Rank | Vehicle | Price | Score | Safety | Reliability | 5yr Cost |\n")
		b.WriteString("|-----:|---------|------:|------:|-------:|------------:|---------:|\n")
		for _, rec := range report.Recommendations {
			fmt.Fprintf(&b, "| %d | %s | $%.0f | %.3f | %.1f | %.2f | $%.0f |\n",
				rec.Rank, rec.Vehicle.Label(), rec.Vehicle.Price, rec.Score,
				rec.Vehicle.SafetyRating, rec.Reliability.Score, rec.Projection.TotalCost)
		}
		b.WriteString("\n")

		for _, rec := range report.Recommendations {
			writeRecommendationDetail(&b, rec)
		}
	}

	if report.Advisor != nil && report.Advisor.Summary != "" {
		b.WriteString("## Advisor Notes\n\n")
		fmt.Fprintf(&b, "_%s (%s), advisory only, does not affect ranking._\n\n",
			report.Advisor.Provider, report.Advisor.Model)
		b.WriteString(report.Advisor.Summary)
		b.WriteString("\n\n")
	}

	if r.includeFooter {
		b.WriteString("---\n")
		b.WriteString("Scores weigh safety, reliability, price, and cost of ownership over the candidate set; ")
		b.WriteString("they rank this run's candidates and are not absolute vehicle grades.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// PrintSummary writes the console summary of a report.
func (r *Renderer) PrintSummary(report *model.Report, w io.Writer) {
	fmt.Fprintf(w, "Vehicles: %d candidates, %d pass constraints\n",
		report.TotalVehicles, report.FilteredVehicles)
	if !report.ClassifierAvailable {
		fmt.Fprintln(w, "Note: rule classifier unavailable; no category tags in this run")
	}
	if !report.MatcherAvailable {
		fmt.Fprintln(w, "Note: knowledge-base matcher unavailable; no concept matches in this run")
	}

	if len(report.Recommendations) == 0 {
		fmt.Fprintln(w, "No vehicle satisfied every constraint.")
		return
	}

	fmt.Fprintln(w)
	for _, rec := range report.Recommendations {
		fmt.Fprintf(w, "%2d. %-30s $%8.0f  score %.3f\n",
			rec.Rank, rec.Vehicle.Label(), rec.Vehicle.Price, rec.Score)
		if len(rec.Strengths) > 0 {
			fmt.Fprintf(w, "    + %s\n", strings.Join(rec.Strengths, "; "))
		}
		if len(rec.Weaknesses) > 0 {
			fmt.Fprintf(w, "    - %s\n", strings.Join(rec.Weaknesses, "; "))
		}
	}

	if report.Advisor != nil && report.Advisor.Summary != "" {
		fmt.Fprintf(w, "\nAdvisor (%s, advisory only):\n%s\n", report.Advisor.Provider, report.Advisor.Summary)
	}
}

func writeQuerySection(b *strings.Builder, q model.Query) {
	b.WriteString("## Query\n\n")
	if q.MaxPrice > 0 {
		fmt.Fprintf(b, "- Max price: $%.0f\n", q.MaxPrice)
	}
	if q.MinYear > 0 {
		fmt.Fprintf(b, "- Min year: %d\n", q.MinYear)
	}
	if q.MaxYear > 0 {
		fmt.Fprintf(b, "- Max year: %d\n", q.MaxYear)
	}
	if q.MinSafety > 0 {
		fmt.Fprintf(b, "- Min safety: %.1f\n", q.MinSafety)
	}
	if q.MinReliability > 0 {
		fmt.Fprintf(b, "- Min reliability: %.2f\n", q.MinReliability)
	}
	if q.MaxMileage > 0 {
		fmt.Fprintf(b, "- Max mileage: %.0f\n", q.MaxMileage)
	}
	if q.Category != "" {
		fmt.Fprintf(b, "- Desired category: %s\n", q.Category)
	}
	fmt.Fprintf(b, "- Ownership horizon: %d years\n\n", q.Horizon())
}

func writeAvailabilityNotes(b *strings.Builder, report *model.Report) {
	var notes []string
	if !report.ClassifierAvailable {
		notes = append(notes, "rule classifier unavailable; category tags and the rule bonus are missing")
	}
	if !report.MatcherAvailable {
		notes = append(notes, "knowledge-base matcher unavailable; concept matches are missing")
	}
	if len(notes) == 0 {
		return
	}
	b.WriteString("> **Degraded run:** ")
	b.WriteString(strings.Join(notes, "; "))
	b.WriteString(".\n\n")
}

func writeRecommendationDetail(b *strings.Builder, rec model.Recommendation) {
	fmt.Fprintf(b, "## %d. %s\n\n", rec.Rank, rec.Vehicle.Label())
	fmt.Fprintf(b, "- **Score:** %.3f (safety %.2f, reliability %.2f, price %.2f, tco %.2f, rule bonus %.2f)\n",
		rec.Score,
		rec.Breakdown[ComponentSafety], rec.Breakdown[ComponentReliability],
		rec.Breakdown[ComponentPrice], rec.Breakdown[ComponentTCO],
		rec.Breakdown[ComponentRuleBonus])
	fmt.Fprintf(b, "- **Price:** $%.0f, mileage %.0f\n", rec.Vehicle.Price, rec.Vehicle.Mileage)
	fmt.Fprintf(b, "- **Reliability:** %.2f (%s), %d-year failure probability %.0f%%, expected repairs $%.0f\n",
		rec.Reliability.Score, rec.Reliability.Confidence, rec.Reliability.Horizon,
		rec.Reliability.FailureProbHorizon*100, rec.Reliability.ExpectedRepairCost)
	fmt.Fprintf(b, "- **Ownership:** $%.0f over %d years ($%.0f/year), resale $%.0f (%.0f%% retained)\n",
		rec.Projection.TotalCost, rec.Projection.Years, rec.Projection.CostPerYear,
		rec.Projection.ResaleValue, rec.Projection.ValueRetention*100)
	if len(rec.RuleCategories) > 0 {
		fmt.Fprintf(b, "- **Categories:** %s\n", strings.Join(rec.RuleCategories, ", "))
	}
	if rec.SemanticAnnotation != "" {
		fmt.Fprintf(b, "- **Knowledge base:** %s\n", rec.SemanticAnnotation)
	}
	if len(rec.Strengths) > 0 {
		fmt.Fprintf(b, "- **Strengths:** %s\n", strings.Join(rec.Strengths, "; "))
	}
	if len(rec.Weaknesses) > 0 {
		fmt.Fprintf(b, "- **Watch for:** %s\n", strings.Join(rec.Weaknesses, "; "))
	}
	b.WriteString("\n")
}
