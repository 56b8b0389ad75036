package recommend

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/carscout/carscout/internal/classify"
	"github.com/carscout/carscout/internal/filter"
	"github.com/carscout/carscout/internal/llm"
	"github.com/carscout/carscout/internal/model"
	"github.com/carscout/carscout/internal/ownership"
	"github.com/carscout/carscout/internal/reliability"
	"github.com/carscout/carscout/internal/semantic"
	"github.com/carscout/carscout/internal/signals"
)

// Pipeline orchestrates one recommendation run: filter, assess, collect
// signals, score, explain, and optionally narrate. Safe for concurrent Run
// calls; all per-run state lives on the stack.
type Pipeline struct {
	estimator *reliability.Estimator
	projector *ownership.Projector
	collector *signals.Collector
	scorer    *Scorer
	advisor   *llm.Advisor // optional, nil when disabled
	config    *model.Config
}

// NewPipeline wires a pipeline from configuration. Collaborators that fail to
// construct are dropped with a warning; the pipeline itself only fails on a
// configuration that cannot produce valid scores at all.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	scorer, err := NewScorer(cfg.Weights)
	if err != nil {
		return nil, err
	}

	classifier, err := classify.New(cfg.Classifier, cfg.ReferenceYear)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: rule classifier disabled: %v\n", err)
		classifier = nil
	}

	var matcher semantic.Matcher
	if cfg.Semantic.Enabled {
		matcher = semantic.NewSQLiteMatcher(cfg.Semantic)
	}

	var advisor *llm.Advisor
	if cfg.LLM.Provider != "" {
		advisor, err = llm.NewAdvisor(cfg.LLM)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: advisor disabled: %v\n", err)
			advisor = nil
		}
	}

	return &Pipeline{
		estimator: reliability.NewEstimator(cfg.Reliability, cfg.ReferenceYear),
		projector: ownership.NewProjector(cfg.Depreciation, cfg.Maintenance, cfg.ReferenceYear),
		collector: signals.NewCollector(classifier, matcher, cfg),
		scorer:    scorer,
		advisor:   advisor,
		config:    cfg,
	}, nil
}

// Run executes one recommendation query over the vehicle inventory.
//
// The only hard failure is a malformed query (model.ErrInvalidConstraint).
// An unsatisfiable query returns an empty, valid report; absent collaborators
// degrade and are recorded in the report's availability flags.
func (p *Pipeline) Run(ctx context.Context, vehicles []model.VehicleRecord, q model.Query) (*model.Report, error) {
	constraints, err := filter.Build(q)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		RunID:         uuid.NewString(),
		GeneratedAt:   time.Now().UTC(),
		Query:         q,
		TotalVehicles: len(vehicles),
	}

	candidates := filter.Apply(vehicles, constraints)
	report.FilteredVehicles = len(candidates)
	p.logf("%d of %d vehicles pass constraints", len(candidates), len(vehicles))
	if p.config.Output.Verbose {
		fmt.Fprintln(os.Stderr, filter.Summary(constraints))
	}

	horizon := q.Horizon()
	estimates := make(map[string]model.ReliabilityEstimate, len(candidates))
	projections := make(map[string]model.OwnershipProjection, len(candidates))
	for _, v := range candidates {
		estimates[v.ID] = p.estimator.Estimate(v, horizon)
		projections[v.ID] = p.projector.Project(v, horizon)
	}

	sigs := p.collector.Collect(ctx, candidates)
	report.ClassifierAvailable = sigs.ClassifierAvailable
	report.MatcherAvailable = sigs.MatcherAvailable

	// A desired category can only narrow the set when the classifier actually
	// ran; without it the preference is ignored rather than matching nothing.
	if q.Category != "" && sigs.ClassifierAvailable {
		candidates = filterByCategory(candidates, sigs, q.Category)
		p.logf("%d candidates remain after category filter %q", len(candidates), q.Category)
	}

	recs := p.scorer.Rank(candidates, estimates, projections, sigs)
	if limit := q.Limit(); len(recs) > limit {
		recs = recs[:limit]
	}
	for i := range recs {
		Explain(&recs[i])
	}
	report.Recommendations = recs

	// The advisor narrates the finished report; it runs after scoring and
	// never changes ranks.
	if p.advisor.IsEnabled() {
		report.Advisor = p.advisor.Summarize(ctx, *report)
	}

	return report, nil
}

func filterByCategory(vehicles []model.VehicleRecord, sigs *model.SignalSet, category string) []model.VehicleRecord {
	out := make([]model.VehicleRecord, 0, len(vehicles))
	for _, v := range vehicles {
		for _, c := range sigs.Signals[v.ID].RuleCategories {
			if c == category {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, "[recommend] "+format+"\n", args...)
	}
}
