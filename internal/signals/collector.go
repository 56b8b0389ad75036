package signals

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/carscout/carscout/internal/classify"
	"github.com/carscout/carscout/internal/model"
	"github.com/carscout/carscout/internal/semantic"
)

const defaultCollaboratorTimeout = 10 * time.Second

// Collector gathers external signals for a filtered candidate set. Each
// collaborator is consulted exactly once per run, under its own timeout, and
// a failing or absent collaborator degrades to empty signals rather than
// failing the run.
type Collector struct {
	classifier        classify.Classifier
	matcher           semantic.Matcher
	classifierTimeout time.Duration
	matcherTimeout    time.Duration
	verbose           bool
}

// NewCollector builds a collector. Either collaborator may be nil.
func NewCollector(classifier classify.Classifier, matcher semantic.Matcher, cfg *model.Config) *Collector {
	c := &Collector{
		classifier:        classifier,
		matcher:           matcher,
		classifierTimeout: cfg.Classifier.Timeout,
		matcherTimeout:    cfg.Semantic.Timeout,
		verbose:           cfg.Output.Verbose,
	}
	if c.classifierTimeout <= 0 {
		c.classifierTimeout = defaultCollaboratorTimeout
	}
	if c.matcherTimeout <= 0 {
		c.matcherTimeout = defaultCollaboratorTimeout
	}
	return c
}

// Collect runs both collaborators against the vehicles and merges their
// output into one signal set. Never returns an error: signal collection is
// best-effort and the availability flags record what actually ran.
func (c *Collector) Collect(ctx context.Context, vehicles []model.VehicleRecord) *model.SignalSet {
	set := model.EmptySignalSet(vehicles)
	if len(vehicles) == 0 {
		return set
	}

	c.collectRules(ctx, vehicles, set)
	c.collectSemantic(ctx, vehicles, set)
	return set
}

func (c *Collector) collectRules(ctx context.Context, vehicles []model.VehicleRecord, set *model.SignalSet) {
	if c.classifier == nil {
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, c.classifierTimeout)
	defer cancel()

	if !c.classifier.IsAvailable(runCtx) {
		c.logf("rule classifier %s unavailable, continuing without categories", c.classifier.Name())
		return
	}

	result, err := c.classifier.Classify(runCtx, vehicles)
	if err != nil {
		c.logf("rule classification failed (%v), continuing without categories", err)
		return
	}

	set.ClassifierAvailable = true
	for _, v := range vehicles {
		sig := set.Signals[v.ID]
		sig.RuleCategories = result.Categories[v.ID]
		sig.RuleStrengths = result.Strengths[v.ID]
		set.Signals[v.ID] = sig
	}
}

func (c *Collector) collectSemantic(ctx context.Context, vehicles []model.VehicleRecord, set *model.SignalSet) {
	if c.matcher == nil {
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, c.matcherTimeout)
	defer cancel()

	if !c.matcher.IsAvailable(runCtx) {
		c.logf("semantic matcher %s unavailable, continuing without concept matches", c.matcher.Name())
		return
	}

	annotations, err := c.matcher.Match(runCtx, vehicles)
	if err != nil {
		c.logf("semantic matching failed (%v), continuing without concept matches", err)
		return
	}

	set.MatcherAvailable = true
	for _, v := range vehicles {
		annotation, ok := annotations[v.ID]
		if !ok {
			continue
		}
		sig := set.Signals[v.ID]
		sig.SemanticMatch = true
		sig.SemanticAnnotation = annotation
		set.Signals[v.ID] = sig
	}
}

func (c *Collector) logf(format string, args ...any) {
	if c.verbose {
		fmt.Fprintf(os.Stderr, "[signals] "+format+"\n", args...)
	}
}
