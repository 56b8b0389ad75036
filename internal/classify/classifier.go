package classify

import (
	"context"
	"errors"

	"github.com/carscout/carscout/internal/model"
)

// ErrUnavailable signals that the classifier engine is absent or unreachable.
// Callers degrade to empty signals instead of failing; the sentinel lets them
// tell "no categories matched" apart from "classifier absent".
var ErrUnavailable = errors.New("rule classifier unavailable")

// The fixed category vocabulary shared by every engine.
const (
	CategoryExcellentChoice  = "excellent_choice"
	CategoryGoodValue        = "good_value"
	CategoryFamilyCar        = "family_car"
	CategoryReliableCommuter = "reliable_commuter"
	CategoryBudgetPick       = "budget_pick"
)

// Categories lists the vocabulary in its canonical order.
var Categories = []string{
	CategoryExcellentChoice,
	CategoryGoodValue,
	CategoryFamilyCar,
	CategoryReliableCommuter,
	CategoryBudgetPick,
}

// Result is the normalized classifier output keyed by vehicle identifier.
type Result struct {
	Categories map[string][]string `json:"categories"` // vehicle ID -> category tags
	Strengths  map[string][]string `json:"strengths"`  // vehicle ID -> strength facts
}

// NewResult returns an empty result with maps allocated.
func NewResult() *Result {
	return &Result{
		Categories: make(map[string][]string),
		Strengths:  make(map[string][]string),
	}
}

// Classifier is the abstract rule-classification capability. The reasoning
// happens inside the engine; the pipeline only consumes tags per vehicle.
type Classifier interface {
	// Name identifies the engine ("cel", "swipl").
	Name() string

	// IsAvailable reports whether the engine can serve a classification run.
	// Consulted once per run.
	IsAvailable(ctx context.Context) bool

	// Classify evaluates the rule set against the vehicles and returns
	// category tags and strengths per vehicle identifier. Returns
	// ErrUnavailable (possibly wrapped) when the engine is absent.
	Classify(ctx context.Context, vehicles []model.VehicleRecord) (*Result, error)
}
