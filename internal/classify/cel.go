package classify

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/carscout/carscout/internal/model"
)

// celEvalCostLimit bounds expression evaluation so a pathological rule file
// cannot stall a recommendation run.
const celEvalCostLimit = 1_000_000

// CELClassifier evaluates the expert rules in-process with CEL. Rules are
// compiled once at construction; evaluation is read-only and safe for
// concurrent runs.
type CELClassifier struct {
	env           *cel.Env
	rules         []Rule
	programs      []cel.Program
	referenceYear int
}

// NewCELClassifier compiles the given rules (DefaultRules when nil) against
// the vehicle fact schema.
func NewCELClassifier(rules []Rule, referenceYear int) (*CELClassifier, error) {
	if rules == nil {
		rules = DefaultRules()
	}

	env, err := cel.NewEnv(
		cel.Variable("make", cel.StringType),
		cel.Variable("model", cel.StringType),
		cel.Variable("year", cel.IntType),
		cel.Variable("age", cel.IntType),
		cel.Variable("price", cel.DoubleType),
		cel.Variable("safety", cel.DoubleType),
		cel.Variable("reliability", cel.DoubleType),
		cel.Variable("mileage", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	c := &CELClassifier{
		env:           env,
		rules:         rules,
		programs:      make([]cel.Program, len(rules)),
		referenceYear: referenceYear,
	}

	for i, r := range rules {
		ast, issues := env.Compile(r.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compile rule %s: %w", r.Name, issues.Err())
		}
		prog, err := env.Program(ast, cel.CostLimit(celEvalCostLimit))
		if err != nil {
			return nil, fmt.Errorf("build rule program %s: %w", r.Name, err)
		}
		c.programs[i] = prog
	}

	return c, nil
}

// Name identifies the engine.
func (c *CELClassifier) Name() string { return "cel" }

// IsAvailable always holds: the engine runs in-process once construction
// (rule compilation) succeeded.
func (c *CELClassifier) IsAvailable(ctx context.Context) bool { return true }

// Classify evaluates every rule against every vehicle. A rule that errors at
// evaluation time is treated as not matched; the remaining rules still run.
func (c *CELClassifier) Classify(ctx context.Context, vehicles []model.VehicleRecord) (*Result, error) {
	result := NewResult()

	for _, v := range vehicles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		facts := c.facts(v)

		for i, r := range c.rules {
			out, _, err := c.programs[i].Eval(facts)
			if err != nil {
				continue
			}
			matched, ok := out.Value().(bool)
			if !ok || !matched {
				continue
			}
			switch r.Kind {
			case KindCategory:
				result.Categories[v.ID] = append(result.Categories[v.ID], r.Label)
			case KindStrength:
				result.Strengths[v.ID] = append(result.Strengths[v.ID], r.Label)
			}
		}
	}

	return result, nil
}

func (c *CELClassifier) facts(v model.VehicleRecord) map[string]any {
	return map[string]any{
		"make":        v.Make,
		"model":       v.Model,
		"year":        v.Year,
		"age":         v.Age(c.referenceYear),
		"price":       v.Price,
		"safety":      v.SafetyRating,
		"reliability": v.ReliabilityScore,
		"mileage":     v.Mileage,
	}
}
