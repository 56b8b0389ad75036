package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule kinds: category rules assign a vocabulary tag, strength rules attach a
// human-readable strength fact used by the explainer.
const (
	KindCategory = "category"
	KindStrength = "strength"
)

// Rule is one expert rule as data: a CEL expression over the vehicle fact
// variables (make, model, year, age, price, safety, reliability, mileage)
// that must evaluate to a boolean.
type Rule struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"`
	Label      string `yaml:"label"` // category tag or strength text
	Expression string `yaml:"expression"`
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultRules returns the built-in expert rule set covering the fixed
// category vocabulary plus the strength facts.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "excellent_choice",
			Kind:       KindCategory,
			Label:      CategoryExcellentChoice,
			Expression: `safety >= 4.5 && reliability >= 0.85 && mileage < 60000.0`,
		},
		{
			Name:       "good_value",
			Kind:       KindCategory,
			Label:      CategoryGoodValue,
			Expression: `price < 20000.0 && reliability >= 0.75 && safety >= 4.0`,
		},
		{
			Name:       "family_car",
			Kind:       KindCategory,
			Label:      CategoryFamilyCar,
			Expression: `safety >= 4.5 && price < 30000.0`,
		},
		{
			Name:       "reliable_commuter",
			Kind:       KindCategory,
			Label:      CategoryReliableCommuter,
			Expression: `reliability >= 0.8 && mileage < 100000.0`,
		},
		{
			Name:       "budget_pick",
			Kind:       KindCategory,
			Label:      CategoryBudgetPick,
			Expression: `price < 15000.0 && reliability >= 0.6`,
		},
		{
			Name:       "strength_safety",
			Kind:       KindStrength,
			Label:      "top safety rating",
			Expression: `safety >= 4.5`,
		},
		{
			Name:       "strength_reliability",
			Kind:       KindStrength,
			Label:      "strong reliability record",
			Expression: `reliability >= 0.85`,
		},
		{
			Name:       "strength_mileage",
			Kind:       KindStrength,
			Label:      "low mileage",
			Expression: `mileage < 40000.0`,
		},
		{
			Name:       "strength_recent",
			Kind:       KindStrength,
			Label:      "recent model year",
			Expression: `age <= 3`,
		},
		{
			Name:       "strength_price",
			Kind:       KindStrength,
			Label:      "affordable price",
			Expression: `price < 15000.0`,
		},
	}
}

// LoadRules reads a YAML rule file. Rules with an unknown kind are rejected
// so typos do not silently drop expert knowledge.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}

	for i, r := range rf.Rules {
		if r.Kind != KindCategory && r.Kind != KindStrength {
			return nil, fmt.Errorf("rule %d (%s): unknown kind %q", i, r.Name, r.Kind)
		}
		if r.Label == "" || r.Expression == "" {
			return nil, fmt.Errorf("rule %d (%s): label and expression are required", i, r.Name)
		}
	}

	return rf.Rules, nil
}
