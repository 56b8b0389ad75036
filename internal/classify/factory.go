package classify

import (
	"fmt"
	"time"

	"github.com/carscout/carscout/internal/cache"
	"github.com/carscout/carscout/internal/model"
)

// New builds a classifier from configuration.
//
// Engines:
//   - "cel" (default): in-process CEL rule evaluation
//   - "swipl": external SWI-Prolog engine
//   - "none": classification disabled, returns nil
func New(cfg model.ClassifierConfig, referenceYear int) (Classifier, error) {
	var engine Classifier

	switch cfg.Engine {
	case "", "cel":
		rules, err := loadConfiguredRules(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		engine, err = NewCELClassifier(rules, referenceYear)
		if err != nil {
			return nil, err
		}
	case "swipl":
		engine = NewSwiplClassifier(cfg, referenceYear)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown classifier engine: %s (want cel, swipl, or none)", cfg.Engine)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	store := cache.NewMemoryCache(ttl, 10*time.Minute)
	return NewCachedClassifier(engine, store, ttl), nil
}

// loadConfiguredRules reads the YAML rule file when a path is set. The swipl
// engine ignores this; its rules live in a Prolog source file instead.
func loadConfiguredRules(path string) ([]Rule, error) {
	if path == "" {
		return nil, nil
	}
	return LoadRules(path)
}
