package semantic

import (
	"context"
	"errors"
	"strings"

	"github.com/carscout/carscout/internal/model"
)

// ErrUnavailable signals that the knowledge store cannot serve a match run.
var ErrUnavailable = errors.New("semantic matcher unavailable")

// Matcher is the abstract semantic-match capability. It annotates vehicles
// with concept matches drawn from the knowledge store; the pipeline treats the
// annotations as an opaque signal.
type Matcher interface {
	Name() string
	IsAvailable(ctx context.Context) bool

	// Match returns a human-readable concept annotation per vehicle ID.
	// Vehicles matching no concept are absent from the map.
	Match(ctx context.Context, vehicles []model.VehicleRecord) (map[string]string, error)
}

// concept is one named query template over the triple store. The SQL
// self-joins the triples table once per predicate it constrains; thresholds
// bind as parameters taken from the semantic configuration.
type concept struct {
	name  string
	label string
	query string
	args  func(cfg model.SemanticConfig) []any
}

var concepts = []concept{
	{
		name:  "safe_vehicle",
		label: "recognized safe vehicle",
		query: `
			SELECT t1.subject FROM triples t1
			WHERE t1.predicate = 'carscout:safetyRating'
			  AND CAST(t1.object AS REAL) >= ?`,
		args: func(cfg model.SemanticConfig) []any { return []any{cfg.SafetyFloor} },
	},
	{
		name:  "proven_reliable",
		label: "proven reliable",
		query: `
			SELECT t1.subject FROM triples t1
			WHERE t1.predicate = 'carscout:reliability'
			  AND CAST(t1.object AS REAL) >= ?`,
		args: func(cfg model.SemanticConfig) []any { return []any{cfg.ReliabilityFloor} },
	},
	{
		name:  "best_value",
		label: "best value match",
		query: `
			SELECT t1.subject FROM triples t1
			JOIN triples t2 ON t2.subject = t1.subject
			WHERE t1.predicate = 'carscout:price'
			  AND CAST(t1.object AS REAL) < ?
			  AND t2.predicate = 'carscout:reliability'
			  AND CAST(t2.object AS REAL) >= ?`,
		args: func(cfg model.SemanticConfig) []any {
			return []any{cfg.ValuePriceCeiling, cfg.ValueReliabilityFloor}
		},
	},
	{
		name:  "low_mileage",
		label: "low mileage find",
		query: `
			SELECT t1.subject FROM triples t1
			WHERE t1.predicate = 'carscout:mileage'
			  AND CAST(t1.object AS REAL) < ?`,
		args: func(cfg model.SemanticConfig) []any { return []any{cfg.MileageCeiling} },
	},
}

// SQLiteMatcher answers concept queries from a sqlite triple store built over
// the candidate set. Each Match call builds a fresh store so the annotations
// always reflect the current inventory.
type SQLiteMatcher struct {
	cfg model.SemanticConfig
}

// NewSQLiteMatcher creates the matcher. Unset concept thresholds take the
// documented defaults. Construction never fails; problems surface through
// IsAvailable and Match.
func NewSQLiteMatcher(cfg model.SemanticConfig) *SQLiteMatcher {
	return &SQLiteMatcher{cfg: cfg.WithDefaults()}
}

// Name identifies the matcher backend.
func (m *SQLiteMatcher) Name() string { return "sqlite" }

// IsAvailable probes the sqlite driver with a throwaway in-memory store.
func (m *SQLiteMatcher) IsAvailable(ctx context.Context) bool {
	if !m.cfg.Enabled {
		return false
	}
	probe, err := OpenStore(":memory:")
	if err != nil {
		return false
	}
	defer func() { _ = probe.Close() }()
	_, err = probe.Count(ctx)
	return err == nil
}

// Match builds the knowledge store from the vehicles, runs every concept
// query, and joins the matched concept labels per vehicle.
func (m *SQLiteMatcher) Match(ctx context.Context, vehicles []model.VehicleRecord) (map[string]string, error) {
	if !m.cfg.Enabled {
		return nil, ErrUnavailable
	}

	store, err := OpenStore(m.cfg.Path)
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Build(ctx, vehicles); err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	matched := make(map[string][]string)
	for _, c := range concepts {
		subjects, err := store.Subjects(ctx, c.query, c.args(m.cfg)...)
		if err != nil {
			return nil, errors.Join(ErrUnavailable, err)
		}
		// Preserve candidate order so annotations are deterministic.
		for _, v := range vehicles {
			if subjects[v.ID] {
				matched[v.ID] = append(matched[v.ID], c.label)
			}
		}
	}

	annotations := make(map[string]string, len(matched))
	for id, labels := range matched {
		annotations[id] = strings.Join(labels, "; ")
	}
	return annotations, nil
}
