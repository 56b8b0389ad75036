package semantic

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/carscout/carscout/internal/model"
)

// Vehicle knowledge is stored as subject/predicate/object triples so concept
// queries stay declarative. Predicates use a fixed vocabulary.
const (
	PredType        = "carscout:type"
	PredMake        = "carscout:make"
	PredModel       = "carscout:model"
	PredYear        = "carscout:year"
	PredPrice       = "carscout:price"
	PredSafety      = "carscout:safetyRating"
	PredReliability = "carscout:reliability"
	PredMileage     = "carscout:mileage"

	ObjectVehicle = "carscout:Vehicle"
)

// Store is a sqlite-backed triple store over the vehicle inventory. With the
// ":memory:" path it is rebuilt per run; with a file path it persists.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the triple store at path.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open triple store: %w", err)
	}
	// A single connection keeps the :memory: database alive and serializes
	// writers; concept queries are cheap enough not to need more.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA synchronous = NORMAL`,
		`CREATE TABLE IF NOT EXISTS triples (
			subject   TEXT NOT NULL,
			predicate TEXT NOT NULL,
			object    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_subject ON triples (subject)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_pred_obj ON triples (predicate, object)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate triple store: %w", err)
		}
	}
	return nil
}

// Build replaces the store contents with triples for the given vehicles.
func (s *Store) Build(ctx context.Context, vehicles []model.VehicleRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin build: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM triples`); err != nil {
		return fmt.Errorf("clear triples: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO triples (subject, predicate, object) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, v := range vehicles {
		triples := [][2]string{
			{PredType, ObjectVehicle},
			{PredMake, v.Make},
			{PredModel, v.Model},
			{PredYear, strconv.Itoa(v.Year)},
			{PredPrice, formatNum(v.Price)},
			{PredSafety, formatNum(v.SafetyRating)},
			{PredReliability, formatNum(v.ReliabilityScore)},
			{PredMileage, formatNum(v.Mileage)},
		}
		for _, t := range triples {
			if _, err := stmt.ExecContext(ctx, v.ID, t[0], t[1]); err != nil {
				return fmt.Errorf("insert triple for %s: %w", v.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit build: %w", err)
	}
	return nil
}

// Subjects runs a concept query and returns the matching vehicle IDs.
func (s *Store) Subjects(ctx context.Context, query string, args ...any) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("concept query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	subjects := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects[id] = true
	}
	return subjects, rows.Err()
}

// Count returns the number of stored triples.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM triples`).Scan(&n)
	return n, err
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
