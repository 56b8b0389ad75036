package worker

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/carscout/carscout/internal/model"
)

// Runner defines the interface for executing one recommendation query.
type Runner interface {
	Run(ctx context.Context, vehicles []model.VehicleRecord, q model.Query) (*model.Report, error)
}

// Profile is one named query in a batch file, with optional per-profile
// output paths.
type Profile struct {
	Name     string      `yaml:"name"`
	Query    model.Query `yaml:"query"`
	JSONOut  string      `yaml:"json_out,omitempty"`
	MarkdOut string      `yaml:"markdown_out,omitempty"`
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// RecommendJob runs one profile against the shared inventory.
type RecommendJob struct {
	Profile  Profile
	Vehicles []model.VehicleRecord
	Runner   Runner
}

// Execute executes the recommendation job
func (j *RecommendJob) Execute(ctx context.Context) Result {
	report, err := j.Runner.Run(ctx, j.Vehicles, j.Profile.Query)
	return &RecommendResult{
		Profile: j.Profile,
		Report:  report,
		Error:   err,
	}
}

// RecommendResult represents the result of one profile run.
type RecommendResult struct {
	Profile Profile
	Report  *model.Report
	Error   error
}

// GetError returns the error from the profile run
func (r *RecommendResult) GetError() error {
	return r.Error
}

// BatchProcessor runs multiple recommendation profiles concurrently against
// one inventory. Each profile is independent; a failing profile does not
// stop the others.
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessProfiles runs the given profiles concurrently. Cancelling ctx stops
// in-flight pipeline runs; their results carry the context error.
func (b *BatchProcessor) ProcessProfiles(ctx context.Context, vehicles []model.VehicleRecord, profiles []Profile) []*RecommendResult {
	if len(profiles) == 0 {
		return []*RecommendResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, profile := range profiles {
		pool.Submit(&RecommendJob{
			Profile:  profile,
			Vehicles: vehicles,
			Runner:   b.runner,
		})
	}

	results := pool.Wait()

	recResults := make([]*RecommendResult, len(results))
	for i, result := range results {
		recResults[i] = result.(*RecommendResult)
	}

	return recResults
}

// ProcessFile reads a profile file and runs every profile concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, vehicles []model.VehicleRecord, filePath string) ([]*RecommendResult, error) {
	profiles, err := ReadProfiles(filePath)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	return b.ProcessProfiles(ctx, vehicles, profiles), nil
}

// ReadProfiles reads a YAML batch file. Profile names must be unique; an
// unnamed profile gets a positional name.
func ReadProfiles(filePath string) ([]Profile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}

	seen := make(map[string]bool)
	for i := range pf.Profiles {
		if pf.Profiles[i].Name == "" {
			pf.Profiles[i].Name = fmt.Sprintf("profile-%d", i+1)
		}
		name := pf.Profiles[i].Name
		if seen[name] {
			return nil, fmt.Errorf("duplicate profile name: %s", name)
		}
		seen[name] = true
	}

	return pf.Profiles, nil
}
