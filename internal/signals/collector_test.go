package signals

import (
	"context"
	"errors"
	"testing"

	"github.com/carscout/carscout/internal/classify"
	"github.com/carscout/carscout/internal/model"
)

type stubClassifier struct {
	available bool
	result    *classify.Result
	err       error
}

func (s *stubClassifier) Name() string { return "stub" }

func (s *stubClassifier) IsAvailable(context.Context) bool { return s.available }

func (s *stubClassifier) Classify(ctx context.Context, vehicles []model.VehicleRecord) (*classify.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubMatcher struct {
	available   bool
	annotations map[string]string
	err         error
}

func (s *stubMatcher) Name() string { return "stub" }

func (s *stubMatcher) IsAvailable(context.Context) bool { return s.available }

func (s *stubMatcher) Match(ctx context.Context, vehicles []model.VehicleRecord) (map[string]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.annotations, nil
}

func signalVehicles() []model.VehicleRecord {
	return []model.VehicleRecord{
		{ID: "a", Make: "TOYOTA", Model: "CAMRY", Year: 2021, Price: 24000},
		{ID: "b", Make: "FORD", Model: "FOCUS", Year: 2015, Price: 8000},
	}
}

func TestCollect_BothCollaborators(t *testing.T) {
	classifier := &stubClassifier{
		available: true,
		result: &classify.Result{
			Categories: map[string][]string{"a": {classify.CategoryFamilyCar}},
			Strengths:  map[string][]string{"a": {"top safety rating"}},
		},
	}
	matcher := &stubMatcher{
		available:   true,
		annotations: map[string]string{"a": "recognized safe vehicle"},
	}

	c := NewCollector(classifier, matcher, model.DefaultConfig())
	set := c.Collect(context.Background(), signalVehicles())

	if !set.ClassifierAvailable || !set.MatcherAvailable {
		t.Errorf("expected both availability flags set, got %v/%v",
			set.ClassifierAvailable, set.MatcherAvailable)
	}

	a := set.Signals["a"]
	if len(a.RuleCategories) != 1 || a.RuleCategories[0] != classify.CategoryFamilyCar {
		t.Errorf("unexpected categories: %v", a.RuleCategories)
	}
	if !a.SemanticMatch || a.SemanticAnnotation != "recognized safe vehicle" {
		t.Errorf("unexpected semantic signal: %v %q", a.SemanticMatch, a.SemanticAnnotation)
	}

	// Vehicle b got nothing, but it still has an entry.
	b, ok := set.Signals["b"]
	if !ok {
		t.Fatal("every candidate must have a signal entry")
	}
	if len(b.RuleCategories) != 0 || b.SemanticMatch {
		t.Errorf("expected empty signals for b, got %+v", b)
	}
}

func TestCollect_NilCollaborators(t *testing.T) {
	c := NewCollector(nil, nil, model.DefaultConfig())
	set := c.Collect(context.Background(), signalVehicles())

	if set.ClassifierAvailable || set.MatcherAvailable {
		t.Error("availability flags must stay false with no collaborators")
	}
	if len(set.Signals) != 2 {
		t.Errorf("expected an entry per candidate, got %d", len(set.Signals))
	}
}

func TestCollect_UnavailableCollaborators(t *testing.T) {
	c := NewCollector(
		&stubClassifier{available: false},
		&stubMatcher{available: false},
		model.DefaultConfig())

	set := c.Collect(context.Background(), signalVehicles())
	if set.ClassifierAvailable || set.MatcherAvailable {
		t.Error("unavailable collaborators must not set availability flags")
	}
}

func TestCollect_CollaboratorErrorsDegrade(t *testing.T) {
	c := NewCollector(
		&stubClassifier{available: true, err: errors.New("engine crashed")},
		&stubMatcher{available: true, err: errors.New("store gone")},
		model.DefaultConfig())

	set := c.Collect(context.Background(), signalVehicles())
	if set.ClassifierAvailable || set.MatcherAvailable {
		t.Error("failed collaborators must not set availability flags")
	}
	for id, sig := range set.Signals {
		if len(sig.RuleCategories) != 0 || sig.SemanticMatch {
			t.Errorf("vehicle %s should carry empty signals, got %+v", id, sig)
		}
	}
}

func TestCollect_EmptyCandidateSet(t *testing.T) {
	c := NewCollector(
		&stubClassifier{available: true, result: classify.NewResult()},
		&stubMatcher{available: true},
		model.DefaultConfig())

	set := c.Collect(context.Background(), nil)
	if len(set.Signals) != 0 {
		t.Errorf("expected no signals for an empty candidate set, got %d", len(set.Signals))
	}
	// Collaborators are not consulted for an empty set.
	if set.ClassifierAvailable || set.MatcherAvailable {
		t.Error("availability flags must stay false for an empty candidate set")
	}
}
