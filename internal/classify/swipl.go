package classify

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/carscout/carscout/internal/model"
)

// Default install locations probed when no explicit path is configured.
var swiplCandidates = []string{
	"swipl",
	"/opt/homebrew/bin/swipl",
	"/usr/local/bin/swipl",
	"/usr/bin/swipl",
}

const swiplProbeTimeout = 3 * time.Second

// SwiplClassifier shells out to an external SWI-Prolog engine. The expert
// rules live in a Prolog source file; this adapter only generates facts,
// runs queries, and parses the results. A shared rate limiter throttles
// subprocess launches so concurrent batch runs do not fork-bomb the host.
type SwiplClassifier struct {
	binPath       string
	rulesPath     string
	timeout       time.Duration
	referenceYear int
	limiter       *rate.Limiter
}

// NewSwiplClassifier locates the swipl binary. A missing binary is not an
// error here; it surfaces through IsAvailable so the pipeline can degrade.
func NewSwiplClassifier(cfg model.ClassifierConfig, referenceYear int) *SwiplClassifier {
	rulesPath := cfg.RulesPath
	if rulesPath == "" {
		rulesPath = "prolog/car_rules.pl"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &SwiplClassifier{
		binPath:       findSwipl(cfg.SwiplPath),
		rulesPath:     rulesPath,
		timeout:       timeout,
		referenceYear: referenceYear,
		limiter:       rate.NewLimiter(rate.Limit(5), 2),
	}
}

func findSwipl(explicit string) string {
	candidates := swiplCandidates
	if explicit != "" {
		candidates = []string{explicit}
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return path
		}
	}
	return ""
}

// Name identifies the engine.
func (s *SwiplClassifier) Name() string { return "swipl" }

// IsAvailable probes the binary and the rules file.
func (s *SwiplClassifier) IsAvailable(ctx context.Context) bool {
	if s.binPath == "" {
		return false
	}
	if _, err := os.Stat(s.rulesPath); err != nil {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, swiplProbeTimeout)
	defer cancel()

	if err := s.limiter.Wait(probeCtx); err != nil {
		return false
	}
	return exec.CommandContext(probeCtx, s.binPath, "--version").Run() == nil
}

// Classify generates a facts file for the vehicle set, runs the category and
// strengths queries in a single engine invocation, and maps the results back
// to vehicle identifiers.
func (s *SwiplClassifier) Classify(ctx context.Context, vehicles []model.VehicleRecord) (*Result, error) {
	if s.binPath == "" {
		return nil, ErrUnavailable
	}

	dir, err := os.MkdirTemp("", "carscout-swipl-")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	factsPath := filepath.Join(dir, "facts.pl")
	if err := os.WriteFile(factsPath, []byte(generateFacts(vehicles)), 0o644); err != nil {
		return nil, fmt.Errorf("write facts: %w", err)
	}

	rulesAbs, err := filepath.Abs(s.rulesPath)
	if err != nil {
		return nil, fmt.Errorf("resolve rules path: %w", err)
	}

	scriptPath := filepath.Join(dir, "query.pl")
	if err := os.WriteFile(scriptPath, []byte(generateQueryScript(rulesAbs, factsPath)), 0o644); err != nil {
		return nil, fmt.Errorf("write query script: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(runCtx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(runCtx, s.binPath, "-q", "-s", scriptPath)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: engine run failed: %v", ErrUnavailable, err)
	}

	return parseEngineOutput(&stdout, vehicles), nil
}

// generateFacts converts the vehicle set to car/7 facts in the collaborator
// contract order: make, model, year, price, safety, reliability, mileage.
func generateFacts(vehicles []model.VehicleRecord) string {
	var b strings.Builder
	b.WriteString("% Generated car facts - do not edit manually\n")
	b.WriteString(":- discontiguous car/7.\n\n")
	for _, v := range vehicles {
		fmt.Fprintf(&b, "car('%s', '%s', %d, %.2f, %.2f, %.4f, %.1f).\n",
			escapeAtom(v.Make), escapeAtom(v.Model),
			v.Year, v.Price, v.SafetyRating, v.ReliabilityScore, v.Mileage)
	}
	return b.String()
}

func escapeAtom(s string) string {
	return strings.ReplaceAll(strings.ToUpper(s), "'", "")
}

// generateQueryScript builds one script that emits every category match and
// every strength fact. Each category predicate is wrapped in catch/3 so a
// rules file missing one predicate still answers for the rest.
func generateQueryScript(rulesPath, factsPath string) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":- ['%s'].\n", rulesPath)
	fmt.Fprintf(&b, ":- ['%s'].\n\n", factsPath)

	for _, cat := range Categories {
		fmt.Fprintf(&b, "run_%s :-\n", cat)
		b.WriteString("    car(Make, Model, Year, Price, Safety, Rel, Miles),\n")
		b.WriteString("    Car = car(Make, Model, Year, Price, Safety, Rel, Miles),\n")
		fmt.Fprintf(&b, "    catch(%s(Car), _, fail),\n", cat)
		fmt.Fprintf(&b, "    format('CATEGORY|%s|~w|~w|~w~n', [Make, Model, Year]),\n", cat)
		b.WriteString("    fail.\n")
		fmt.Fprintf(&b, "run_%s.\n\n", cat)
	}

	b.WriteString("run_strengths :-\n")
	b.WriteString("    car(Make, Model, Year, Price, Safety, Rel, Miles),\n")
	b.WriteString("    Car = car(Make, Model, Year, Price, Safety, Rel, Miles),\n")
	b.WriteString("    catch(car_strengths(Car, Strengths), _, fail),\n")
	b.WriteString("    member(S, Strengths),\n")
	b.WriteString("    format('STRENGTH|~w|~w|~w|~w~n', [Make, Model, Year, S]),\n")
	b.WriteString("    fail.\n")
	b.WriteString("run_strengths.\n\n")

	b.WriteString(":- ")
	for _, cat := range Categories {
		fmt.Fprintf(&b, "run_%s, ", cat)
	}
	b.WriteString("run_strengths, halt.\n")
	return b.String()
}

// parseEngineOutput maps CATEGORY and STRENGTH lines back to vehicle IDs.
// Several listings can share make/model/year; all of them receive the tag.
func parseEngineOutput(out *bytes.Buffer, vehicles []model.VehicleRecord) *Result {
	index := make(map[string][]string, len(vehicles))
	for _, v := range vehicles {
		key := fmt.Sprintf("%s|%s|%d", v.Make, v.Model, v.Year)
		index[key] = append(index[key], v.ID)
	}

	result := NewResult()
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "CATEGORY|"):
			parts := strings.Split(line, "|")
			if len(parts) != 5 {
				continue
			}
			key := fmt.Sprintf("%s|%s|%s", parts[2], parts[3], parts[4])
			for _, id := range index[key] {
				result.Categories[id] = append(result.Categories[id], parts[1])
			}
		case strings.HasPrefix(line, "STRENGTH|"):
			parts := strings.SplitN(line, "|", 5)
			if len(parts) != 5 {
				continue
			}
			key := fmt.Sprintf("%s|%s|%s", parts[1], parts[2], parts[3])
			for _, id := range index[key] {
				result.Strengths[id] = append(result.Strengths[id], parts[4])
			}
		}
	}
	return result
}
