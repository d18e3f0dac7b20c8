package engine

import (
	"fmt"
	"log/slog"

	"github.com/piwi3910/PalletPlan/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.PlanSettings
}

// ComparisonResult holds the plan and computed statistics for a single scenario.
type ComparisonResult struct {
	Scenario   ComparisonScenario
	Plan       model.Plan
	Placed     int
	Efficiency float64
	GainOverN1 int // Extra cases placed compared with the N1 baseline
	Err        error
}

// CompareScenarios plans the job once per scenario and returns the results in
// scenario order. The job's own algorithm is ignored so each scenario's
// settings decide the strategy.
func CompareScenarios(scenarios []ComparisonScenario, job model.Job, logger *slog.Logger) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))
	baseline := n1Count(job.Pallet, job.Case)

	job.Algorithm = ""
	for _, scenario := range scenarios {
		plan, err := New(scenario.Settings, logger).Plan(job)
		res := ComparisonResult{Scenario: scenario, Plan: plan, Err: err}
		if err == nil {
			res.Placed = plan.Count()
			res.Efficiency = plan.Efficiency()
			res.GainOverN1 = plan.Count() - int(baseline)
		}
		results = append(results, res)
	}
	return results
}

// BuildDefaultScenarios generates a comparison of both strategies based on
// the current settings, plus a shallow G4 search when the base depth allows it.
func BuildDefaultScenarios(baseSettings model.PlanSettings) []ComparisonScenario {
	n1 := baseSettings
	n1.Algorithm = model.AlgorithmN1
	g4 := baseSettings
	g4.Algorithm = model.AlgorithmG4

	scenarios := []ComparisonScenario{
		{Name: "N1 single block", Settings: n1},
		{Name: "G4 block decomposition", Settings: g4},
	}

	// Scenario: shallow recursion, to show how much depth buys
	if baseSettings.MaxDepth > 2 {
		shallow := g4
		shallow.MaxDepth = 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("G4 depth %d", shallow.MaxDepth),
			Settings: shallow,
		})
	}

	return scenarios
}

// BestResult returns the index of the result with the most placed cases.
// Ties keep the earlier scenario; -1 means every scenario failed.
func BestResult(results []ComparisonResult) int {
	best := -1
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		if best < 0 || r.Placed > results[best].Placed {
			best = i
		}
	}
	return best
}

// CompareStrategies runs the default scenarios for the planner's settings.
func (p *Planner) CompareStrategies(job model.Job) []ComparisonResult {
	return CompareScenarios(BuildDefaultScenarios(p.Settings), job, p.log)
}
