package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/piwi3910/PalletPlan/internal/model"
)

// Planner turns jobs into plans using the configured strategy.
type Planner struct {
	Settings model.PlanSettings
	log      *slog.Logger
}

// New returns a Planner. A nil logger discards log output.
func New(settings model.PlanSettings, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Planner{Settings: settings, log: logger}
}

// Limits returns the G4 search limits derived from the settings.
func (p *Planner) Limits() SearchLimits {
	return SearchLimits{MaxDepth: p.Settings.MaxDepth, MaxStates: p.Settings.MaxStates}.withDefaults()
}

// Plan solves a single job. The job's own algorithm takes precedence over the
// planner default. A G4 search cut short by its limits still yields a valid
// plan; the truncation is logged rather than returned.
func (p *Planner) Plan(job model.Job) (model.Plan, error) {
	alg := job.Algorithm
	if alg == "" {
		alg = p.Settings.Algorithm
	}

	start := time.Now()
	sol, err := p.solve(alg, job)
	if err != nil {
		return model.Plan{}, fmt.Errorf("plan %q: %w", job.Label, err)
	}

	if p.Settings.Verify {
		if err := Verify(job.Pallet, job.Case, sol); err != nil {
			return model.Plan{}, fmt.Errorf("plan %q failed verification: %w", job.Label, err)
		}
	}

	plan := model.Plan{
		ID:         uuid.New().String()[:8],
		JobID:      job.ID,
		Label:      job.Label,
		Pallet:     job.Pallet,
		Case:       job.Case,
		Algorithm:  alg,
		Placements: sol,
		CreatedAt:  time.Now().UTC(),
	}

	p.log.Debug("planned job",
		"job", job.ID,
		"label", job.Label,
		"algorithm", string(alg),
		"pallet", job.Pallet.String(),
		"case", job.Case.String(),
		"placed", plan.Count(),
		"efficiency", plan.Efficiency(),
		"elapsed", time.Since(start),
	)
	return plan, nil
}

func (p *Planner) solve(alg model.Algorithm, job model.Job) (model.Solution, error) {
	if alg != model.AlgorithmG4 {
		return SolveWithLimits(alg, job.Pallet, job.Case, p.Limits())
	}

	if err := checkCapacity(job.Pallet, job.Case); err != nil {
		return nil, err
	}
	sol, err := solveG4(job.Pallet, job.Case, p.Limits())
	if err != nil {
		if !errors.Is(err, ErrDepthLimit) && !errors.Is(err, ErrStateLimit) {
			return nil, err
		}
		p.log.Warn("g4 search truncated, plan may not be the best decomposition",
			"job", job.ID,
			"pallet", job.Pallet.String(),
			"case", job.Case.String(),
			"reason", err.Error(),
		)
	}
	return sol, nil
}
