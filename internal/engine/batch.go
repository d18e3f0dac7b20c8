package engine

import (
	"context"
	"runtime"

	"github.com/piwi3910/PalletPlan/internal/model"
	"github.com/sourcegraph/conc/iter"
)

// BatchResult pairs a job with its plan or the error that prevented it.
type BatchResult struct {
	Job  model.Job
	Plan model.Plan
	Err  error
}

// PlanBatch plans jobs concurrently on up to workers goroutines and returns
// one result per job in input order. workers <= 0 uses GOMAXPROCS. Jobs that
// have not started when ctx is cancelled report ctx.Err().
func (p *Planner) PlanBatch(ctx context.Context, jobs []model.Job, workers int) []BatchResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	mapper := iter.Mapper[model.Job, BatchResult]{MaxGoroutines: workers}
	results := mapper.Map(jobs, func(job *model.Job) BatchResult {
		if err := ctx.Err(); err != nil {
			return BatchResult{Job: *job, Err: err}
		}
		plan, err := p.Plan(*job)
		return BatchResult{Job: *job, Plan: plan, Err: err}
	})

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	p.log.Info("batch planned", "jobs", len(jobs), "failed", failed, "workers", workers)
	return results
}
