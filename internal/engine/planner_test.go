package engine

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/piwi3910/PalletPlan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTestSettings() model.PlanSettings {
	return model.DefaultSettings()
}

func TestPlan_DefaultAlgorithm(t *testing.T) {
	p := New(defaultTestSettings(), nil)
	job := model.NewJob("crate", model.V(10, 7), model.V(3, 2))

	plan, err := p.Plan(job)
	require.NoError(t, err)

	assert.Equal(t, model.AlgorithmG4, plan.Algorithm)
	assert.Equal(t, 11, plan.Count())
	assert.Equal(t, job.ID, plan.JobID)
	assert.Equal(t, "crate", plan.Label)
	assert.Len(t, plan.ID, 8)
	assert.False(t, plan.CreatedAt.IsZero())
	assert.InDelta(t, 94.28, plan.Efficiency(), 0.01)
}

func TestPlan_JobAlgorithmOverridesDefault(t *testing.T) {
	p := New(defaultTestSettings(), nil)
	job := model.NewJob("crate", model.V(10, 7), model.V(3, 2))
	job.Algorithm = model.AlgorithmN1

	plan, err := p.Plan(job)
	require.NoError(t, err)
	assert.Equal(t, model.AlgorithmN1, plan.Algorithm)
	assert.Equal(t, 10, plan.Count())
}

func TestPlan_UnknownAlgorithm(t *testing.T) {
	p := New(defaultTestSettings(), nil)
	job := model.NewJob("crate", model.V(10, 7), model.V(3, 2))
	job.Algorithm = "shelf"

	_, err := p.Plan(job)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	assert.Contains(t, err.Error(), `"crate"`)
}

func TestPlan_TruncatedSearchLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	settings := defaultTestSettings()
	settings.MaxDepth = 1
	p := New(settings, logger)

	plan, err := p.Plan(model.NewJob("shallow", model.V(10, 7), model.V(3, 2)))
	require.NoError(t, err)
	assert.Equal(t, 11, plan.Count())
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "g4 search truncated")
	assert.Contains(t, buf.String(), "planned job")
}

func TestPlan_RejectsHugeLayouts(t *testing.T) {
	p := New(defaultTestSettings(), nil)
	_, err := p.Plan(model.NewJob("dust", model.V(1<<16, 1<<16), model.V(1, 1)))
	assert.ErrorIs(t, err, ErrTooManyPlacements)
}

func TestCompareScenarios(t *testing.T) {
	scenarios := BuildDefaultScenarios(defaultTestSettings())
	require.Len(t, scenarios, 3)
	assert.Equal(t, model.AlgorithmN1, scenarios[0].Settings.Algorithm)
	assert.Equal(t, model.AlgorithmG4, scenarios[1].Settings.Algorithm)
	assert.Equal(t, 2, scenarios[2].Settings.MaxDepth)

	job := model.NewJob("crate", model.V(10, 7), model.V(3, 2))
	job.Algorithm = model.AlgorithmN1 // ignored by the comparison

	results := CompareScenarios(scenarios, job, nil)
	require.Len(t, results, 3)
	for _, r := range results {
		require.NoError(t, r.Err)
	}

	assert.Equal(t, 10, results[0].Placed)
	assert.Equal(t, 0, results[0].GainOverN1)
	assert.Equal(t, 11, results[1].Placed)
	assert.Equal(t, 1, results[1].GainOverN1)
	assert.Equal(t, 1, BestResult(results))
}

func TestBuildDefaultScenarios_ShallowBase(t *testing.T) {
	s := defaultTestSettings()
	s.MaxDepth = 2
	assert.Len(t, BuildDefaultScenarios(s), 2)
}

func TestBestResult_AllFailed(t *testing.T) {
	results := []ComparisonResult{{Err: ErrUnknownAlgorithm}}
	assert.Equal(t, -1, BestResult(results))
}

func TestPlanBatch_PreservesOrder(t *testing.T) {
	p := New(defaultTestSettings(), nil)

	bad := model.NewJob("bad", model.V(10, 7), model.V(3, 2))
	bad.Algorithm = "nope"
	jobs := []model.Job{
		model.NewJob("euro", model.V(1200, 800), model.V(400, 300)),
		bad,
		model.NewJob("crate", model.V(10, 7), model.V(3, 2)),
	}

	results := p.PlanBatch(context.Background(), jobs, 2)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, "euro", results[0].Plan.Label)
	assert.Equal(t, 8, results[0].Plan.Count())

	assert.ErrorIs(t, results[1].Err, ErrUnknownAlgorithm)
	assert.Equal(t, bad.ID, results[1].Job.ID)

	assert.NoError(t, results[2].Err)
	assert.Equal(t, 11, results[2].Plan.Count())
}

func TestPlanBatch_Cancelled(t *testing.T) {
	p := New(defaultTestSettings(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []model.Job{
		model.NewJob("a", model.V(10, 7), model.V(3, 2)),
		model.NewJob("b", model.V(10, 7), model.V(3, 2)),
	}
	results := p.PlanBatch(ctx, jobs, 0)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}
