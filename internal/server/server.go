// Package server exposes the planner over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/PalletPlan/internal/engine"
	"github.com/piwi3910/PalletPlan/internal/export"
	"github.com/piwi3910/PalletPlan/internal/model"
)

const (
	// MaxBatchJobs caps the number of jobs accepted in one request.
	MaxBatchJobs = 1000
	// MaxBatchPlacements caps the summed area bound of all jobs in one request.
	MaxBatchPlacements = 1 << 24
)

const shutdownTimeout = 10 * time.Second

// Server wires the planner, metrics and routes together.
type Server struct {
	planner *engine.Planner
	log     *slog.Logger
	metrics *Metrics
	workers int
	router  *gin.Engine
}

// New builds a Server. workers bounds batch concurrency; 0 means one per CPU.
func New(planner *engine.Planner, logger *slog.Logger, workers int) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		planner: planner,
		log:     logger,
		metrics: NewMetrics(),
		workers: workers,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger), s.metrics.instrument())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := r.Group("/v1")
	v1.POST("/plan", s.handlePlan)
	v1.POST("/plans", s.handleBatch)
	v1.POST("/compare", s.handleCompare)
	v1.POST("/chart", s.handleChart)

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's metric set.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// jobRequest is the wire form of a job. ID is optional.
type jobRequest struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Pallet    model.Vec2 `json:"pallet"`
	Case      model.Vec2 `json:"case"`
	Algorithm string     `json:"algorithm"`
}

func (r jobRequest) toJob() (model.Job, error) {
	job := model.NewJob(r.Label, r.Pallet, r.Case)
	if r.ID != "" {
		job.ID = r.ID
	}
	if r.Algorithm != "" {
		alg, err := model.ParseAlgorithm(r.Algorithm)
		if err != nil {
			return model.Job{}, err
		}
		job.Algorithm = alg
	}
	return job, nil
}

type batchRequest struct {
	Jobs []jobRequest `json:"jobs"`
}

// planResponse adds derived statistics to a plan.
type planResponse struct {
	Plan       model.Plan `json:"plan"`
	Count      int        `json:"count"`
	UpperBound uint64     `json:"upper_bound"`
	Efficiency float64    `json:"efficiency"`
}

func newPlanResponse(p model.Plan) planResponse {
	return planResponse{Plan: p, Count: p.Count(), UpperBound: p.UpperBound(), Efficiency: p.Efficiency()}
}

type batchItem struct {
	JobID string        `json:"job_id"`
	Label string        `json:"label"`
	Plan  *planResponse `json:"result,omitempty"`
	Error string        `json:"error,omitempty"`
}

type compareItem struct {
	Name       string          `json:"name"`
	Algorithm  model.Algorithm `json:"algorithm"`
	MaxDepth   int             `json:"max_depth"`
	Placed     int             `json:"placed"`
	Efficiency float64         `json:"efficiency"`
	GainOverN1 int             `json:"gain_over_n1"`
	Best       bool            `json:"best"`
	Error      string          `json:"error,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handlePlan(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := req.toJob()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := s.plan(job)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newPlanResponse(plan))
}

func (s *Server) handleBatch(c *gin.Context) {
	jobs, ok := s.bindJobs(c)
	if !ok {
		return
	}

	start := time.Now()
	results := s.planner.PlanBatch(c.Request.Context(), jobs, s.workers)
	perJob := time.Since(start) / time.Duration(len(jobs))

	items := make([]batchItem, len(results))
	for i, r := range results {
		s.metrics.observePlan(r.Job.Algorithm, perJob, r.Plan, r.Err)
		items[i] = batchItem{JobID: r.Job.ID, Label: r.Job.Label}
		if r.Err != nil {
			items[i].Error = r.Err.Error()
			continue
		}
		resp := newPlanResponse(r.Plan)
		items[i].Plan = &resp
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

func (s *Server) handleCompare(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := req.toJob()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := s.planner.CompareStrategies(job)
	best := engine.BestResult(results)

	items := make([]compareItem, len(results))
	for i, r := range results {
		items[i] = compareItem{
			Name:       r.Scenario.Name,
			Algorithm:  r.Scenario.Settings.Algorithm,
			MaxDepth:   r.Scenario.Settings.MaxDepth,
			Placed:     r.Placed,
			Efficiency: r.Efficiency,
			GainOverN1: r.GainOverN1,
			Best:       i == best,
		}
		if r.Err != nil {
			items[i].Error = r.Err.Error()
		}
	}
	c.JSON(http.StatusOK, gin.H{"job_id": job.ID, "results": items})
}

func (s *Server) handleChart(c *gin.Context) {
	jobs, ok := s.bindJobs(c)
	if !ok {
		return
	}

	plans := make([]model.Plan, 0, len(jobs))
	for _, job := range jobs {
		plan, err := s.plan(job)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "job_id": job.ID})
			return
		}
		plans = append(plans, plan)
	}

	var buf bytes.Buffer
	if err := export.RenderComparisonChart(&buf, plans); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) bindJobs(c *gin.Context) ([]model.Job, bool) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if len(req.Jobs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no jobs"})
		return nil, false
	}
	if len(req.Jobs) > MaxBatchJobs {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too many jobs"})
		return nil, false
	}

	jobs := make([]model.Job, len(req.Jobs))
	var total uint64
	for i, r := range req.Jobs {
		job, err := r.toJob()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "index": i})
			return nil, false
		}
		jobs[i] = job

		bound := job.UpperBound()
		if bound > MaxBatchPlacements-total {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("jobs exceed the budget of %d cases per request", MaxBatchPlacements),
				"index": i,
			})
			return nil, false
		}
		total += bound
	}
	return jobs, true
}

func (s *Server) plan(job model.Job) (model.Plan, error) {
	start := time.Now()
	plan, err := s.planner.Plan(job)
	s.metrics.observePlan(job.Algorithm, time.Since(start), plan, err)
	return plan, err
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnknownAlgorithm):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrTooManyPlacements):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger writes one structured access log line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.InfoContext(c.Request.Context(), "http request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"cost", time.Since(start),
		)
	}
}
