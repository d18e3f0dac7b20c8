package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Algorithm names a placement strategy.
type Algorithm string

const (
	AlgorithmN1 Algorithm = "n1" // Single uniform block, fastest
	AlgorithmG4 Algorithm = "g4" // Recursive guillotine block decomposition
)

// Algorithms lists the supported strategies in display order.
var Algorithms = []Algorithm{AlgorithmN1, AlgorithmG4}

// ParseAlgorithm normalizes a user-supplied strategy name.
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Algorithms {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown algorithm %q (want n1 or g4)", s)
}

// PlanSettings holds planner configuration.
type PlanSettings struct {
	Algorithm Algorithm `json:"algorithm"`
	MaxDepth  int       `json:"max_depth"`  // G4 recursion ceiling
	MaxStates int       `json:"max_states"` // G4 distinct sub-rectangles explored per solve
	Verify    bool      `json:"verify"`     // Re-check overlap/containment after each solve
}

func DefaultSettings() PlanSettings {
	return PlanSettings{
		Algorithm: AlgorithmG4,
		MaxDepth:  64,
		MaxStates: 1 << 15,
		Verify:    true,
	}
}

// Job is one pallet/case pair to plan.
type Job struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Pallet    Vec2      `json:"pallet"`
	Case      Vec2      `json:"case"`
	Algorithm Algorithm `json:"algorithm,omitempty"` // Empty means the planner default
}

func NewJob(label string, pallet, item Vec2) Job {
	return Job{
		ID:     uuid.New().String()[:8],
		Label:  label,
		Pallet: pallet,
		Case:   item,
	}
}

// UpperBound is the area bound on the number of cases the job can place.
func (j Job) UpperBound() uint64 {
	ca := j.Case.Area()
	if ca == 0 {
		return 0
	}
	return j.Pallet.Area() / ca
}

// Plan is a solved job.
type Plan struct {
	ID         string    `json:"id"`
	JobID      string    `json:"job_id"`
	Label      string    `json:"label"`
	Pallet     Vec2      `json:"pallet"`
	Case       Vec2      `json:"case"`
	Algorithm  Algorithm `json:"algorithm"`
	Placements Solution  `json:"placements"`
	CreatedAt  time.Time `json:"created_at"`
}

// Count returns the number of placed cases.
func (p Plan) Count() int {
	return len(p.Placements)
}

// UsedArea returns the total footprint of placed cases.
func (p Plan) UsedArea() uint64 {
	return uint64(len(p.Placements)) * p.Case.Area()
}

// TotalArea returns the pallet area.
func (p Plan) TotalArea() uint64 {
	return p.Pallet.Area()
}

// Efficiency returns the pallet coverage percentage.
func (p Plan) Efficiency() float64 {
	ta := p.TotalArea()
	if ta == 0 {
		return 0
	}
	return float64(p.UsedArea()) / float64(ta) * 100.0
}

// UpperBound is the trivial area bound on the number of cases.
func (p Plan) UpperBound() uint64 {
	return Job{Pallet: p.Pallet, Case: p.Case}.UpperBound()
}
