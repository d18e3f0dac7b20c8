package engine

import (
	"errors"
	"fmt"

	"github.com/piwi3910/PalletPlan/internal/model"
)

var (
	// ErrDepthLimit is reported when a guillotine chain is deeper than SearchLimits.MaxDepth.
	ErrDepthLimit = errors.New("g4 recursion depth limit reached")
	// ErrStateLimit is reported when the search explores more than SearchLimits.MaxStates sub-rectangles.
	ErrStateLimit = errors.New("g4 search state limit reached")
)

// stepsPerState bounds the candidate evaluations (including memo hits) per explored state.
const stepsPerState = 256

// SearchLimits caps the G4 search. When a cap is reached the affected residual is
// filled with the N1 pattern only, so the result stays valid but may not be the
// best the decomposition could find.
type SearchLimits struct {
	MaxDepth  int
	MaxStates int
}

// DefaultSearchLimits returns the limits used by G4.
func DefaultSearchLimits() SearchLimits {
	s := model.DefaultSettings()
	return SearchLimits{MaxDepth: s.MaxDepth, MaxStates: s.MaxStates}
}

func (l SearchLimits) withDefaults() SearchLimits {
	d := DefaultSearchLimits()
	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.MaxStates <= 0 {
		l.MaxStates = d.MaxStates
	}
	return l
}

// G4 solves the pallet loading problem with a recursive block decomposition
// over guillotine cuts.
//
// Each rectangle is filled either with the N1 pattern or with a strip of k
// rows/columns of uniformly oriented cases spanning the full other axis,
// followed by the best pattern for the remaining strip. The pattern with the
// most cases wins; ties keep the earliest candidate (N1 first, then Horizontal
// before Vertical, x cuts before y cuts, longer strips before shorter ones).
// G4 therefore never places fewer cases than N1 and returns N1's exact
// solution when no decomposition beats it.
//
// References:
//   - G. Scheithauer, J. Terno, "The G4-Heuristic for the Pallet Loading Problem", 1996.
func G4(bin, item model.Vec2) model.Solution {
	sol, _ := solveG4(bin, item, DefaultSearchLimits())
	return sol
}

// G4Checked runs G4 with explicit limits and reports ErrDepthLimit or
// ErrStateLimit when the search was cut short. The truncated solution is
// returned alongside the error and is still a valid layout.
func G4Checked(bin, item model.Vec2, limits SearchLimits) (model.Solution, error) {
	sol, err := solveG4(bin, item, limits)
	if err != nil {
		return sol, fmt.Errorf("g4 case %s on pallet %s: %w", item, bin, err)
	}
	return sol, nil
}

// solveG4 returns the best solution found and the first limit that truncated the search, if any.
func solveG4(bin, item model.Vec2, limits SearchLimits) (model.Solution, error) {
	if bin.IsZero() || item.IsZero() {
		return model.Solution{}, nil
	}
	s := newG4Search(item, limits.withDefaults())
	root := s.solve(bin, 0)
	out := make(model.Solution, 0, placementCap(root.count))
	return root.appendTo(out, item, model.Vec2{}), s.err
}

// cutAxis is the axis a block strip is measured along.
type cutAxis int

const (
	cutX cutAxis = iota // Strip of columns at the left, residual to the right
	cutY                // Strip of rows at the bottom, residual above
)

// split returns the length along the axis and across it.
func (a cutAxis) split(v model.Vec2) (along, across uint32) {
	if a == cutX {
		return v.X, v.Y
	}
	return v.Y, v.X
}

// vec builds a vector from lengths along and across the axis.
func (a cutAxis) vec(along, across uint32) model.Vec2 {
	if a == cutX {
		return model.Vec2{X: along, Y: across}
	}
	return model.Vec2{X: across, Y: along}
}

// pattern is the chosen filling of one (normalized) rectangle.
type pattern struct {
	size  model.Vec2
	count uint64

	// Block strip; zero-valued when the rectangle uses the N1 pattern.
	block    bool
	o        model.Orientation
	axis     cutAxis
	k        uint32 // strip length in cases along axis
	across   uint32 // cases across the strip
	residual *pattern
}

// appendTo flattens the pattern into placements anchored at origin.
func (p *pattern) appendTo(out model.Solution, item, origin model.Vec2) model.Solution {
	if !p.block {
		o, nx, ny := n1Grid(p.size, item)
		if nx == 0 || ny == 0 {
			return out
		}
		return append(out, gridPlacements(o.Extent(item), o, nx, ny, origin)...)
	}

	ext := p.o.Extent(item)
	grid := p.axis.vec(p.k, p.across)
	out = append(out, gridPlacements(ext, p.o, grid.X, grid.Y, origin)...)

	extAlong, _ := p.axis.split(ext)
	return p.residual.appendTo(out, item, origin.Add(p.axis.vec(p.k*extAlong, 0)))
}

type g4Search struct {
	item     model.Vec2
	itemArea uint64
	limits   SearchLimits
	memo     map[model.Vec2]*pattern

	states    int
	steps     int
	truncated int  // number of patterns cut short by a limit
	exhausted bool // state budget spent; stop enumerating candidates
	err       error
}

func newG4Search(item model.Vec2, limits SearchLimits) *g4Search {
	return &g4Search{
		item:     item,
		itemArea: item.Area(),
		limits:   limits,
		memo:     make(map[model.Vec2]*pattern),
	}
}

func (s *g4Search) truncate(err error) {
	s.truncated++
	if s.err == nil {
		s.err = err
	}
}

// bound is the area bound on cases fitting in v.
func (s *g4Search) bound(v model.Vec2) uint64 {
	return v.Area() / s.itemArea
}

// solve returns the best pattern for bin. Rectangles are first shrunk to the
// largest size reachable by summing case sides, which leaves every pattern's
// count unchanged and lets equivalent residuals share one memo entry.
func (s *g4Search) solve(bin model.Vec2, depth int) *pattern {
	bin = model.Vec2{
		X: conicFloor(bin.X, s.item.X, s.item.Y),
		Y: conicFloor(bin.Y, s.item.X, s.item.Y),
	}
	if p, ok := s.memo[bin]; ok {
		return p
	}

	best := &pattern{size: bin, count: n1Count(bin, s.item)}
	if best.count == 0 {
		// Neither orientation fits.
		s.memo[bin] = best
		return best
	}

	bound := s.bound(bin)
	if best.count >= bound {
		s.memo[bin] = best
		return best
	}
	if depth >= s.limits.MaxDepth {
		s.truncate(ErrDepthLimit)
		return best
	}
	if s.exhausted || s.states >= s.limits.MaxStates {
		s.exhausted = true
		s.truncate(ErrStateLimit)
		return best
	}
	s.states++
	before := s.truncated

search:
	for _, o := range []model.Orientation{model.Horizontal, model.Vertical} {
		ext := o.Extent(s.item)
		for _, axis := range []cutAxis{cutX, cutY} {
			length, width := axis.split(bin)
			extAlong, extAcross := axis.split(ext)
			if extAlong > length || extAcross > width {
				continue
			}
			across := width / extAcross

			for k := length / extAlong; k >= 1; k-- {
				if s.exhausted {
					break search
				}
				s.steps++
				if s.steps > s.limits.MaxStates*stepsPerState {
					s.exhausted = true
					s.truncate(ErrStateLimit)
					break search
				}

				blockCount := uint64(k) * uint64(across)
				rest := axis.vec(length-k*extAlong, width)
				if blockCount+s.bound(rest) <= best.count {
					continue
				}

				r := s.solve(rest, depth+1)
				if total := blockCount + r.count; total > best.count {
					best = &pattern{
						size:     bin,
						count:    total,
						block:    true,
						o:        o,
						axis:     axis,
						k:        k,
						across:   across,
						residual: r,
					}
					if total >= bound {
						break search
					}
				}
			}
		}
	}

	if s.truncated == before {
		s.memo[bin] = best
	}
	return best
}

// conicFloor returns the largest i*a + j*b that does not exceed v.
func conicFloor(v, a, b uint32) uint32 {
	if a > b {
		a, b = b, a
	}
	if a == 0 {
		return 0
	}
	best := (v / a) * a
	if best == v || a == b {
		return best
	}
	// Using j >= a copies of b is the same length as j-a copies of b plus b copies of a.
	for j := uint32(1); j <= v/b && j < a; j++ {
		c := j*b + ((v-j*b)/a)*a
		if c > best {
			best = c
			if best == v {
				break
			}
		}
	}
	return best
}
