package engine

import (
	"errors"
	"fmt"

	"github.com/piwi3910/PalletPlan/internal/model"
)

// MaxPlacements caps the size of a solution the checked entry points will build.
const MaxPlacements = 1 << 22

var (
	ErrUnknownAlgorithm   = errors.New("unknown algorithm")
	ErrTooManyPlacements  = errors.New("too many placements")
	errNoAlgorithmDefault = fmt.Errorf("%w: empty name", ErrUnknownAlgorithm)
)

// Solve runs the named strategy. Unlike N1 and G4 it refuses inputs whose area
// bound exceeds MaxPlacements. A G4 search cut short by its limits still
// returns its valid layout; use G4Checked to detect truncation.
func Solve(alg model.Algorithm, bin, item model.Vec2) (model.Solution, error) {
	return SolveWithLimits(alg, bin, item, DefaultSearchLimits())
}

// SolveWithLimits is Solve with explicit G4 limits.
func SolveWithLimits(alg model.Algorithm, bin, item model.Vec2, limits SearchLimits) (model.Solution, error) {
	if err := checkCapacity(bin, item); err != nil {
		return nil, err
	}
	switch alg {
	case model.AlgorithmN1:
		return N1(bin, item), nil
	case model.AlgorithmG4:
		sol, _ := solveG4(bin, item, limits)
		return sol, nil
	case "":
		return nil, errNoAlgorithmDefault
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}

func checkCapacity(bin, item model.Vec2) error {
	if bin.IsZero() || item.IsZero() {
		return nil
	}
	if n := bin.Area() / item.Area(); n > MaxPlacements {
		return fmt.Errorf("%w: case %s on pallet %s allows up to %d cases (limit %d)",
			ErrTooManyPlacements, item, bin, n, MaxPlacements)
	}
	return nil
}
