package engine

import "github.com/piwi3910/PalletPlan/internal/model"

// N1 solves the pallet loading problem with a non-recursive single-block strategy.
//
// All cases are placed as one uniform grid in whichever orientation yields more
// cases; on a tie the Vertical orientation is used. Placements are emitted
// column by column (outer loop over x, inner loop over y).
//
// The solution holds every placement, so memory grows with the case count;
// Solve rejects inputs above MaxPlacements.
func N1(bin, item model.Vec2) model.Solution {
	o, nx, ny := n1Grid(bin, item)
	if nx == 0 || ny == 0 {
		return model.Solution{}
	}
	return gridPlacements(o.Extent(item), o, nx, ny, model.Vec2{})
}

// n1Count returns the number of cases N1 places, without building the solution.
func n1Count(bin, item model.Vec2) uint64 {
	_, nx, ny := n1Grid(bin, item)
	return uint64(nx) * uint64(ny)
}

// n1Grid picks the N1 orientation and its grid size.
func n1Grid(bin, item model.Vec2) (model.Orientation, uint32, uint32) {
	if bin.IsZero() || item.IsZero() {
		return model.Vertical, 0, 0
	}

	// How many fit if the case is placed horizontally?
	nxh := bin.X / item.X
	nyh := bin.Y / item.Y

	// How many fit if the case is turned?
	nxv := bin.X / item.Y
	nyv := bin.Y / item.X

	if uint64(nxh)*uint64(nyh) > uint64(nxv)*uint64(nyv) {
		return model.Horizontal, nxh, nyh
	}
	return model.Vertical, nxv, nyv
}

// gridPlacements emits an nx by ny grid of cases with footprint ext, anchored at origin.
func gridPlacements(ext model.Vec2, o model.Orientation, nx, ny uint32, origin model.Vec2) model.Solution {
	out := make(model.Solution, 0, placementCap(uint64(nx)*uint64(ny)))
	for ix := uint32(0); ix < nx; ix++ {
		for iy := uint32(0); iy < ny; iy++ {
			out = append(out, model.Placement{
				Pos:         model.Vec2{X: origin.X + ix*ext.X, Y: origin.Y + iy*ext.Y},
				Orientation: o,
			})
		}
	}
	return out
}

// placementCap is the capacity to preallocate for n placements. Larger
// solutions grow by append.
func placementCap(n uint64) int {
	if n > MaxPlacements {
		return MaxPlacements
	}
	return int(n)
}
