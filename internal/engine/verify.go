package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/piwi3910/PalletPlan/internal/model"
)

var (
	ErrOutOfBounds = errors.New("placement outside pallet")
	ErrOverlap     = errors.New("placements overlap")
)

// Verify checks that every placement lies inside the pallet and that no two
// placements overlap. It returns the first violation found.
func Verify(bin, item model.Vec2, sol model.Solution) error {
	rects := make([]model.Rect, len(sol))
	for i, p := range sol {
		rects[i] = p.Rect(item)
		if !rects[i].Within(bin) {
			return fmt.Errorf("%w: #%d %s with extent %s on pallet %s",
				ErrOutOfBounds, i, p, p.Extent(item), bin)
		}
	}

	// Sweep along x, only comparing against rectangles still open at the current x.
	order := make([]int, len(rects))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rects[order[a]].Min.X < rects[order[b]].Min.X
	})

	var active []int
	for _, i := range order {
		r := rects[i]
		kept := active[:0]
		for _, j := range active {
			if maxX, _ := rects[j].Max(); maxX > uint64(r.Min.X) {
				kept = append(kept, j)
			}
		}
		active = kept

		for _, j := range active {
			if r.Overlaps(rects[j]) {
				a, b := min(i, j), max(i, j)
				return fmt.Errorf("%w: #%d %s and #%d %s", ErrOverlap, a, sol[a], b, sol[b])
			}
		}
		active = append(active, i)
	}
	return nil
}
