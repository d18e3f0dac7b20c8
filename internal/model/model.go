package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Vec2 is an integer 2D vector used both for sizes (pallet, case) and for
// placement positions. X is the width axis, Y the depth axis (mm).
type Vec2 struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y uint32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the component-wise sum.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns the component-wise difference. Callers must ensure o <= v on both axes.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Swap returns the vector with its axes exchanged (a 90° turn of a size).
func (v Vec2) Swap() Vec2 {
	return Vec2{X: v.Y, Y: v.X}
}

// IsZero reports whether either axis is zero, i.e. the shape is degenerate.
func (v Vec2) IsZero() bool {
	return v.X == 0 || v.Y == 0
}

// Area returns X*Y without overflowing.
func (v Vec2) Area() uint64 {
	return uint64(v.X) * uint64(v.Y)
}

// Fits reports whether v fits inside o on both axes.
func (v Vec2) Fits(o Vec2) bool {
	return v.X <= o.X && v.Y <= o.Y
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%d, %d)", v.X, v.Y)
}

// sizeRe accepts 1200x800, 1200*800, 1200×800 and 1200-800, optionally with spaces.
var sizeRe = regexp.MustCompile(`^\s*(\d+)\s*[×xX*-]\s*(\d+)\s*(mm)?\s*$`)

// ParseVec2 parses a size written as "WIDTHxDEPTH".
func ParseVec2(s string) (Vec2, error) {
	m := sizeRe.FindStringSubmatch(s)
	if m == nil {
		return Vec2{}, fmt.Errorf("invalid size %q: expected WIDTHxDEPTH", strings.TrimSpace(s))
	}
	x, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return Vec2{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	y, err := strconv.ParseUint(m[2], 10, 32)
	if err != nil {
		return Vec2{}, fmt.Errorf("invalid depth in %q: %w", s, err)
	}
	return Vec2{X: uint32(x), Y: uint32(y)}, nil
}

// Orientation is the rotation of a case on the pallet.
type Orientation int

const (
	Horizontal Orientation = iota // Case axes as given
	Vertical                      // Case turned 90°, axes swapped
)

func (o Orientation) String() string {
	switch o {
	case Vertical:
		return "Vertical"
	default:
		return "Horizontal"
	}
}

// MarshalText encodes the orientation by name so JSON output stays readable.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText (case-insensitive).
func (o *Orientation) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "horizontal", "h":
		*o = Horizontal
	case "vertical", "v":
		*o = Vertical
	default:
		return fmt.Errorf("unknown orientation %q", string(b))
	}
	return nil
}

// Extent returns the footprint of item when placed in this orientation.
func (o Orientation) Extent(item Vec2) Vec2 {
	if o == Vertical {
		return item.Swap()
	}
	return item
}

// Rect is an axis-aligned rectangle; Min is inclusive, Min+Size exclusive.
type Rect struct {
	Min  Vec2
	Size Vec2
}

// Max returns the exclusive upper corner, widened to uint64 to avoid overflow.
func (r Rect) Max() (x, y uint64) {
	return uint64(r.Min.X) + uint64(r.Size.X), uint64(r.Min.Y) + uint64(r.Size.Y)
}

// Overlaps reports whether two rectangles share interior area (touching edges do not count).
func (r Rect) Overlaps(o Rect) bool {
	rx, ry := r.Max()
	ox, oy := o.Max()
	return uint64(r.Min.X) < ox && uint64(o.Min.X) < rx &&
		uint64(r.Min.Y) < oy && uint64(o.Min.Y) < ry
}

// Within reports whether r lies entirely inside [0,bin.X) x [0,bin.Y).
func (r Rect) Within(bin Vec2) bool {
	x, y := r.Max()
	return x <= uint64(bin.X) && y <= uint64(bin.Y)
}

// Placement is one case on the pallet: its lower-left corner and rotation.
type Placement struct {
	Pos         Vec2        `json:"pos"`
	Orientation Orientation `json:"orientation"`
}

// Extent returns the occupied size of item in this placement.
func (p Placement) Extent(item Vec2) Vec2 {
	return p.Orientation.Extent(item)
}

// Rect returns the occupied rectangle of item in this placement.
func (p Placement) Rect(item Vec2) Rect {
	return Rect{Min: p.Pos, Size: p.Extent(item)}
}

func (p Placement) String() string {
	return fmt.Sprintf("{%s %s}", p.Pos, p.Orientation)
}

// Solution is the ordered list of placements produced by a strategy.
type Solution []Placement

// Count returns the number of placed cases.
func (s Solution) Count() int {
	return len(s)
}

// Translate returns a copy of s with every position shifted by off.
func (s Solution) Translate(off Vec2) Solution {
	out := make(Solution, len(s))
	for i, p := range s {
		out[i] = Placement{Pos: p.Pos.Add(off), Orientation: p.Orientation}
	}
	return out
}

// CountBy returns how many placements use each orientation.
func (s Solution) CountBy() (horizontal, vertical int) {
	for _, p := range s {
		if p.Orientation == Vertical {
			vertical++
		} else {
			horizontal++
		}
	}
	return horizontal, vertical
}

func (s Solution) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i, p := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString("]")
	return b.String()
}
