package export

import (
	"fmt"

	"github.com/piwi3910/PalletPlan/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
)

// DXF layer names. Cases are split by orientation so CAD users can toggle them.
const (
	LayerPallet     = "PALLET"
	LayerHorizontal = "CASES_H"
	LayerVertical   = "CASES_V"
)

// ExportDXF writes the plan as closed outlines in millimetres: the pallet
// on one layer and each orientation of case on its own layer.
func ExportDXF(path string, plan model.Plan) error {
	if plan.Pallet.IsZero() {
		return fmt.Errorf("cannot export pallet %s: %w", plan.Pallet, ErrNoPlans)
	}

	d := dxf.NewDrawing()

	if _, err := d.AddLayer(LayerPallet, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerPallet, err)
	}
	if err := drawRect(d, model.Rect{Size: plan.Pallet}); err != nil {
		return err
	}

	layers := []struct {
		name  string
		color color.ColorNumber
		o     model.Orientation
	}{
		{LayerHorizontal, color.Green, model.Horizontal},
		{LayerVertical, color.Blue, model.Vertical},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.color, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
		for _, p := range plan.Placements {
			if p.Orientation != l.o {
				continue
			}
			if err := drawRect(d, p.Rect(plan.Case)); err != nil {
				return err
			}
		}
	}

	return d.SaveAs(path)
}

// drawRect emits the four edges of r on the current layer.
func drawRect(d *drawing.Drawing, r model.Rect) error {
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	mx, my := r.Max()
	x1, y1 := float64(mx), float64(my)

	edges := [4][4]float64{
		{x0, y0, x1, y0},
		{x1, y0, x1, y1},
		{x1, y1, x0, y1},
		{x0, y1, x0, y0},
	}
	for _, e := range edges {
		if _, err := d.Line(e[0], e[1], 0, e[2], e[3], 0); err != nil {
			return fmt.Errorf("failed to draw line: %w", err)
		}
	}
	return nil
}
