package export

import (
	"fmt"

	"github.com/piwi3910/PalletPlan/internal/model"
	"github.com/xuri/excelize/v2"
)

// maxSheetRows is the Excel row limit per worksheet.
const maxSheetRows = 1048576

const summarySheet = "Summary"

// ExportXLSX writes a workbook with a summary sheet and one sheet of
// placements per plan. Placement sheets are cut off at the Excel row limit.
func ExportXLSX(path string, plans []model.Plan) error {
	if len(plans) == 0 {
		return ErrNoPlans
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := []interface{}{"#", "Label", "Pallet Width", "Pallet Depth", "Case Width", "Case Depth",
		"Algorithm", "Cases", "Horizontal", "Vertical", "Area Bound", "Efficiency %"}
	if err := writeRow(f, summarySheet, 1, header); err != nil {
		return err
	}
	if err := f.SetRowStyle(summarySheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, plan := range plans {
		h, v := plan.Placements.CountBy()
		row := []interface{}{
			i + 1, plan.Label,
			plan.Pallet.X, plan.Pallet.Y, plan.Case.X, plan.Case.Y,
			string(plan.Algorithm), plan.Count(), h, v,
			plan.UpperBound(), roundTo(plan.Efficiency(), 2),
		}
		if err := writeRow(f, summarySheet, i+2, row); err != nil {
			return err
		}

		if err := writePlacementSheet(f, planSheetName(i), plan, bold); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(summarySheet, "B", "B", 28); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	return f.SaveAs(path)
}

// planSheetName keeps sheet names unique and within Excel's 31 character limit.
func planSheetName(i int) string {
	return fmt.Sprintf("Plan %d", i+1)
}

func writePlacementSheet(f *excelize.File, sheet string, plan model.Plan, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	if err := writeRow(f, sheet, 1, []interface{}{"#", "X", "Y", "Width", "Depth", "Orientation"}); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, p := range plan.Placements {
		if i+2 > maxSheetRows {
			break
		}
		ext := p.Extent(plan.Case)
		row := []interface{}{i + 1, p.Pos.X, p.Pos.Y, ext.X, ext.Y, p.Orientation.String()}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to create cell reference: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %q: %w", row, sheet, err)
	}
	return nil
}

func roundTo(v float64, places int) float64 {
	p := 1.0
	for i := 0; i < places; i++ {
		p *= 10
	}
	return float64(int64(v*p+0.5)) / p
}
