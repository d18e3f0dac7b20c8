// Package export provides functionality for exporting pallet plans
// to various file formats.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/PalletPlan/internal/model"
)

// ErrNoPlans is returned when an export is asked to write nothing.
var ErrNoPlans = errors.New("no plans to export")

// caseColor represents an RGB color for a placed case.
type caseColor struct {
	R, G, B int
}

// orientationColors gives each orientation its own fill so turned cases stand out.
var orientationColors = map[model.Orientation]caseColor{
	model.Horizontal: {R: 76, G: 175, B: 80},  // green
	model.Vertical:   {R: 33, G: 150, B: 243}, // blue
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF generates a PDF document with one layout page per plan,
// followed by a summary page with overall statistics.
func ExportPDF(path string, plans []model.Plan) error {
	if len(plans) == 0 {
		return ErrNoPlans
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, plan := range plans {
		pdf.AddPage()
		renderPlanPage(pdf, plan, i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, plans)

	return pdf.OutputFileAndClose(path)
}

// renderPlanPage draws a single plan on the current PDF page.
func renderPlanPage(pdf *fpdf.Fpdf, plan model.Plan, planNum int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Plan %d: %s (pallet %d x %d mm, case %d x %d mm)", planNum, plan.Label,
		plan.Pallet.X, plan.Pallet.Y, plan.Case.X, plan.Case.Y)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	h, v := plan.Placements.CountBy()
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Algorithm: %s | Cases: %d (%d horizontal, %d vertical) | Area bound: %d | Efficiency: %.1f%%",
		plan.Algorithm, plan.Count(), h, v, plan.UpperBound(), plan.Efficiency())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	if plan.Pallet.IsZero() {
		return
	}

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scale := math.Min(drawWidth/float64(plan.Pallet.X), drawHeight/float64(plan.Pallet.Y))
	canvasW := float64(plan.Pallet.X) * scale
	canvasH := float64(plan.Pallet.Y) * scale

	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Pallet deck (wood color)
	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for i, p := range plan.Placements {
		col := orientationColors[p.Orientation]
		ext := p.Extent(plan.Case)
		pw := float64(ext.X) * scale
		ph := float64(ext.Y) * scale
		px := offsetX + float64(p.Pos.X)*scale
		// Pallet y grows upward, page y grows downward.
		py := offsetY + canvasH - float64(p.Pos.Y)*scale - ph

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 8 && ph > 6 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			num := fmt.Sprintf("%d", i+1)
			numW := pdf.GetStringWidth(num)
			if numW < pw-2 {
				pdf.SetXY(px+(pw-numW)/2, py+ph/2-2)
				pdf.CellFormat(numW, 4, num, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, plan.Pallet, offsetX, offsetY, canvasW, canvasH)
	drawLegend(pdf, plan, offsetY+canvasH+6)
}

// drawDimensionAnnotations adds width and depth labels outside the pallet rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, pallet model.Vec2, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%d mm", pallet.X)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	depthLabel := fmt.Sprintf("%d mm", pallet.Y)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	dLabelW := pdf.GetStringWidth(depthLabel)
	pdf.SetXY(offsetX-3-dLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(dLabelW, 4, depthLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawLegend explains the orientation colors below the layout.
func drawLegend(pdf *fpdf.Fpdf, plan model.Plan, startY float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)

	xPos := marginLeft
	for _, o := range []model.Orientation{model.Horizontal, model.Vertical} {
		col := orientationColors[o]
		ext := o.Extent(plan.Case)
		label := fmt.Sprintf("%s (%d x %d)", o, ext.X, ext.Y)

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		w := pdf.GetStringWidth(label) + 2
		pdf.CellFormat(w, 4, label, "", 0, "L", false, 0, "")
		xPos += w + 10
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, plans []model.Plan) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Pallet Plan Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Plans", fmt.Sprintf("%d", len(plans))},
		{"Total Cases Placed", fmt.Sprintf("%d", countCases(plans))},
		{"Average Efficiency", fmt.Sprintf("%.1f%%", averageEfficiency(plans))},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Plan Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{15, 60, 40, 35, 25, 25, 25, 30}
	headers := []string{"#", "Label", "Pallet", "Case", "Algorithm", "Cases", "Bound", "Efficiency"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, plan := range plans {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}

		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			plan.Label,
			fmt.Sprintf("%d x %d", plan.Pallet.X, plan.Pallet.Y),
			fmt.Sprintf("%d x %d", plan.Case.X, plan.Case.Y),
			string(plan.Algorithm),
			fmt.Sprintf("%d", plan.Count()),
			fmt.Sprintf("%d", plan.UpperBound()),
			fmt.Sprintf("%.1f%%", plan.Efficiency()),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by PalletPlan - Pallet Loading Planner", "", 0, "C", false, 0, "")
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}

// countCases returns the total number of placed cases across all plans.
func countCases(plans []model.Plan) int {
	total := 0
	for _, p := range plans {
		total += p.Count()
	}
	return total
}

func averageEfficiency(plans []model.Plan) float64 {
	if len(plans) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range plans {
		sum += p.Efficiency()
	}
	return sum / float64(len(plans))
}
