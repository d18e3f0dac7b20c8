package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/piwi3910/PalletPlan/internal/model"
)

// maxScatterPoints bounds the layout chart; larger plans are sampled.
const maxScatterPoints = 20000

// RenderComparisonChart writes an HTML page with a bar chart of placed
// cases against the area bound for each plan.
func RenderComparisonChart(w io.Writer, plans []model.Plan) error {
	if len(plans) == 0 {
		return ErrNoPlans
	}

	x := make([]string, 0, len(plans))
	placed := make([]opts.BarData, 0, len(plans))
	bound := make([]opts.BarData, 0, len(plans))
	for i, p := range plans {
		x = append(x, fmt.Sprintf("%d. %s (%s)", i+1, p.Label, p.Algorithm))
		placed = append(placed, opts.BarData{Value: p.Count()})
		bound = append(bound, opts.BarData{Value: p.UpperBound()})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Pallet plans", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Cases per pallet", Subtitle: fmt.Sprintf("plans=%d", len(plans))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("Placed", placed, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"})).
		AddSeries("Area bound", bound)

	page := components.NewPage()
	page.AddCharts(bar)
	return page.Render(w)
}

// RenderLayoutChart writes an HTML scatter plot of case centres, one series
// per orientation.
func RenderLayoutChart(w io.Writer, plan model.Plan) error {
	stride := 1
	if n := plan.Count(); n > maxScatterPoints {
		stride = (n + maxScatterPoints - 1) / maxScatterPoints
	}

	series := map[model.Orientation][]opts.ScatterData{}
	for i := 0; i < plan.Count(); i += stride {
		p := plan.Placements[i]
		ext := p.Extent(plan.Case)
		cx := float64(p.Pos.X) + float64(ext.X)/2
		cy := float64(p.Pos.Y) + float64(ext.Y)/2
		series[p.Orientation] = append(series[p.Orientation], opts.ScatterData{Value: []interface{}{cx, cy, i + 1}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: plan.Label, Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: plan.Label, Subtitle: fmt.Sprintf("pallet=%s case=%s cases=%d stride=%d", plan.Pallet, plan.Case, plan.Count(), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: plan.Pallet.X, Name: "X (mm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: plan.Pallet.Y, Name: "Y (mm)", NameLocation: "middle", NameGap: 30}),
	)
	for _, o := range []model.Orientation{model.Horizontal, model.Vertical} {
		scatter.AddSeries(o.String(), series[o], charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}

	return scatter.Render(w)
}
