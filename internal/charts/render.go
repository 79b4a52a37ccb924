// Package charts renders report charts to SVG with go-chart.
package charts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"

	"autosales-dashboard/internal/models"
)

const (
	Width      = 560
	Height     = 380
	maxWorkers = 4
	barWidth   = 48
	barSpacing = 24
)

var ErrNoData = errors.New("chart has no data")

// Figure is a chart together with its rendered SVG. When rendering failed SVG
// is empty and Err holds the reason.
type Figure struct {
	Chart models.Chart
	SVG   string
	Err   error
}

// Legend lists the series names for charts whose SVG carries no legend.
func (f Figure) Legend() []string {
	if f.Chart.Kind != models.ChartGroupedBar {
		return nil
	}
	names := make([]string, 0, len(f.Chart.Series))
	for _, s := range f.Chart.Series {
		names = append(names, s.Name)
	}
	return names
}

// AxisLabels returns the axis names for charts whose SVG does not draw them.
func (f Figure) AxisLabels() (x, y string) {
	if f.Chart.Kind != models.ChartGroupedBar {
		return "", ""
	}
	return f.Chart.XLabel, f.Chart.YLabel
}

// SeriesColor is the fill used for the i-th series of a grouped chart, as a
// CSS colour string.
func SeriesColor(i int) string {
	return chart.GetDefaultColor(i).String()
}

// Render draws one chart as an SVG document.
func Render(c models.Chart) (string, error) {
	if c.Empty() {
		return "", ErrNoData
	}

	var buf bytes.Buffer
	var err error
	switch c.Kind {
	case models.ChartLine:
		err = renderLine(&buf, c)
	case models.ChartBar:
		err = renderBar(&buf, c)
	case models.ChartPie:
		err = renderPie(&buf, c)
	case models.ChartGroupedBar:
		err = renderGroupedBar(&buf, c)
	default:
		err = fmt.Errorf("unsupported chart kind %q", c.Kind)
	}
	if err != nil {
		return "", fmt.Errorf("render %s chart %q: %w", c.Kind, c.Title, err)
	}
	return buf.String(), nil
}

// RenderAll renders every chart concurrently. A chart that fails to render
// yields a Figure with Err set; only context cancellation aborts the batch.
func RenderAll(ctx context.Context, cs []models.Chart) ([]Figure, error) {
	figures := make([]Figure, len(cs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, c := range cs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			svg, err := Render(c)
			figures[i] = Figure{Chart: c, SVG: svg, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return figures, nil
}

func padding() chart.Style {
	return chart.Style{
		Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16},
	}
}

func renderLine(buf *bytes.Buffer, c models.Chart) error {
	points := c.Series[0].Points
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	ticks := make([]chart.Tick, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
		ticks[i] = chart.Tick{Value: p.X, Label: p.Label}
	}

	// go-chart cannot scale a single point; widen the domain around it. The
	// x range follows the ticks when they are set, so widen those as well.
	if len(points) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
		ticks = append(ticks, chart.Tick{Value: xs[0] + 1})
	}

	xAxis := chart.XAxis{Name: c.XLabel}
	if len(ticks) <= 24 {
		xAxis.Ticks = ticks
	} else {
		xAxis.ValueFormatter = func(v interface{}) string {
			if f, ok := v.(float64); ok {
				return strconv.FormatFloat(f, 'f', 0, 64)
			}
			return ""
		}
	}

	graph := chart.Chart{
		Width:      Width,
		Height:     Height,
		Background: padding(),
		XAxis:      xAxis,
		YAxis:      yAxis(c.YLabel, ys),
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    c.Series[0].Name,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.GetDefaultColor(0),
					StrokeWidth: 2,
					DotColor:    chart.GetDefaultColor(0),
					DotWidth:    3,
				},
			},
		},
	}
	return graph.Render(chart.SVG, buf)
}

func renderBar(buf *bytes.Buffer, c models.Chart) error {
	points := c.Series[0].Points
	bars := make([]chart.Value, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		ys[i] = p.Y
		bars[i] = chart.Value{
			Label: p.Label,
			Value: p.Y,
			Style: chart.Style{
				FillColor:   chart.GetDefaultColor(0),
				StrokeColor: chart.GetDefaultColor(0),
			},
		}
	}

	graph := chart.BarChart{
		Width:      max(Width, len(bars)*(barWidth+barSpacing)+120),
		Height:     Height,
		Background: padding(),
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis:      chart.Style{FontSize: 8},
		YAxis:      yAxis(c.YLabel, ys),
		Bars:       bars,
	}
	return graph.Render(chart.SVG, buf)
}

func renderPie(buf *bytes.Buffer, c models.Chart) error {
	points := c.Series[0].Points
	values := make([]chart.Value, 0, len(points))
	for _, p := range points {
		if p.Y <= 0 {
			continue
		}
		values = append(values, chart.Value{Label: p.Label, Value: p.Y})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	graph := chart.PieChart{
		Width:      Width,
		Height:     Height,
		Background: padding(),
		Values:     values,
	}
	return graph.Render(chart.SVG, buf)
}

// renderGroupedBar draws one stacked bar per distinct x value with a segment
// per series.
func renderGroupedBar(buf *bytes.Buffer, c models.Chart) error {
	type cell map[int]float64
	byX := make(map[float64]cell)
	var order []float64
	for si, s := range c.Series {
		for _, p := range s.Points {
			if _, ok := byX[p.X]; !ok {
				byX[p.X] = cell{}
				order = append(order, p.X)
			}
			byX[p.X][si] += p.Y
		}
	}
	slices.Sort(order)

	colors := make([]drawing.Color, len(c.Series))
	for i := range colors {
		colors[i] = chart.GetDefaultColor(i)
	}

	bars := make([]chart.StackedBar, 0, len(order))
	for _, x := range order {
		values := make([]chart.Value, 0, len(c.Series))
		for si := range c.Series {
			v, ok := byX[x][si]
			if !ok {
				continue
			}
			values = append(values, chart.Value{
				Label: c.Series[si].Name,
				Value: v,
				Style: chart.Style{FillColor: colors[si], StrokeColor: colors[si]},
			})
		}
		bars = append(bars, chart.StackedBar{
			Name:   strconv.FormatFloat(x, 'f', -1, 64),
			Width:  barWidth / 2,
			Values: values,
		})
	}

	graph := chart.StackedBarChart{
		Width:      max(Width, len(bars)*(barWidth/2+barSpacing/2)+120),
		Height:     Height,
		Background: padding(),
		BarSpacing: barSpacing / 2,
		XAxis:      chart.Style{FontSize: 7},
		Bars:       bars,
	}
	return graph.Render(chart.SVG, buf)
}

// yAxis anchors the value axis at zero so a single bar or a flat line still
// has a non-empty range.
func yAxis(name string, ys []float64) chart.YAxis {
	axis := chart.YAxis{Name: name}
	top := 0.0
	if len(ys) > 0 {
		top = slices.Max(ys)
	}
	if top <= 0 {
		top = 1
	}
	axis.Range = &chart.ContinuousRange{Min: 0, Max: top * 1.1}
	return axis
}
