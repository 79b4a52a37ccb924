package models

type ChartKind string

const (
	ChartLine       ChartKind = "line"
	ChartBar        ChartKind = "bar"
	ChartPie        ChartKind = "pie"
	ChartGroupedBar ChartKind = "grouped-bar"
)

// Point is one aggregated value. Label carries the categorical key; X the
// numeric key for line and grouped charts.
type Point struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

type Chart struct {
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label"`
	YLabel string    `json:"y_label"`
	Series []Series  `json:"series"`
}

// Empty reports whether the chart has no data points at all.
func (c Chart) Empty() bool {
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}

type ChartSet struct {
	Selection    Selection `json:"selection"`
	YearDisabled bool      `json:"year_disabled"`
	Charts       []Chart   `json:"charts"`
}

// Rows splits the charts into display rows of two.
func (cs ChartSet) Rows() [][]Chart {
	var rows [][]Chart
	for i := 0; i < len(cs.Charts); i += 2 {
		end := min(i+2, len(cs.Charts))
		rows = append(rows, cs.Charts[i:end])
	}
	return rows
}
