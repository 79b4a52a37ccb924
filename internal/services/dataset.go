package services

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"autosales-dashboard/internal/models"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyDataset  = errors.New("dataset has no records")
	ErrInvalidValue  = errors.New("invalid value in numeric column")
)

var columnTypes = map[string]series.Type{
	models.ColYear:         series.Int,
	models.ColMonth:        series.String,
	models.ColRecession:    series.Int,
	models.ColSales:        series.Float,
	models.ColVehicleType:  series.String,
	models.ColAdvertising:  series.Float,
	models.ColUnemployment: series.Float,
}

var requiredColumns = []string{
	models.ColYear,
	models.ColMonth,
	models.ColRecession,
	models.ColSales,
	models.ColVehicleType,
	models.ColAdvertising,
	models.ColUnemployment,
}

// Reducer collapses the values of one group into a single number.
type Reducer func(values []float64) float64

func Mean(values []float64) float64 { return stat.Mean(values, nil) }

func Sum(values []float64) float64 { return floats.Sum(values) }

// Dataset is the immutable sales table. It is safe for concurrent reads.
type Dataset struct {
	df dataframe.DataFrame
}

// ParseDataset reads the sales CSV and keeps the columns the reports use.
func ParseDataset(r io.Reader) (*Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.WithTypes(columnTypes),
	)
	if df.Err != nil {
		if df.Nrow() == 0 {
			return nil, fmt.Errorf("%w: %v", ErrEmptyDataset, df.Err)
		}
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}

	names := df.Names()
	for _, col := range requiredColumns {
		if !slices.Contains(names, col) {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	df = df.Select(requiredColumns)
	if df.Err != nil {
		return nil, fmt.Errorf("select columns: %w", df.Err)
	}

	if df.Nrow() == 0 {
		return nil, ErrEmptyDataset
	}

	for _, col := range requiredColumns {
		if columnTypes[col] == series.String {
			continue
		}
		if df.Col(col).HasNaN() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidValue, col)
		}
	}

	return &Dataset{df: df}, nil
}

// NewDataset builds a dataset from in-memory records.
func NewDataset(records []models.SalesRecord) (*Dataset, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(requiredColumns); err != nil {
		return nil, err
	}
	for _, rec := range records {
		recession := "0"
		if rec.Recession {
			recession = "1"
		}
		row := []string{
			strconv.Itoa(rec.Year),
			rec.Month,
			recession,
			strconv.FormatFloat(rec.Sales, 'f', -1, 64),
			rec.VehicleType,
			strconv.FormatFloat(rec.Advertising, 'f', -1, 64),
			strconv.FormatFloat(rec.Unemployment, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return ParseDataset(&buf)
}

func (d *Dataset) Len() int {
	return d.df.Nrow()
}

// Years returns the distinct years present, ascending.
func (d *Dataset) Years() []int {
	values := d.df.Col(models.ColYear).Float()
	years := make([]int, 0, len(values))
	for _, v := range values {
		years = append(years, int(v))
	}
	slices.Sort(years)
	return slices.Compact(years)
}

// VehicleTypes returns the distinct vehicle types, sorted.
func (d *Dataset) VehicleTypes() []string {
	types := slices.Clone(d.df.Col(models.ColVehicleType).Records())
	slices.Sort(types)
	return slices.Compact(types)
}

// Records materialises the table as typed rows.
func (d *Dataset) Records() []models.SalesRecord {
	years := d.df.Col(models.ColYear).Float()
	months := d.df.Col(models.ColMonth).Records()
	recession := d.df.Col(models.ColRecession).Float()
	sales := d.df.Col(models.ColSales).Float()
	vehicles := d.df.Col(models.ColVehicleType).Records()
	advertising := d.df.Col(models.ColAdvertising).Float()
	unemployment := d.df.Col(models.ColUnemployment).Float()

	out := make([]models.SalesRecord, d.df.Nrow())
	for i := range out {
		out[i] = models.SalesRecord{
			Year:         int(years[i]),
			Month:        months[i],
			Recession:    recession[i] == 1,
			Sales:        sales[i],
			VehicleType:  vehicles[i],
			Advertising:  advertising[i],
			Unemployment: unemployment[i],
		}
	}
	return out
}

// View is a filtered slice of the dataset that aggregations run against.
type View struct {
	df dataframe.DataFrame
}

func (d *Dataset) All() View {
	return View{df: d.df}
}

func (d *Dataset) RecessionPeriods() View {
	return d.where(models.ColRecession, 1)
}

func (d *Dataset) InYear(year int) View {
	return d.where(models.ColYear, year)
}

func (d *Dataset) where(col string, value int) View {
	return View{df: d.df.Filter(dataframe.F{
		Colname:    col,
		Comparator: series.Eq,
		Comparando: value,
	})}
}

func (v View) Len() int {
	if v.df.Err != nil {
		return 0
	}
	return v.df.Nrow()
}

type group struct {
	x     float64
	label string
	value float64
}

// groupBy reduces the value column of every group formed by keys. The first
// key is read both as text and as a number; the optional second key is text.
func (v View) groupBy(value string, reduce Reducer, keys ...string) ([]group, []string, error) {
	if v.df.Nrow() == 0 {
		return nil, nil, nil
	}
	if v.df.Err != nil {
		return nil, nil, fmt.Errorf("filter: %w", v.df.Err)
	}

	groups := v.df.GroupBy(keys...)
	if groups.Err != nil {
		return nil, nil, fmt.Errorf("group by %v: %w", keys, groups.Err)
	}

	out := make([]group, 0)
	var second []string
	for _, sub := range groups.GetGroups() {
		first := sub.Col(keys[0]).Elem(0)
		g := group{
			x:     first.Float(),
			label: first.String(),
			value: reduce(sub.Col(value).Float()),
		}
		out = append(out, g)
		if len(keys) > 1 {
			second = append(second, sub.Col(keys[1]).Elem(0).String())
		} else {
			second = append(second, "")
		}
	}
	return out, second, nil
}

// ByNumber aggregates value by a numeric key, ordered by the key.
func (v View) ByNumber(key, value string, reduce Reducer) ([]models.Point, error) {
	groups, _, err := v.groupBy(value, reduce, key)
	if err != nil {
		return nil, err
	}
	points := make([]models.Point, 0, len(groups))
	for _, g := range groups {
		points = append(points, models.Point{
			Label: strconv.FormatFloat(g.x, 'f', -1, 64),
			X:     g.x,
			Y:     g.value,
		})
	}
	sortByX(points)
	return points, nil
}

// ByLabel aggregates value by a text key, ordered by label.
func (v View) ByLabel(key, value string, reduce Reducer) ([]models.Point, error) {
	groups, _, err := v.groupBy(value, reduce, key)
	if err != nil {
		return nil, err
	}
	points := make([]models.Point, 0, len(groups))
	for _, g := range groups {
		points = append(points, models.Point{Label: g.label, Y: g.value})
	}
	slices.SortFunc(points, func(a, b models.Point) int {
		return cmp.Compare(a.Label, b.Label)
	})
	return points, nil
}

// ByMonth aggregates value by month in calendar order. Month labels that are
// not three-letter English abbreviations sort after December.
func (v View) ByMonth(value string, reduce Reducer) ([]models.Point, error) {
	points, err := v.ByLabel(models.ColMonth, value, reduce)
	if err != nil {
		return nil, err
	}
	for i := range points {
		points[i].X = float64(monthIndex(points[i].Label))
	}
	slices.SortStableFunc(points, func(a, b models.Point) int {
		return cmp.Compare(a.X, b.X)
	})
	return points, nil
}

// ByNumberAndLabel aggregates value by a numeric key split into one series
// per label of the second key. Series are sorted by name, points by key.
func (v View) ByNumberAndLabel(key, seriesKey, value string, reduce Reducer) ([]models.Series, error) {
	groups, names, err := v.groupBy(value, reduce, key, seriesKey)
	if err != nil {
		return nil, err
	}

	bySeries := make(map[string][]models.Point)
	for i, g := range groups {
		bySeries[names[i]] = append(bySeries[names[i]], models.Point{
			Label: strconv.FormatFloat(g.x, 'f', -1, 64),
			X:     g.x,
			Y:     g.value,
		})
	}

	out := make([]models.Series, 0, len(bySeries))
	for name, points := range bySeries {
		sortByX(points)
		out = append(out, models.Series{Name: name, Points: points})
	}
	slices.SortFunc(out, func(a, b models.Series) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}

func sortByX(points []models.Point) {
	slices.SortFunc(points, func(a, b models.Point) int {
		return cmp.Compare(a.X, b.X)
	})
}

func monthIndex(label string) int {
	t, err := time.Parse("Jan", label)
	if err != nil {
		return 13
	}
	return int(t.Month())
}
