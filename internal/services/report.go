package services

import (
	"fmt"

	"autosales-dashboard/internal/models"
)

// YearSelectorDisabled reports whether the year dropdown should be disabled
// for the given report type. Only the yearly report uses a year.
func YearSelectorDisabled(reportType models.ReportType) bool {
	return reportType != models.ReportYearly
}

// BuildChartSet computes the four charts for a selection. A missing report
// type, an unknown report type, or a yearly report without a year produce an
// empty chart set rather than an error.
func (a *Analytics) BuildChartSet(sel models.Selection) (models.ChartSet, error) {
	set := models.ChartSet{
		Selection:    sel,
		YearDisabled: YearSelectorDisabled(sel.ReportType),
		Charts:       []models.Chart{},
	}

	switch {
	case sel.ReportType == models.ReportRecession:
		// The year plays no part in the recession report.
		set.Selection.Year = 0
	case sel.ReportType == models.ReportYearly && sel.Year != 0:
	default:
		return set, nil
	}

	ds := a.Dataset()
	if ds == nil {
		return set, ErrDatasetNotLoaded
	}

	var (
		charts []models.Chart
		err    error
	)
	if sel.ReportType == models.ReportRecession {
		charts, err = recessionCharts(ds)
	} else {
		charts, err = yearlyCharts(ds, sel.Year)
	}
	if err != nil {
		return set, fmt.Errorf("build %s charts: %w", sel.ReportType, err)
	}

	set.Charts = charts
	return set, nil
}

func recessionCharts(ds *Dataset) ([]models.Chart, error) {
	recession := ds.RecessionPeriods()

	salesByYear, err := recession.ByNumber(models.ColYear, models.ColSales, Mean)
	if err != nil {
		return nil, err
	}

	salesByType, err := recession.ByLabel(models.ColVehicleType, models.ColSales, Mean)
	if err != nil {
		return nil, err
	}

	adsByType, err := recession.ByLabel(models.ColVehicleType, models.ColAdvertising, Sum)
	if err != nil {
		return nil, err
	}

	unemployment, err := recession.ByNumberAndLabel(models.ColUnemployment, models.ColVehicleType, models.ColSales, Mean)
	if err != nil {
		return nil, err
	}

	return []models.Chart{
		{
			Kind:   models.ChartLine,
			Title:  "Average Automobile Sales over Recession Periods",
			XLabel: models.ColYear,
			YLabel: models.ColSales,
			Series: []models.Series{{Name: models.ColSales, Points: salesByYear}},
		},
		{
			Kind:   models.ChartBar,
			Title:  "Average Vehicles Sold by Type during Recession",
			XLabel: models.ColVehicleType,
			YLabel: models.ColSales,
			Series: []models.Series{{Name: models.ColSales, Points: salesByType}},
		},
		{
			Kind:   models.ChartPie,
			Title:  "Advertisement Share by Vehicle Type during Recession",
			XLabel: models.ColVehicleType,
			YLabel: models.ColAdvertising,
			Series: []models.Series{{Name: models.ColAdvertising, Points: adsByType}},
		},
		{
			Kind:   models.ChartGroupedBar,
			Title:  "Effect of Unemployment Rate on Vehicle Type and Sales",
			XLabel: "Unemployment Rate",
			YLabel: "Average Automobile Sales",
			Series: unemployment,
		},
	}, nil
}

func yearlyCharts(ds *Dataset, year int) ([]models.Chart, error) {
	salesByYear, err := ds.All().ByNumber(models.ColYear, models.ColSales, Mean)
	if err != nil {
		return nil, err
	}

	yearly := ds.InYear(year)

	salesByMonth, err := yearly.ByMonth(models.ColSales, Sum)
	if err != nil {
		return nil, err
	}

	salesByType, err := yearly.ByLabel(models.ColVehicleType, models.ColSales, Mean)
	if err != nil {
		return nil, err
	}

	adsByType, err := yearly.ByLabel(models.ColVehicleType, models.ColAdvertising, Sum)
	if err != nil {
		return nil, err
	}

	return []models.Chart{
		{
			Kind:   models.ChartLine,
			Title:  fmt.Sprintf("Average Automobile Sales over Years (%d report)", year),
			XLabel: models.ColYear,
			YLabel: models.ColSales,
			Series: []models.Series{{Name: models.ColSales, Points: salesByYear}},
		},
		{
			Kind:   models.ChartLine,
			Title:  fmt.Sprintf("Total Monthly Automobile Sales in %d", year),
			XLabel: models.ColMonth,
			YLabel: models.ColSales,
			Series: []models.Series{{Name: models.ColSales, Points: salesByMonth}},
		},
		{
			Kind:   models.ChartBar,
			Title:  fmt.Sprintf("Average Vehicles Sold by Vehicle Type in the year %d", year),
			XLabel: models.ColVehicleType,
			YLabel: models.ColSales,
			Series: []models.Series{{Name: models.ColSales, Points: salesByType}},
		},
		{
			Kind:   models.ChartPie,
			Title:  fmt.Sprintf("Total Advertisement Expenditure for Each Vehicle in %d", year),
			XLabel: models.ColVehicleType,
			YLabel: models.ColAdvertising,
			Series: []models.Series{{Name: models.ColAdvertising, Points: adsByType}},
		},
	}, nil
}
