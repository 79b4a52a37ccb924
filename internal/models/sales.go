package models

// Column names of the historical automobile sales dataset.
const (
	ColYear         = "Year"
	ColMonth        = "Month"
	ColRecession    = "Recession"
	ColSales        = "Automobile_Sales"
	ColVehicleType  = "Vehicle_Type"
	ColAdvertising  = "Advertising_Expenditure"
	ColUnemployment = "unemployment_rate"
)

// Bounds of the year dropdown.
const (
	FirstYear = 1980
	LastYear  = 2023
)

type SalesRecord struct {
	Year         int
	Month        string
	Recession    bool
	Sales        float64
	VehicleType  string
	Advertising  float64
	Unemployment float64
}

type ReportType string

const (
	ReportNone      ReportType = ""
	ReportYearly    ReportType = "Yearly Statistics"
	ReportRecession ReportType = "Recession Period Statistics"
)

func ReportTypes() []ReportType {
	return []ReportType{ReportYearly, ReportRecession}
}

func (rt ReportType) Valid() bool {
	return rt == ReportYearly || rt == ReportRecession
}

// Selection is the dropdown state. Year is zero when no year is chosen.
type Selection struct {
	ReportType ReportType `json:"reportType"`
	Year       int        `json:"year,omitempty"`
}

// SelectableYears lists the years offered by the year dropdown.
func SelectableYears() []int {
	years := make([]int, 0, LastYear-FirstYear+1)
	for y := FirstYear; y <= LastYear; y++ {
		years = append(years, y)
	}
	return years
}
