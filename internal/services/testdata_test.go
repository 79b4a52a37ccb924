package services

import (
	"github.com/brianvoe/gofakeit/v7"

	"autosales-dashboard/internal/models"
)

func sampleRecords() []models.SalesRecord {
	return []models.SalesRecord{
		{Year: 1980, Month: "Jan", Recession: true, Sales: 100, VehicleType: "Executivecar", Advertising: 10, Unemployment: 5},
		{Year: 1980, Month: "Feb", Recession: true, Sales: 200, VehicleType: "Sports", Advertising: 20, Unemployment: 5},
		{Year: 1981, Month: "Jan", Recession: false, Sales: 300, VehicleType: "Executivecar", Advertising: 30, Unemployment: 4},
		{Year: 1981, Month: "Mar", Recession: false, Sales: 500, VehicleType: "Sports", Advertising: 50, Unemployment: 4},
		{Year: 1982, Month: "Jan", Recession: true, Sales: 50, VehicleType: "Executivecar", Advertising: 5, Unemployment: 6.5},
		{Year: 1982, Month: "Feb", Recession: true, Sales: 150, VehicleType: "Executivecar", Advertising: 15, Unemployment: 6.5},
	}
}

const sampleCSV = `Date,Year,Month,Recession,Consumer_Confidence,Automobile_Sales,Advertising_Expenditure,unemployment_rate,Vehicle_Type,City
1/31/1980,1980,Jan,1,108.24,456.0,1558,5.4,Supperminicar,Georgia
2/29/1980,1980,Feb,1,98.75,555.9,3048,4.8,Supperminicar,New York
3/31/1981,1981,Mar,0,107.48,620.0,3137,3.4,Mediumfamilycar,New York
4/30/1981,1981,Apr,0,115.01,771.8,1653,4.2,Smallfamiliycar,Illinois
5/31/1982,1982,May,1,98.72,211.0,2015,6.1,Executivecar,California
`

var (
	fakeVehicleTypes = []string{"Supperminicar", "Smallfamiliycar", "Mediumfamilycar", "Executivecar", "Sports"}
	fakeMonths       = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

// fakeRecords generates a dataset that always contains recession rows.
func fakeRecords(seed uint64, n int) []models.SalesRecord {
	f := gofakeit.New(seed)
	records := make([]models.SalesRecord, 0, n+1)
	for range n {
		records = append(records, models.SalesRecord{
			Year:         f.IntRange(models.FirstYear, models.LastYear),
			Month:        f.RandomString(fakeMonths),
			Recession:    f.Bool(),
			Sales:        f.Float64Range(100, 5000),
			VehicleType:  f.RandomString(fakeVehicleTypes),
			Advertising:  f.Float64Range(1000, 5000),
			Unemployment: float64(f.IntRange(20, 120)) / 10,
		})
	}
	records = append(records, models.SalesRecord{
		Year: 2008, Month: "Oct", Recession: true, Sales: 900, VehicleType: "Sports", Advertising: 1200, Unemployment: 6.1,
	})
	return records
}
