package model

// RentalStats aggregates rental activity over a date range.
type RentalStats struct {
	TotalRevenue          float64 `json:"totalRentalRevenue" msgpack:"total_revenue"`
	TotalOrders           int     `json:"totalRentalOrders" msgpack:"total_orders"`
	TotalDevices          int     `json:"totalRentalDevices" msgpack:"total_devices"`
	ActiveDevices         int     `json:"activeRentalDevices" msgpack:"active_devices"`
	DeviceUtilizationRate float64 `json:"deviceUtilizationRate" msgpack:"utilization_rate"`
	AverageRentalPeriod   float64 `json:"averageRentalPeriod" msgpack:"average_period"`
	RevenueGrowthRate     float64 `json:"revenueGrowthRate" msgpack:"revenue_growth"`
	DeviceGrowthRate      float64 `json:"deviceGrowthRate" msgpack:"device_growth"`
}

// Series is one named line or bar group of a chart.
type Series struct {
	Name string    `json:"name" msgpack:"name"`
	Data []float64 `json:"data" msgpack:"data"`
}

// ChartData is a rendered chart: one category axis and any number of series.
type ChartData struct {
	ChartType  string   `json:"chartType" msgpack:"chart_type"`
	Categories []string `json:"categories" msgpack:"categories"`
	Series     []Series `json:"series" msgpack:"series"`
}

// DeviceUtilization is one row of the device utilization ranking.
type DeviceUtilization struct {
	DeviceID        string  `json:"deviceId" msgpack:"device_id"`
	DeviceModel     string  `json:"deviceModel" msgpack:"device_model"`
	UtilizationRate float64 `json:"utilizationRate" msgpack:"utilization_rate"`
	TotalRentDays   int     `json:"totalRentDays" msgpack:"total_rent_days"`
	TotalDays       int     `json:"totalDays" msgpack:"total_days"`
	CurrentStatus   string  `json:"currentStatus" msgpack:"current_status"`
	Region          string  `json:"region,omitempty" msgpack:"region"`
	LastRentalDate  string  `json:"lastRentalDate,omitempty" msgpack:"last_rental_date"`
}

// TodayStats is the live summary for the current day.
type TodayStats struct {
	Date           string  `json:"date" msgpack:"date"`
	Revenue        float64 `json:"revenue" msgpack:"revenue"`
	Orders         int     `json:"orders" msgpack:"orders"`
	ActiveDevices  int     `json:"activeDevices" msgpack:"active_devices"`
	AvgUtilization float64 `json:"avgUtilization" msgpack:"avg_utilization"`
}
