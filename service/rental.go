package service

import (
	"time"

	"github.com/agentuity/aggcache/cache"
	"github.com/agentuity/aggcache/model"
)

const (
	NamespaceRentalStats   = "rental.stats"
	NamespaceRentalChart   = "rental.chart"
	NamespaceRentalDevices = "rental.devices"
	NamespaceRentalToday   = "rental.today"

	rentalStatsTTL   = 5 * time.Minute
	rentalChartTTL   = 10 * time.Minute
	rentalDevicesTTL = 3 * time.Minute
	rentalTodayTTL   = time.Minute

	DefaultPage     = 1
	DefaultPageSize = 20
)

// optional maps the empty string to an absent key parameter.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// StatsQuery selects a rental stats range. Empty bounds are open.
type StatsQuery struct {
	Start string
	End   string
}

// Key returns the rental.stats key of the range.
func (q StatsQuery) Key() string {
	return cache.BuildKey("stats", cache.Arg("start", optional(q.Start)), cache.Arg("end", optional(q.End)))
}

// ChartQuery selects one rendered chart.
type ChartQuery struct {
	ChartType string
	Period    string
	Start     string
	End       string
	Type      string
}

// Key returns the rental.chart key of the query.
func (q ChartQuery) Key() string {
	return cache.BuildKey("chart",
		cache.Arg("chartType", optional(q.ChartType)),
		cache.Arg("period", optional(q.Period)),
		cache.Arg("start", optional(q.Start)),
		cache.Arg("end", optional(q.End)),
		cache.Arg("type", optional(q.Type)),
	)
}

// DeviceQuery selects one page of the device utilization ranking. A zero page or
// page size means the default.
type DeviceQuery struct {
	Page          int
	PageSize      int
	Keyword       string
	DeviceModel   string
	CurrentStatus string
	Region        string
}

// Key returns the rental.devices key of the page, after applying the defaults.
func (q DeviceQuery) Key() string {
	page, size := q.Page, q.PageSize
	if page <= 0 {
		page = DefaultPage
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return cache.BuildKey("device",
		cache.Arg("page", page),
		cache.Arg("pageSize", size),
		cache.Arg("keyword", optional(q.Keyword)),
		cache.Arg("deviceModel", optional(q.DeviceModel)),
		cache.Arg("currentStatus", optional(q.CurrentStatus)),
		cache.Arg("region", optional(q.Region)),
	)
}

// TodayKey keys the live stats of the local calendar day containing now.
func TodayKey(now time.Time) string {
	return cache.BuildKey("today_stats", cache.Arg("date", now.Local().Format(time.DateOnly)))
}

// RentalCache holds the rental module read paths.
type RentalCache struct {
	stats   *cache.Namespace[model.RentalStats]
	chart   *cache.Namespace[model.ChartData]
	devices *cache.Namespace[[]model.DeviceUtilization]
	today   *cache.Namespace[model.TodayStats]
	clock   cache.Clock
}

func newRentalCache(b *builder) *RentalCache {
	return &RentalCache{
		stats:   register[model.RentalStats](b, NamespaceRentalStats, rentalStatsTTL),
		chart:   register[model.ChartData](b, NamespaceRentalChart, rentalChartTTL),
		devices: register[[]model.DeviceUtilization](b, NamespaceRentalDevices, rentalDevicesTTL),
		today:   register[model.TodayStats](b, NamespaceRentalToday, rentalTodayTTL),
		clock:   b.clock,
	}
}

// rentalRecordEdges drop every rental aggregate because any of them may cover the
// mutated record, and the customer stats count rental devices.
func rentalRecordEdges() []cache.Edge {
	return []cache.Edge{
		cache.AllEdge(NamespaceRentalStats),
		cache.AllEdge(NamespaceRentalChart),
		cache.AllEdge(NamespaceRentalDevices),
		cache.AllEdge(NamespaceRentalToday),
		cache.GlobalEdge(NamespaceCustomerStats, CustomerStatsKey),
	}
}

func managedDeviceEdges() []cache.Edge {
	return []cache.Edge{
		cache.AllEdge(NamespaceRentalDevices),
		cache.AllEdge(NamespaceRentalChart),
	}
}

// Stats returns the rental statistics of the range.
func (c *RentalCache) Stats(q StatsQuery) (model.RentalStats, bool) {
	return c.stats.Get(q.Key())
}

// PutStats stores the rental statistics of the range.
func (c *RentalCache) PutStats(q StatsQuery, v model.RentalStats) {
	c.stats.Put(q.Key(), v)
}

// Chart returns the rendered chart of the query.
func (c *RentalCache) Chart(q ChartQuery) (model.ChartData, bool) {
	return c.chart.Get(q.Key())
}

// PutChart stores the rendered chart of the query.
func (c *RentalCache) PutChart(q ChartQuery, v model.ChartData) {
	c.chart.Put(q.Key(), v)
}

// Devices returns one page of the device utilization ranking.
func (c *RentalCache) Devices(q DeviceQuery) ([]model.DeviceUtilization, bool) {
	return c.devices.Get(q.Key())
}

// PutDevices stores one page. A nil page is not cached.
func (c *RentalCache) PutDevices(q DeviceQuery, v []model.DeviceUtilization) {
	if v == nil {
		return
	}
	c.devices.Put(q.Key(), v)
}

// Today returns the live stats of the current local day.
func (c *RentalCache) Today() (model.TodayStats, bool) {
	return c.today.Get(TodayKey(c.clock()))
}

// PutToday stores the live stats of the current local day.
func (c *RentalCache) PutToday(v model.TodayStats) {
	c.today.Put(TodayKey(c.clock()), v)
}

// StatsCache exposes the rental stats namespace.
func (c *RentalCache) StatsCache() *cache.Namespace[model.RentalStats] {
	return c.stats
}

// ChartCache exposes the rental chart namespace.
func (c *RentalCache) ChartCache() *cache.Namespace[model.ChartData] {
	return c.chart
}

// DevicesCache exposes the device utilization namespace.
func (c *RentalCache) DevicesCache() *cache.Namespace[[]model.DeviceUtilization] {
	return c.devices
}

// TodayCache exposes the today stats namespace.
func (c *RentalCache) TodayCache() *cache.Namespace[model.TodayStats] {
	return c.today
}
