package service

import (
	"time"

	"github.com/agentuity/aggcache/cache"
	"github.com/agentuity/aggcache/model"
)

const (
	NamespaceCustomerStats          = "customer.stats"
	NamespaceCustomerFilterOptions  = "customer.filter_options"
	NamespaceCustomerDetail         = "customer.detail"
	NamespaceCustomerDevices        = "customer.devices"
	NamespaceCustomerOrders         = "customer.orders"
	NamespaceCustomerServiceRecords = "customer.service_records"

	CustomerStatsKey  = "customer_stats"
	FilterOptionsKey  = "filter_options"
	customerStatsTTL  = 5 * time.Minute
	filterOptionsTTL  = 30 * time.Minute
	customerDetailTTL = 10 * time.Minute
	relatedListTTL    = 10 * time.Minute
)

// CustomerDetailKey keys the detail of customer id.
func CustomerDetailKey(id int64) string {
	return cache.BuildKey("customer_detail", cache.Arg("id", id))
}

// CustomerDevicesKey keys the device list of customer id.
func CustomerDevicesKey(id int64) string {
	return cache.BuildKey("customer_devices", cache.Arg("id", id))
}

// CustomerOrdersKey keys the order list of customer id.
func CustomerOrdersKey(id int64) string {
	return cache.BuildKey("customer_orders", cache.Arg("id", id))
}

// CustomerServiceRecordsKey keys the service record list of customer id.
func CustomerServiceRecordsKey(id int64) string {
	return cache.BuildKey("customer_service_records", cache.Arg("id", id))
}

// CustomerCache holds the customer module read paths.
type CustomerCache struct {
	stats          *cache.Namespace[model.CustomerStats]
	filterOptions  *cache.Namespace[model.FilterOptions]
	detail         *cache.Namespace[model.CustomerDetail]
	devices        *cache.Namespace[[]model.CustomerDevice]
	orders         *cache.Namespace[[]model.CustomerOrder]
	serviceRecords *cache.Namespace[[]model.ServiceRecord]
}

func newCustomerCache(b *builder) *CustomerCache {
	return &CustomerCache{
		stats:          register[model.CustomerStats](b, NamespaceCustomerStats, customerStatsTTL),
		filterOptions:  register[model.FilterOptions](b, NamespaceCustomerFilterOptions, filterOptionsTTL),
		detail:         register[model.CustomerDetail](b, NamespaceCustomerDetail, customerDetailTTL),
		devices:        register[[]model.CustomerDevice](b, NamespaceCustomerDevices, relatedListTTL),
		orders:         register[[]model.CustomerOrder](b, NamespaceCustomerOrders, relatedListTTL),
		serviceRecords: register[[]model.ServiceRecord](b, NamespaceCustomerServiceRecords, relatedListTTL),
	}
}

// customerEdges are the entries derived from one customer and its child records.
func customerEdges() []cache.Edge {
	return []cache.Edge{
		cache.EntityEdge(NamespaceCustomerDetail, CustomerDetailKey),
		cache.EntityEdge(NamespaceCustomerDevices, CustomerDevicesKey),
		cache.EntityEdge(NamespaceCustomerOrders, CustomerOrdersKey),
		cache.EntityEdge(NamespaceCustomerServiceRecords, CustomerServiceRecordsKey),
		cache.GlobalEdge(NamespaceCustomerStats, CustomerStatsKey),
	}
}

// Stats returns the global customer statistics.
func (c *CustomerCache) Stats() (model.CustomerStats, bool) {
	return c.stats.Get(CustomerStatsKey)
}

// PutStats stores the global customer statistics.
func (c *CustomerCache) PutStats(v model.CustomerStats) {
	c.stats.Put(CustomerStatsKey, v)
}

// FilterOptions returns the distinct values offered by the customer list filters.
func (c *CustomerCache) FilterOptions() (model.FilterOptions, bool) {
	return c.filterOptions.Get(FilterOptionsKey)
}

// PutFilterOptions stores the customer list filter values.
func (c *CustomerCache) PutFilterOptions(v model.FilterOptions) {
	c.filterOptions.Put(FilterOptionsKey, v)
}

// Detail returns the detail of customer id.
func (c *CustomerCache) Detail(id int64) (model.CustomerDetail, bool) {
	return c.detail.Get(CustomerDetailKey(id))
}

// PutDetail stores the detail of customer id.
func (c *CustomerCache) PutDetail(id int64, v model.CustomerDetail) {
	c.detail.Put(CustomerDetailKey(id), v)
}

// Devices returns the devices of customer id.
func (c *CustomerCache) Devices(id int64) ([]model.CustomerDevice, bool) {
	return c.devices.Get(CustomerDevicesKey(id))
}

// PutDevices stores the devices of customer id.
func (c *CustomerCache) PutDevices(id int64, v []model.CustomerDevice) {
	c.devices.Put(CustomerDevicesKey(id), v)
}

// Orders returns the orders of customer id.
func (c *CustomerCache) Orders(id int64) ([]model.CustomerOrder, bool) {
	return c.orders.Get(CustomerOrdersKey(id))
}

// PutOrders stores the orders of customer id.
func (c *CustomerCache) PutOrders(id int64, v []model.CustomerOrder) {
	c.orders.Put(CustomerOrdersKey(id), v)
}

// ServiceRecords returns the service records of customer id.
func (c *CustomerCache) ServiceRecords(id int64) ([]model.ServiceRecord, bool) {
	return c.serviceRecords.Get(CustomerServiceRecordsKey(id))
}

// PutServiceRecords stores the service records of customer id.
func (c *CustomerCache) PutServiceRecords(id int64, v []model.ServiceRecord) {
	c.serviceRecords.Put(CustomerServiceRecordsKey(id), v)
}

// StatsCache exposes the namespace for get-or-compute through Exec.
func (c *CustomerCache) StatsCache() *cache.Namespace[model.CustomerStats] {
	return c.stats
}

// FilterOptionsCache exposes the filter options namespace.
func (c *CustomerCache) FilterOptionsCache() *cache.Namespace[model.FilterOptions] {
	return c.filterOptions
}

// DetailCache exposes the customer detail namespace.
func (c *CustomerCache) DetailCache() *cache.Namespace[model.CustomerDetail] {
	return c.detail
}

// DevicesCache exposes the customer devices namespace.
func (c *CustomerCache) DevicesCache() *cache.Namespace[[]model.CustomerDevice] {
	return c.devices
}

// OrdersCache exposes the customer orders namespace.
func (c *CustomerCache) OrdersCache() *cache.Namespace[[]model.CustomerOrder] {
	return c.orders
}

// ServiceRecordsCache exposes the customer service records namespace.
func (c *CustomerCache) ServiceRecordsCache() *cache.Namespace[[]model.ServiceRecord] {
	return c.serviceRecords
}
