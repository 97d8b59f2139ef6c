package metrics

import (
	"github.com/agentuity/aggcache/cache"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "aggcache"

// StatsSource produces the per-namespace health report.
type StatsSource interface {
	Stats() cache.Report
}

var (
	entriesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "entries"),
		"Number of stored cache entries by namespace and state (valid or expired)",
		[]string{"namespace", "state"}, nil,
	)
	hitsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "hits_total"),
		"Total number of cache reads that returned a value",
		[]string{"namespace"}, nil,
	)
	missesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "misses_total"),
		"Total number of cache reads that found nothing or an expired entry",
		[]string{"namespace"}, nil,
	)
	evictionsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "evictions_total"),
		"Total number of live entries evicted to respect the size cap",
		[]string{"namespace"}, nil,
	)
	ttlDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "ttl_seconds"),
		"Configured time to live of the namespace",
		[]string{"namespace"}, nil,
	)
)

// Collector exports a StatsSource on every scrape. It holds no state of its own.
type Collector struct {
	source StatsSource
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector reading source on every scrape.
func NewCollector(source StatsSource) *Collector {
	return &Collector{source: source}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- entriesDesc
	ch <- hitsDesc
	ch <- missesDesc
	ch <- evictionsDesc
	ch <- ttlDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, st := range c.source.Stats() {
		ch <- prometheus.MustNewConstMetric(entriesDesc, prometheus.GaugeValue, float64(st.Valid), st.Name, "valid")
		ch <- prometheus.MustNewConstMetric(entriesDesc, prometheus.GaugeValue, float64(st.Expired), st.Name, "expired")
		ch <- prometheus.MustNewConstMetric(hitsDesc, prometheus.CounterValue, float64(st.Hits), st.Name)
		ch <- prometheus.MustNewConstMetric(missesDesc, prometheus.CounterValue, float64(st.Misses), st.Name)
		ch <- prometheus.MustNewConstMetric(evictionsDesc, prometheus.CounterValue, float64(st.Evictions), st.Name)
		ch <- prometheus.MustNewConstMetric(ttlDesc, prometheus.GaugeValue, st.TTL.Seconds(), st.Name)
	}
}

// Register adds a collector for source to reg and returns it.
func Register(reg prometheus.Registerer, source StatsSource) (*Collector, error) {
	c := NewCollector(source)
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}
