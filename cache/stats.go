package cache

import "time"

// NamespaceStats is the health report of a single namespace. Expired counts entries
// that are past their TTL but have not been read or swept yet.
type NamespaceStats struct {
	Name      string        `json:"name" yaml:"name"`
	TTL       time.Duration `json:"ttl" yaml:"ttl"`
	Total     int           `json:"total" yaml:"total"`
	Valid     int           `json:"valid" yaml:"valid"`
	Expired   int           `json:"expired" yaml:"expired"`
	Hits      int64         `json:"hits" yaml:"hits"`
	Misses    int64         `json:"misses" yaml:"misses"`
	Evictions int64         `json:"evictions" yaml:"evictions"`
}

// HitRatio returns hits / (hits + misses), or 0 when nothing was read.
func (s NamespaceStats) HitRatio() float64 {
	reads := s.Hits + s.Misses
	if reads == 0 {
		return 0
	}
	return float64(s.Hits) / float64(reads)
}

// Report is the per-namespace health report, in registration order.
type Report []NamespaceStats

// Totals sums every namespace into one row named "total".
func (r Report) Totals() NamespaceStats {
	t := NamespaceStats{Name: "total"}
	for _, s := range r {
		t.Total += s.Total
		t.Valid += s.Valid
		t.Expired += s.Expired
		t.Hits += s.Hits
		t.Misses += s.Misses
		t.Evictions += s.Evictions
	}
	return t
}

// Lookup returns the stats of the named namespace.
func (r Report) Lookup(name string) (NamespaceStats, bool) {
	for _, s := range r {
		if s.Name == name {
			return s, true
		}
	}
	return NamespaceStats{}, false
}
