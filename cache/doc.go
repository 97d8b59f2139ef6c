// Package cache provides a process local, multi namespace TTL cache for expensive
// aggregate reads, together with the cascade table that keeps dependent namespaces
// consistent when an entity changes.
//
// # Namespaces
//
// A [Namespace] holds values of one type under one fixed TTL:
//
//	stats := cache.NewNamespace[model.CustomerStats]("customer.stats", 5*time.Minute)
//	stats.Put("customer_stats", s)
//	s, ok := stats.Get("customer_stats")
//
// Put always replaces the previous entry and restarts its TTL. Get removes an entry
// it finds expired (lazy eviction). Entries that are never read again are removed
// by [Namespace.SweepExpired], usually through a [Sweeper]. All operations are safe
// for concurrent use; keys are spread over independently locked shards.
//
// [Namespace.Exec] is a cache-aside helper:
//
//	found, detail, err := details.Exec(ctx, key, func(ctx context.Context) (model.CustomerDetail, bool, error) {
//	    d, err := repo.Detail(ctx, id)
//	    if errors.Is(err, sql.ErrNoRows) {
//	        return d, false, nil   // not found, won't be cached
//	    }
//	    return d, true, err        // cached unless err != nil
//	})
//
// A failed invocation is never cached and its error is returned unchanged. Failures
// inside the cache itself (for example a value that cannot be copied when the
// namespace was created [WithCopyValues]) are marked [ErrCacheUnavailable], logged
// and treated as a miss.
//
// # Keys
//
// [BuildKey] turns a prefix and an ordered list of parameters into a key. Absent
// parameters render as [NullToken]:
//
//	cache.BuildKey("stats", cache.Arg("start", start), cache.Arg("end", nil))
//	// stats:start=2025-01-01:end=null
//
// # Cascades
//
// A [Registry] owns every namespace of an application and a table of [Edge]s from
// entity types to the namespace entries that depend on them.
// [Registry.InvalidateEntity] walks that table. A missing edge cannot be detected at
// runtime and shows up as stale reads until the TTL runs out, so the table should be
// covered by tests that enumerate every edge.
//
// # Races
//
// Get-or-compute is not atomic: two concurrent misses may both compute and both
// store, and the last write wins ([WithSingleFlight] coalesces them). A reader that
// started before an invalidation can store pre-mutation data after it; that value
// lives at most one TTL.
package cache
