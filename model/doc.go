// Package model holds the aggregate shapes computed from the system of record and
// kept in the caches. Values are plain data; the msgpack tags are used when a
// namespace copies values on the way in and out.
package model
