// Package cache provides an explicit, per-instance template cache. Entries are
// keyed by template source and invalidated when the loader reports a new
// version (modification time and size), when a Watcher observes a file change,
// or on an explicit Invalidate/Purge call. There is no process-wide cache.
package cache
