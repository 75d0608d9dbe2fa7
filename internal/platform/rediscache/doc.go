// Package rediscache provides a cache-aside decorator for store.TaskStore
// backed by Redis. Reads are served from Redis when possible; every write
// goes to the wrapped store first and then invalidates the affected keys.
// Each key has a generation counter that writes increment; a read only
// populates the cache if the counter did not move while it ran, so a slow
// reader cannot resurrect a deleted or outdated task.
// Redis failures are logged and never fail a request.
package rediscache
