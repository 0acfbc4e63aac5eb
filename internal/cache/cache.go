package cache

// Cache is a generic read-through cache for derived aggregates.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every entry. The ledger calls this after each mutation
	// so summaries never serve stale totals.
	Purge()
	Size() int
}
