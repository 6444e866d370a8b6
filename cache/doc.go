// Package cache decorates a store.Store with an in-memory entry table.
//
// Reads are served from the table while an entry is younger than the
// policy TTL (measured from when the entry was created, not when it was
// last read). Writes whose encoded bytes equal an unexpired cached entry
// are skipped. When the table grows past MaxEntries the least recently
// read or written entries are evicted.
//
//	backend, _ := store.NewLocal("/var/lib/app")
//	c, err := cache.New(backend, cache.WithPolicy(cache.DefaultPolicy().WithTTL(time.Minute)))
//	if err != nil {
//	    return err
//	}
//	var prefs Prefs
//	err = c.GetInto(ctx, "prefs.json", &prefs)
//
// Cached is safe for concurrent use. Its lock covers table bookkeeping
// only; calls into the wrapped store always run unlocked.
package cache
