// Package session owns the per-browser-session credential store: the
// eight auth keys of the dual-token model, the typed accessors around
// them, and the validity predicates consulted by the route guard.
package session

import "context"

// Store is a string key/value bag scoped to one browser session.
// Values never outlive the backend: the in-memory store dies with the
// process and the Redis store expires entries, so credentials do not
// survive longer than the console deployment intends. The store does
// no encryption and no integrity checking; a corrupt value surfaces
// lazily as a parse failure downstream.
type Store interface {
	// Set writes key=value for the session. Values are overwritten
	// wholesale; there is no read-modify-write.
	Set(ctx context.Context, sid, key, value string) error
	// Get returns the stored value, or "" when the key is absent.
	Get(ctx context.Context, sid, key string) (string, error)
	// Remove deletes a single key.
	Remove(ctx context.Context, sid, key string) error
	// Clear drops the whole session bag.
	Clear(ctx context.Context, sid string) error
}
