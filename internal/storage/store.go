package storage

// WatchStore manages the set of watched addresses: every address the
// wallet has allocated and is therefore listening for activity on. Keys
// are Base58Check address strings.
type WatchStore interface {
	// Add registers key for watching.
	Add(key string) error
	// Remove unregisters key from watching.
	Remove(key string) error
	// List returns every currently watched key.
	List() ([]string, error)
	// Contains reports whether key is currently watched.
	Contains(key string) (bool, error)
}
