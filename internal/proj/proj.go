// Package proj holds the coordinate-reprojection seam. Feeds published in a
// national grid register a conversion here and reference it by name from the
// agency configuration.
package proj

import "sync"

// Func converts a coordinate pair into WGS84 longitude/latitude.
type Func func(lon, lat float64) (float64, float64)

var (
	mu       sync.RWMutex
	registry = map[string]Func{
		// identity: feed is already in the standard geographic reference
		"wgs84": func(lon, lat float64) (float64, float64) { return lon, lat },
	}
)

// Register makes fn available under name, replacing any previous entry.
func Register(name string, fn Func) {
	mu.Lock()
	registry[name] = fn
	mu.Unlock()
}

// Lookup returns the projection registered under name.
func Lookup(name string) (Func, bool) {
	mu.RLock()
	fn, ok := registry[name]
	mu.RUnlock()
	return fn, ok
}
