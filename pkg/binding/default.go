// ABOUTME: Process-wide default registry
// ABOUTME: Package-level init/load/play/stop/release on a shared registry
package binding

import "sync"

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// SetDefault replaces the registry used by the package-level functions.
// Handles from the previous registry are invalid on the new one.
func SetDefault(r *Registry) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = r
}

// Default returns the process-wide registry, creating a headless one on first use
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRegistry == nil {
		defaultRegistry = NewRegistry(Config{})
	}
	return defaultRegistry
}

// Init creates a controller on the default registry
func Init() (Handle, bool) { return Default().Init() }

// Load loads clip data on the default registry
func Load(h Handle, data string) bool { return Default().Load(h, data) }

// Play starts playback on the default registry
func Play(h Handle) bool { return Default().Play(h) }

// Stop halts playback on the default registry
func Stop(h Handle) bool { return Default().Stop(h) }

// Release releases h on the default registry
func Release(h Handle) bool { return Default().Release(h) }
