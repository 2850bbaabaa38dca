package backend

import (
	"sort"
	"sync"
)

// DeviceFactory constructs a fresh, uninitialized Device.
type DeviceFactory func() Device

var (
	registryMu sync.RWMutex
	factories  = make(map[string]DeviceFactory)
)

// backendPriority orders Default's search. GL renders straight into a
// GLFW-hosted context; wgpu needs a surface or readback target wired
// up separately, so it comes second.
var backendPriority = []string{BackendGL, BackendWGPU}

// Register makes a device factory available under name, replacing any
// previous registration. Backend packages call Register from init, so
// a blank import is enough to enable a backend.
func Register(name string, factory DeviceFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend. Mainly for tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether a factory is registered under name.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Get constructs a device by backend name, or nil when the name is
// not registered.
func Get(name string) Device {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := factories[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default constructs a device from the highest-priority registered
// backend, falling back to any registered one when none of the
// prioritized backends are linked into the binary.
func Default() Device {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range backendPriority {
		if factory, ok := factories[name]; ok {
			return factory()
		}
	}
	for _, factory := range factories {
		return factory()
	}
	return nil
}

// MustDefault is Default for program mains that cannot run without a
// GPU; it panics when no backend is linked in.
func MustDefault() Device {
	d := Default()
	if d == nil {
		panic(ErrBackendNotAvailable)
	}
	return d
}

// InitDefault constructs and initializes the default device.
func InitDefault() (Device, error) {
	d := Default()
	if d == nil {
		return nil, ErrBackendNotAvailable
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}
