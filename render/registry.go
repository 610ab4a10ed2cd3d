package render

import (
	"fmt"
	"sort"
	"sync"
)

// DeviceFactory opens a device whose default framebuffer is width x height.
type DeviceFactory func(width, height int) (Device, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]DeviceFactory)
)

// Register makes a device implementation available by name. It is called
// from init() in device packages, following the database/sql driver
// pattern:
//
//	func init() {
//	    render.Register("wgpu", Open)
//	}
//
// Register panics if factory is nil or name is already registered.
func Register(name string, factory DeviceFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("render: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("render: Register called twice for " + name)
	}
	factories[name] = factory
}

// Unregister removes a device implementation. It is meant for tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Open creates a device by registered name.
func Open(name string, width, height int) (Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("render: unknown device %q (forgotten import?)", name)
	}
	dev, err := factory(width, height)
	if err != nil {
		return nil, fmt.Errorf("open %s device: %w", name, err)
	}
	return dev, nil
}

// Devices returns the registered device names, sorted.
func Devices() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
