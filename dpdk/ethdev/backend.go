package ethdev

import (
	"fmt"
	"sort"
	"sync"

	"github.com/usnistgov/pktfwd/dpdk/eal"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

// Backend is a packet I/O framework: runtime environment, buffer pools, and ports.
type Backend interface {
	eal.Runtime
	pktmbuf.PoolProvider
	Driver
}

// BackendOptions contains parameters for creating a Backend.
// Each backend reads the fields relevant to it.
type BackendOptions struct {
	// NPorts is number of ports in software backends.
	NPorts int
	// Netifs is a list of kernel network interfaces.
	Netifs []string
}

// BackendFactory creates a Backend.
type BackendFactory func(opts BackendOptions) (Backend, error)

var (
	backendsLock sync.Mutex
	backends     = map[string]BackendFactory{}
)

// RegisterBackend registers a Backend factory.
// This should be called in init() of the backend package.
func RegisterBackend(name string, factory BackendFactory) {
	backendsLock.Lock()
	defer backendsLock.Unlock()
	if _, ok := backends[name]; ok {
		logger.Panic("duplicate backend " + name)
	}
	backends[name] = factory
}

// ListBackends returns names of registered backends.
func ListBackends() (names []string) {
	backendsLock.Lock()
	defer backendsLock.Unlock()
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBackend creates a Backend by name.
func NewBackend(name string, opts BackendOptions) (Backend, error) {
	backendsLock.Lock()
	factory := backends[name]
	backendsLock.Unlock()
	if factory == nil {
		return nil, fmt.Errorf("unknown backend %q, available: %v", name, ListBackends())
	}
	return factory(opts)
}
