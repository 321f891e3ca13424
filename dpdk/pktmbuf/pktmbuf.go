// Package pktmbuf defines packet buffers and the pools they are borrowed from.
package pktmbuf

import (
	"errors"
	"fmt"
	"math"

	"github.com/usnistgov/pktfwd/core/logging"
	"go.uber.org/zap"
)

var logger = logging.New("pktmbuf")

// Packet size limits.
const (
	// DefaultHeadroom is the headroom reserved before packet data in native buffers.
	DefaultHeadroom = 128
	// MaxDataroom is the maximum dataroom, so that headroom plus dataroom fits in uint16.
	MaxDataroom = math.MaxUint16 - DefaultHeadroom
	// MaxCacheSize is the maximum per-lcore cache size.
	MaxCacheSize = 512
)

// Packet represents a packet buffer borrowed from a Pool.
type Packet interface {
	// Len returns packet length in octets.
	Len() int
	// Bytes returns packet data.
	// The slice is valid until the packet is closed.
	Bytes() []byte
	// Close returns the buffer to its pool.
	Close() error
}

// PoolConfig contains packet buffer pool configuration.
type PoolConfig struct {
	// Capacity is the maximum number of buffers in the pool.
	Capacity int `json:"capacity"`
	// Dataroom is the buffer size excluding headroom.
	Dataroom int `json:"dataroom"`
	// CacheSize is the per-lcore cache size.
	CacheSize int `json:"cacheSize"`
}

// Validate checks the configuration.
func (cfg PoolConfig) Validate() error {
	switch {
	case cfg.Capacity <= 0:
		return errors.New("capacity must be positive")
	case cfg.Dataroom <= 0, cfg.Dataroom > MaxDataroom:
		return fmt.Errorf("dataroom must be between 1 and %d", MaxDataroom)
	case cfg.CacheSize < 0, cfg.CacheSize > MaxCacheSize:
		return fmt.Errorf("cacheSize must be between 0 and %d", MaxCacheSize)
	case cfg.CacheSize > cfg.Capacity:
		return errors.New("cacheSize must not exceed capacity")
	}
	return nil
}

// Pool represents a packet buffer pool.
type Pool interface {
	fmt.Stringer

	// Config returns the configuration the pool was created with.
	Config() PoolConfig

	// CountAvailable returns number of buffers that can be allocated.
	CountAvailable() int

	// CountInUse returns number of buffers borrowed and not yet returned.
	CountInUse() int

	// Alloc allocates a vector of empty packets.
	// Either all count packets are allocated, or an error is returned and nothing is allocated.
	Alloc(count int) (Vector, error)

	// Close releases the pool.
	// All packets should be returned before this is called.
	Close() error
}

// PoolProvider creates packet buffer pools.
type PoolProvider interface {
	NewPool(name string, cfg PoolConfig) (Pool, error)
}

// PoolError indicates a pool could not be created.
type PoolError struct {
	Name   string
	Config PoolConfig
	Err    error
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("pool %s (capacity=%d dataroom=%d cache=%d) %v",
		e.Name, e.Config.Capacity, e.Config.Dataroom, e.Config.CacheSize, e.Err)
}

// Unwrap returns the underlying error.
func (e *PoolError) Unwrap() error {
	return e.Err
}

// NewPool creates a pool from a provider, validating the configuration first.
// It returns *PoolError on failure.
func NewPool(provider PoolProvider, name string, cfg PoolConfig) (Pool, error) {
	if e := cfg.Validate(); e != nil {
		return nil, &PoolError{Name: name, Config: cfg, Err: e}
	}
	mp, e := provider.NewPool(name, cfg)
	if e != nil {
		var poolErr *PoolError
		if errors.As(e, &poolErr) {
			return nil, e
		}
		return nil, &PoolError{Name: name, Config: cfg, Err: e}
	}
	logger.Info("pool created",
		zap.String("name", name),
		zap.Int("capacity", cfg.Capacity),
		zap.Int("dataroom", cfg.Dataroom),
		zap.Int("cache", cfg.CacheSize),
	)
	return mp, nil
}
