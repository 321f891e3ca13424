package pktmbuf

import (
	"errors"
	"sync"
)

// Errors from HeapPool.
var (
	ErrNoBufs      = errors.New("insufficient buffers in pool")
	ErrPoolClosed  = errors.New("pool closed")
	ErrDoubleFree  = errors.New("packet already returned to pool")
	ErrExceedsRoom = errors.New("packet exceeds dataroom")
)

// HeapProvider creates HeapPool instances.
// It implements PoolProvider.
type HeapProvider struct{}

// NewPool implements PoolProvider interface.
func (HeapProvider) NewPool(name string, cfg PoolConfig) (Pool, error) {
	return NewHeapPool(name, cfg), nil
}

// HeapPool is a pool of packet buffers allocated from Go heap.
// Every buffer is allocated upfront, so that capacity is enforced as it would be in hugepage memory.
type HeapPool struct {
	name   string
	cfg    PoolConfig
	mutex  sync.Mutex
	free   []*Mbuf
	closed bool
}

var _ Pool = (*HeapPool)(nil)

// NewHeapPool creates a HeapPool.
func NewHeapPool(name string, cfg PoolConfig) *HeapPool {
	mp := &HeapPool{
		name: name,
		cfg:  cfg,
		free: make([]*Mbuf, cfg.Capacity),
	}
	room := make([]byte, cfg.Capacity*cfg.Dataroom)
	for i := range mp.free {
		mp.free[i] = &Mbuf{
			pool: mp,
			room: room[i*cfg.Dataroom : (i+1)*cfg.Dataroom : (i+1)*cfg.Dataroom],
		}
	}
	return mp
}

func (mp *HeapPool) String() string {
	return mp.name
}

// Config implements Pool interface.
func (mp *HeapPool) Config() PoolConfig {
	return mp.cfg
}

// CountAvailable implements Pool interface.
func (mp *HeapPool) CountAvailable() int {
	mp.mutex.Lock()
	defer mp.mutex.Unlock()
	return len(mp.free)
}

// CountInUse implements Pool interface.
func (mp *HeapPool) CountInUse() int {
	return mp.cfg.Capacity - mp.CountAvailable()
}

// Alloc implements Pool interface.
func (mp *HeapPool) Alloc(count int) (Vector, error) {
	mp.mutex.Lock()
	defer mp.mutex.Unlock()
	if mp.closed {
		return nil, ErrPoolClosed
	}
	if count > len(mp.free) {
		return nil, ErrNoBufs
	}

	split := len(mp.free) - count
	vec := make(Vector, count)
	for i, m := range mp.free[split:] {
		m.length, m.inUse = 0, true
		vec[i] = m
	}
	mp.free = mp.free[:split]
	return vec, nil
}

func (mp *HeapPool) put(m *Mbuf) error {
	mp.mutex.Lock()
	defer mp.mutex.Unlock()
	if !m.inUse {
		return ErrDoubleFree
	}
	m.inUse = false
	mp.free = append(mp.free, m)
	return nil
}

// Close implements Pool interface.
func (mp *HeapPool) Close() error {
	mp.mutex.Lock()
	defer mp.mutex.Unlock()
	mp.closed = true
	return nil
}

// Mbuf is a packet buffer in HeapPool.
type Mbuf struct {
	pool   *HeapPool
	room   []byte
	length int
	inUse  bool
}

var _ Packet = (*Mbuf)(nil)

// Len implements Packet interface.
func (m *Mbuf) Len() int {
	return m.length
}

// Bytes implements Packet interface.
func (m *Mbuf) Bytes() []byte {
	return m.room[:m.length]
}

// Room returns the size of the data room.
func (m *Mbuf) Room() int {
	return len(m.room)
}

// SetBytes replaces packet data.
func (m *Mbuf) SetBytes(b []byte) error {
	if len(b) > len(m.room) {
		return ErrExceedsRoom
	}
	m.length = copy(m.room, b)
	return nil
}

// Close implements Packet interface.
func (m *Mbuf) Close() error {
	return m.pool.put(m)
}
