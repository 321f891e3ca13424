// Package ethringdev provides software Ethernet ports backed by in-memory FIFOs.
//
// Each port has an inbound FIFO feeding its RX queue and an outbound FIFO drained from its TX queue.
// Tests and dry runs inject frames with Inject and collect transmitted frames with Drain.
package ethringdev

import (
	"fmt"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/usnistgov/pktfwd/core/logging"
	"github.com/usnistgov/pktfwd/dpdk/eal"
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

var logger = logging.New("ethringdev")

// DefaultNPorts is the default number of ports.
const DefaultNPorts = 2

func init() {
	ethdev.RegisterBackend("ring", func(opts ethdev.BackendOptions) (ethdev.Backend, error) {
		return New(opts.NPorts), nil
	})
}

type portState int

const (
	portIdle portState = iota
	portConfigured
	portStarted
	portStopped
	portClosed
)

type port struct {
	id       uint16
	state    portState
	rxPool   pktmbuf.Pool
	rxCap    int
	txCap    int
	inbound  [][]byte
	outbound [][]byte
	peer     *port
	stats    ethdev.Stats
}

func (p *port) deliver(frame []byte) bool {
	if p.rxCap == 0 || len(p.inbound) >= p.rxCap {
		p.stats.RxMissed++
		return false
	}
	p.inbound = append(p.inbound, frame)
	return true
}

// Backend is a software packet I/O framework.
// It implements ethdev.Backend.
type Backend struct {
	mutex sync.Mutex
	args  []string
	ports []*port
}

var (
	_ ethdev.Backend     = (*Backend)(nil)
	_ ethdev.StatsReader = (*Backend)(nil)
	_ ethdev.PortNamer   = (*Backend)(nil)

	_ ethdev.BurstModeReader = (*Backend)(nil)
)

// New creates a Backend with nPorts ports.
func New(nPorts int) *Backend {
	if nPorts <= 0 {
		nPorts = DefaultNPorts
	}
	b := &Backend{}
	for i := 0; i < nPorts; i++ {
		b.ports = append(b.ports, &port{id: uint16(i)})
	}
	return b
}

// InitRuntime implements eal.Runtime interface.
func (b *Backend) InitRuntime(args []string) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.args != nil {
		return eal.Errno(syscall.EALREADY)
	}
	b.args = append([]string{}, args...)
	logger.Info("software runtime initialized", zap.Int("ports", len(b.ports)))
	return nil
}

// Args returns arguments passed to InitRuntime.
func (b *Backend) Args() []string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.args
}

// NewPool implements pktmbuf.PoolProvider interface.
func (b *Backend) NewPool(name string, cfg pktmbuf.PoolConfig) (pktmbuf.Pool, error) {
	return pktmbuf.NewHeapPool(name, cfg), nil
}

// CountAvail implements ethdev.Driver interface.
func (b *Backend) CountAvail() int {
	return len(b.ports)
}

// PortName implements ethdev.PortNamer interface.
func (b *Backend) PortName(port uint16) string {
	return fmt.Sprintf("net_ring%d", port)
}

func (b *Backend) getPort(id uint16, allowed ...portState) (*port, error) {
	if int(id) >= len(b.ports) {
		return nil, eal.Errno(syscall.ENODEV)
	}
	p := b.ports[id]
	for _, st := range allowed {
		if p.state == st {
			return p, nil
		}
	}
	if p.state == portStarted {
		return nil, eal.Errno(syscall.EBUSY)
	}
	return nil, eal.Errno(syscall.EINVAL)
}

// Configure implements ethdev.Driver interface.
// Only one RX queue and one TX queue are supported.
func (b *Backend) Configure(id uint16, nRxQueues, nTxQueues int) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	p, e := b.getPort(id, portIdle, portConfigured, portStopped)
	if e != nil {
		return e
	}
	if nRxQueues != 1 || nTxQueues != 1 {
		return eal.Errno(syscall.EINVAL)
	}
	p.state = portConfigured
	return nil
}

// SetupRxQueue implements ethdev.Driver interface.
func (b *Backend) SetupRxQueue(id, queue uint16, cfg ethdev.RxQueueConfig) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	p, e := b.getPort(id, portConfigured)
	if e != nil {
		return e
	}
	if queue != 0 || cfg.Capacity <= 0 || cfg.RxPool == nil {
		return eal.Errno(syscall.EINVAL)
	}
	p.rxPool, p.rxCap = cfg.RxPool, cfg.Capacity
	return nil
}

// SetupTxQueue implements ethdev.Driver interface.
func (b *Backend) SetupTxQueue(id, queue uint16, cfg ethdev.TxQueueConfig) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	p, e := b.getPort(id, portConfigured)
	if e != nil {
		return e
	}
	if queue != 0 || cfg.Capacity <= 0 {
		return eal.Errno(syscall.EINVAL)
	}
	p.txCap = cfg.Capacity
	return nil
}

// Start implements ethdev.Driver interface.
func (b *Backend) Start(id uint16) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	p, e := b.getPort(id, portConfigured)
	if e != nil {
		return e
	}
	if p.rxPool == nil || p.txCap == 0 {
		return eal.Errno(syscall.EINVAL)
	}
	p.state = portStarted
	return nil
}

// Stop implements ethdev.Driver interface.
func (b *Backend) Stop(id uint16) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	p, e := b.getPort(id, portStarted)
	if e != nil {
		return e
	}
	p.state = portStopped
	return nil
}

// Close implements ethdev.Driver interface.
// Queued frames are discarded.
func (b *Backend) Close(id uint16) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	p, e := b.getPort(id, portConfigured, portStopped)
	if e != nil {
		return e
	}
	p.state = portClosed
	p.inbound, p.outbound, p.rxPool = nil, nil, nil
	return nil
}

// RxBurst implements ethdev.Driver interface.
// Each frame is copied into a buffer allocated from the RX queue's pool.
// If the pool is exhausted, reception stops and the frame remains queued.
func (b *Backend) RxBurst(id, queue uint16, vec pktmbuf.Vector) (n int, e error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	p, e := b.getPort(id, portStarted)
	if e != nil {
		return 0, eal.Errno(syscall.ENETDOWN)
	}
	if queue != 0 {
		return 0, eal.Errno(syscall.EINVAL)
	}

	for n < len(vec) && len(p.inbound) > 0 {
		frame := p.inbound[0]
		alloc, e := p.rxPool.Alloc(1)
		if e != nil {
			p.stats.RxNoMbuf++
			break
		}
		m, ok := alloc[0].(*pktmbuf.Mbuf)
		if !ok {
			alloc.Close()
			return n, eal.Errno(syscall.EINVAL)
		}
		if e := m.SetBytes(frame); e != nil {
			m.Close()
			p.stats.RxErrors++
			p.inbound = p.inbound[1:]
			continue
		}
		p.inbound = p.inbound[1:]
		vec[n] = m
		n++
		p.stats.RxPackets++
		p.stats.RxBytes += uint64(len(frame))
	}
	return n, nil
}

// TxBurst implements ethdev.Driver interface.
// Packets are copied to the outbound FIFO and freed.
// When the outbound FIFO is full, the burst is truncated.
func (b *Backend) TxBurst(id, queue uint16, vec pktmbuf.Vector) (n int, e error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	p, e := b.getPort(id, portStarted)
	if e != nil {
		return 0, eal.Errno(syscall.ENETDOWN)
	}
	if queue != 0 {
		return 0, eal.Errno(syscall.EINVAL)
	}

	for _, pkt := range vec {
		if p.peer == nil && len(p.outbound) >= p.txCap {
			break
		}
		frame := append([]byte{}, pkt.Bytes()...)
		if p.peer != nil {
			if !p.peer.deliver(frame) {
				break
			}
		} else {
			p.outbound = append(p.outbound, frame)
		}
		p.stats.TxPackets++
		p.stats.TxBytes += uint64(len(frame))
		pkt.Close()
		n++
	}
	return n, nil
}

// Stats implements ethdev.StatsReader interface.
func (b *Backend) Stats(id uint16) (ethdev.Stats, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if int(id) >= len(b.ports) {
		return ethdev.Stats{}, eal.Errno(syscall.ENODEV)
	}
	return b.ports[id].stats, nil
}

// RxBurstMode implements ethdev.BurstModeReader interface.
func (b *Backend) RxBurstMode(id, queue uint16) (ethdev.BurstModeInfo, error) {
	return b.burstMode(id, queue, "rx", func(p *port) int { return p.rxCap })
}

// TxBurstMode implements ethdev.BurstModeReader interface.
func (b *Backend) TxBurstMode(id, queue uint16) (ethdev.BurstModeInfo, error) {
	return b.burstMode(id, queue, "tx", func(p *port) int { return p.txCap })
}

func (b *Backend) burstMode(id, queue uint16, dir string, capOf func(p *port) int) (ethdev.BurstModeInfo, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	p, e := b.getPort(id, portConfigured, portStarted)
	if e != nil {
		return ethdev.BurstModeInfo{}, e
	}
	if queue != 0 {
		return ethdev.BurstModeInfo{}, eal.Errno(syscall.EINVAL)
	}
	return ethdev.BurstModeInfo{Info: fmt.Sprintf("ring %s capacity=%d", dir, capOf(p))}, nil
}

// Inject enqueues frames for reception on a port.
// Frames are accepted while the RX queue has room; each rejected frame counts as RxMissed.
// Returns number of accepted frames.
func (b *Backend) Inject(id uint16, frames ...[]byte) (n int) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if int(id) >= len(b.ports) {
		return 0
	}
	p := b.ports[id]
	for _, frame := range frames {
		if p.deliver(append([]byte{}, frame...)) {
			n++
		}
	}
	return n
}

// Drain dequeues all frames transmitted on a port.
func (b *Backend) Drain(id uint16) (frames [][]byte) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if int(id) >= len(b.ports) {
		return nil
	}
	p := b.ports[id]
	frames, p.outbound = p.outbound, nil
	return frames
}

// Connect links TX queue of port a to RX queue of port b.
// Frames transmitted on a are delivered to b instead of the outbound FIFO.
func (b *Backend) Connect(a, z uint16) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if int(a) >= len(b.ports) || int(z) >= len(b.ports) {
		return eal.Errno(syscall.ENODEV)
	}
	b.ports[a].peer = b.ports[z]
	return nil
}
