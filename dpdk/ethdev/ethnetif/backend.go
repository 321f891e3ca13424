//go:build linux

package ethnetif

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/google/gopacket/afpacket"
	"go.uber.org/zap"

	"github.com/usnistgov/pktfwd/dpdk/eal"
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

func init() {
	ethdev.RegisterBackend("netif", func(opts ethdev.BackendOptions) (ethdev.Backend, error) {
		return New(opts.Netifs)
	})
}

type portState int

const (
	portIdle portState = iota
	portConfigured
	portStarted
	portClosed
)

type port struct {
	ifname string
	intf   *NetIntf
	state  portState
	rxPool pktmbuf.Pool
	tp     *afpacket.TPacket
	stats  ethdev.Stats
}

// Backend is a packet I/O framework over kernel network interfaces.
// Port numbers are assigned in the order of interface names.
// It implements ethdev.Backend.
type Backend struct {
	ports []*port
}

var (
	_ ethdev.Backend     = (*Backend)(nil)
	_ ethdev.StatsReader = (*Backend)(nil)
	_ ethdev.PortNamer   = (*Backend)(nil)
)

// New creates a Backend over network interfaces.
func New(ifnames []string) (*Backend, error) {
	if len(ifnames) == 0 {
		return nil, errors.New("no network interface specified")
	}
	b := &Backend{}
	for _, ifname := range ifnames {
		b.ports = append(b.ports, &port{ifname: ifname})
	}
	return b, nil
}

// InitRuntime implements eal.Runtime interface.
// It locates every network interface.
func (b *Backend) InitRuntime(args []string) error {
	if len(args) > 0 {
		logger.Debug("EAL arguments ignored", zap.Strings("args", args))
	}
	for _, p := range b.ports {
		intf, e := NetIntfByName(p.ifname)
		if e != nil {
			return e
		}
		intf.logInfo()
		p.intf = intf
	}
	return nil
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
func (b *Backend) PortName(id uint16) string {
	if int(id) >= len(b.ports) {
		return ""
	}
	return b.ports[id].ifname
}

func (b *Backend) getPort(id uint16, want portState) (*port, error) {
	if int(id) >= len(b.ports) || b.ports[id].intf == nil {
		return nil, eal.Errno(syscall.ENODEV)
	}
	p := b.ports[id]
	if p.state != want {
		return nil, eal.Errno(syscall.EINVAL)
	}
	return p, nil
}

// Configure implements ethdev.Driver interface.
// Only one RX queue and one TX queue are supported.
func (b *Backend) Configure(id uint16, nRxQueues, nTxQueues int) error {
	p, e := b.getPort(id, portIdle)
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
	p, e := b.getPort(id, portConfigured)
	if e != nil {
		return e
	}
	if queue != 0 || cfg.RxPool == nil {
		return eal.Errno(syscall.EINVAL)
	}
	p.rxPool = cfg.RxPool
	return nil
}

// SetupTxQueue implements ethdev.Driver interface.
func (b *Backend) SetupTxQueue(id, queue uint16, cfg ethdev.TxQueueConfig) error {
	if _, e := b.getPort(id, portConfigured); e != nil {
		return e
	}
	if queue != 0 {
		return eal.Errno(syscall.EINVAL)
	}
	return nil
}

// Start implements ethdev.Driver interface.
// It brings up the link, enables promiscuous mode, and opens an AF_PACKET socket.
func (b *Backend) Start(id uint16) (e error) {
	p, e := b.getPort(id, portConfigured)
	if e != nil {
		return e
	}
	if p.rxPool == nil {
		return eal.Errno(syscall.EINVAL)
	}

	if e = p.intf.EnsureLinkUp(); e != nil {
		return e
	}
	if e = p.intf.EnablePromisc(); e != nil {
		p.intf.Restore()
		return e
	}

	p.tp, e = afpacket.NewTPacket(afpacket.OptInterface(p.ifname), afpacket.OptPollTimeout(0))
	if e != nil {
		p.intf.Restore()
		return fmt.Errorf("afpacket.NewTPacket(%s): %w", p.ifname, e)
	}
	p.state = portStarted
	return nil
}

// Stop implements ethdev.Driver interface.
func (b *Backend) Stop(id uint16) error {
	p, e := b.getPort(id, portStarted)
	if e != nil {
		return e
	}
	b.collectSocketStats(p)
	p.tp.Close()
	p.tp = nil
	p.intf.Restore()
	p.state = portConfigured
	return nil
}

// Close implements ethdev.Driver interface.
func (b *Backend) Close(id uint16) error {
	p, e := b.getPort(id, portConfigured)
	if e != nil {
		return e
	}
	p.state, p.rxPool = portClosed, nil
	return nil
}

// RxBurst implements ethdev.Driver interface.
func (b *Backend) RxBurst(id, queue uint16, vec pktmbuf.Vector) (n int, e error) {
	p, e := b.getPort(id, portStarted)
	if e != nil {
		return 0, eal.Errno(syscall.ENETDOWN)
	}

	for n < len(vec) {
		data, _, e := p.tp.ZeroCopyReadPacketData()
		switch {
		case errors.Is(e, afpacket.ErrTimeout):
			return n, nil
		case e != nil:
			p.stats.RxErrors++
			return n, e
		}

		alloc, e := p.rxPool.Alloc(1)
		if e != nil {
			p.stats.RxNoMbuf++
			return n, nil
		}
		m, ok := alloc[0].(*pktmbuf.Mbuf)
		if !ok {
			alloc.Close()
			return n, eal.Errno(syscall.EINVAL)
		}
		if e := m.SetBytes(data); e != nil {
			m.Close()
			p.stats.RxErrors++
			continue
		}
		vec[n] = m
		n++
		p.stats.RxPackets++
		p.stats.RxBytes += uint64(len(data))
	}
	return n, nil
}

// TxBurst implements ethdev.Driver interface.
// Packets are written to the socket one by one and freed.
func (b *Backend) TxBurst(id, queue uint16, vec pktmbuf.Vector) (n int, e error) {
	p, e := b.getPort(id, portStarted)
	if e != nil {
		return 0, eal.Errno(syscall.ENETDOWN)
	}

	for _, pkt := range vec {
		if e := p.tp.WritePacketData(pkt.Bytes()); e != nil {
			p.stats.TxErrors++
			if errors.Is(e, syscall.EAGAIN) || errors.Is(e, syscall.ENOBUFS) {
				return n, nil
			}
			return n, e
		}
		p.stats.TxPackets++
		p.stats.TxBytes += uint64(pkt.Len())
		pkt.Close()
		n++
	}
	return n, nil
}

func (b *Backend) collectSocketStats(p *port) {
	if p.tp == nil {
		return
	}
	ss, ssV3, e := p.tp.SocketStats()
	if e != nil {
		return
	}
	p.stats.RxMissed = uint64(ss.Drops()) + uint64(ssV3.Drops())
}

// Stats implements ethdev.StatsReader interface.
func (b *Backend) Stats(id uint16) (ethdev.Stats, error) {
	if int(id) >= len(b.ports) {
		return ethdev.Stats{}, eal.Errno(syscall.ENODEV)
	}
	p := b.ports[id]
	b.collectSocketStats(p)
	return p.stats, nil
}
