package l2fwd

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"go.uber.org/zap"

	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

// Burst size limits.
const (
	DefaultBurstSize = 32
	MaxBurstSize     = 512
)

// ForwarderConfig contains Forwarder configuration.
type ForwarderConfig struct {
	// BurstSize is the maximum number of packets per burst.
	BurstSize int
	// Dump enables logging every received packet at debug level.
	Dump bool
}

func (cfg *ForwarderConfig) applyDefaults() {
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = DefaultBurstSize
	}
	if cfg.BurstSize > MaxBurstSize {
		cfg.BurstSize = MaxBurstSize
	}
}

// Forwarder moves packets between two started ports.
// It is not thread-safe: ForwardRound and Counters must be called from the same goroutine.
type Forwarder struct {
	cfg   ForwarderConfig
	ports [2]ethdev.EthDev
	rxq   [2]ethdev.RxQueue
	txq   [2]ethdev.TxQueue
	cnt   [2]Counters
	vec   pktmbuf.Vector
	lens  []int
}

// NewForwarder creates a Forwarder between port A and port B.
func NewForwarder(a, b ethdev.EthDev, cfg ForwarderConfig) *Forwarder {
	cfg.applyDefaults()
	fwd := &Forwarder{
		cfg:   cfg,
		ports: [2]ethdev.EthDev{a, b},
		vec:   make(pktmbuf.Vector, cfg.BurstSize),
		lens:  make([]int, cfg.BurstSize),
	}
	for i, port := range fwd.ports {
		fwd.rxq[i] = port.RxQueue(0)
		fwd.txq[i] = port.TxQueue(0)
	}
	return fwd
}

// Ports returns port A and port B.
func (fwd *Forwarder) Ports() [2]ethdev.EthDev {
	return fwd.ports
}

// Counters returns a copy of counters of port A and port B.
func (fwd *Forwarder) Counters() [2]Counters {
	return fwd.cnt
}

// ForwardRound executes one forwarding round: A to B, then B to A.
// It returns *ForwardError if a burst failed; the rest of the round is abandoned.
func (fwd *Forwarder) ForwardRound() error {
	if e := fwd.forward(0, 1); e != nil {
		return e
	}
	return fwd.forward(1, 0)
}

func (fwd *Forwarder) forward(src, dst int) error {
	defer clear(fwd.vec)

	nRx, e := fwd.rxq[src].RxBurst(fwd.vec)
	if e != nil {
		fwd.cnt[src].RxErrors++
		fwd.vec[:nRx].Close()
		return &ForwardError{Port: fwd.ports[src].ID(), Dir: DirRx, Err: e}
	}
	if nRx == 0 {
		return nil
	}

	rx := fwd.vec[:nRx]
	rxBytes := rx.LenTotal()
	for i, pkt := range rx {
		fwd.lens[i] = pkt.Len()
	}
	if fwd.cfg.Dump {
		fwd.dump(src, rx)
	}

	nTx, e := fwd.txq[dst].TxBurst(rx)
	if e != nil {
		fwd.cnt[dst].TxErrors++
		rx[nTx:].Close()
		return &ForwardError{Port: fwd.ports[dst].ID(), Dir: DirTx, Err: e}
	}

	fwd.cnt[src].RxPackets += uint64(nRx)
	fwd.cnt[src].RxBytes += uint64(rxBytes)
	fwd.cnt[dst].TxPackets += uint64(nTx)
	for _, l := range fwd.lens[:nTx] {
		fwd.cnt[dst].TxBytes += uint64(l)
	}
	if nTx < nRx {
		rx[nTx:].Close()
		fwd.cnt[dst].TxDropped += uint64(nRx - nTx)
	}
	return nil
}

func (fwd *Forwarder) dump(src int, rx pktmbuf.Vector) {
	for _, pkt := range rx {
		ce := logger.Check(zap.DebugLevel, "packet")
		if ce == nil {
			return
		}
		fields := []zap.Field{
			zap.Uint16("port", fwd.ports[src].ID()),
			zap.Int("len", pkt.Len()),
		}
		p := gopacket.NewPacket(pkt.Bytes(), layers.LayerTypeEthernet, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
		if eth, ok := p.Layer(layers.LayerTypeEthernet).(*layers.Ethernet); ok {
			fields = append(fields,
				zap.Stringer("src", eth.SrcMAC),
				zap.Stringer("dst", eth.DstMAC),
				zap.Stringer("type", eth.EthernetType),
			)
		}
		if nl := p.NetworkLayer(); nl != nil {
			fields = append(fields, zap.Stringer("network", nl.NetworkFlow()))
		}
		ce.Write(fields...)
	}
}
