package ethdev

import (
	"fmt"

	"github.com/usnistgov/pktfwd/dpdk/eal"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

// RxQueueConfig contains RX queue configuration.
type RxQueueConfig struct {
	Capacity int            // number of descriptors
	Socket   eal.NumaSocket // where to allocate the ring
	RxPool   pktmbuf.Pool   // where to store packets
}

// TxQueueConfig contains TX queue configuration.
type TxQueueConfig struct {
	Capacity int            // number of descriptors
	Socket   eal.NumaSocket // where to allocate the ring
}

// Driver provides port and queue primitives of a packet I/O framework.
// Port and queue numbers are handles issued by the driver.
type Driver interface {
	// CountAvail returns number of available ports.
	// Valid port numbers are 0 to CountAvail()-1.
	CountAvail() int

	Configure(port uint16, nRxQueues, nTxQueues int) error
	SetupRxQueue(port, queue uint16, cfg RxQueueConfig) error
	SetupTxQueue(port, queue uint16, cfg TxQueueConfig) error
	Start(port uint16) error
	Stop(port uint16) error
	Close(port uint16) error

	// RxBurst receives a burst of input packets into vec.
	// Returns the number of packets written to vec[:n].
	RxBurst(port, queue uint16, vec pktmbuf.Vector) (int, error)

	// TxBurst transmits a burst of output packets.
	// The driver takes ownership of vec[:n]; the caller remains responsible for vec[n:].
	TxBurst(port, queue uint16, vec pktmbuf.Vector) (int, error)
}

// Stats contains port statistics reported by the driver.
type Stats struct {
	RxPackets uint64 `json:"rxPackets"`
	RxBytes   uint64 `json:"rxBytes"`
	RxMissed  uint64 `json:"rxMissed"`
	RxErrors  uint64 `json:"rxErrors"`
	RxNoMbuf  uint64 `json:"rxNoMbuf"`
	TxPackets uint64 `json:"txPackets"`
	TxBytes   uint64 `json:"txBytes"`
	TxErrors  uint64 `json:"txErrors"`
}

func (st Stats) String() string {
	return fmt.Sprintf("RX %d pkts, %d bytes, %d missed, %d errors, %d nombuf; TX %d pkts, %d bytes, %d errors",
		st.RxPackets, st.RxBytes, st.RxMissed, st.RxErrors, st.RxNoMbuf, st.TxPackets, st.TxBytes, st.TxErrors)
}

// StatsReader is an optional Driver interface that retrieves hardware statistics.
type StatsReader interface {
	Stats(port uint16) (Stats, error)
}

// BurstModeInfo describes queue burst mode.
type BurstModeInfo struct {
	Flags uint64 `json:"flags"`
	Info  string `json:"info"`
}

// BurstModeReader is an optional Driver interface that retrieves queue burst mode.
type BurstModeReader interface {
	RxBurstMode(port, queue uint16) (BurstModeInfo, error)
	TxBurstMode(port, queue uint16) (BurstModeInfo, error)
}

// PortNamer is an optional Driver interface that retrieves port name.
type PortNamer interface {
	PortName(port uint16) string
}
