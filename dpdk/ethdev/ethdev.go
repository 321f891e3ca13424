// Package ethdev manages Ethernet ports and their queues.
package ethdev

import (
	"strconv"

	"github.com/usnistgov/pktfwd/core/logging"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

var logger = logging.New("ethdev")

// EthDev represents an Ethernet port.
type EthDev struct {
	drv Driver
	id  uint16
}

// ID returns port number.
func (port EthDev) ID() uint16 {
	return port.id
}

// Valid returns true if this is a valid port handle.
func (port EthDev) Valid() bool {
	return port.drv != nil
}

func (port EthDev) String() string {
	if !port.Valid() {
		return "invalid"
	}
	return strconv.Itoa(int(port.id))
}

// Name returns port name, if the driver reports one.
func (port EthDev) Name() string {
	if namer, ok := port.drv.(PortNamer); ok {
		return namer.PortName(port.id)
	}
	return ""
}

// Stats retrieves hardware statistics, if the driver supports it.
func (port EthDev) Stats() (st Stats, ok bool) {
	reader, ok := port.drv.(StatsReader)
	if !ok {
		return st, false
	}
	st, e := reader.Stats(port.id)
	return st, e == nil
}

// RxQueue returns an RX queue.
func (port EthDev) RxQueue(queue uint16) RxQueue {
	return RxQueue{drv: port.drv, Port: port.id, Queue: queue}
}

// TxQueue returns a TX queue.
func (port EthDev) TxQueue(queue uint16) TxQueue {
	return TxQueue{drv: port.drv, Port: port.id, Queue: queue}
}

// RxQueue represents an RX queue.
type RxQueue struct {
	drv   Driver
	Port  uint16
	Queue uint16
}

// RxBurst receives a burst of input packets.
// Returns the number of packets received and written into vec.
func (q RxQueue) RxBurst(vec pktmbuf.Vector) (int, error) {
	if len(vec) == 0 {
		return 0, nil
	}
	return q.drv.RxBurst(q.Port, q.Queue, vec)
}

// BurstMode retrieves queue burst mode.
func (q RxQueue) BurstMode() (info BurstModeInfo, ok bool) {
	if reader, ok := q.drv.(BurstModeReader); ok {
		info, e := reader.RxBurstMode(q.Port, q.Queue)
		return info, e == nil
	}
	return info, false
}

// TxQueue represents a TX queue.
type TxQueue struct {
	drv   Driver
	Port  uint16
	Queue uint16
}

// TxBurst transmits a burst of output packets.
// Returns the number of packets enqueued; the caller should free the rest.
func (q TxQueue) TxBurst(vec pktmbuf.Vector) (int, error) {
	if len(vec) == 0 {
		return 0, nil
	}
	return q.drv.TxBurst(q.Port, q.Queue, vec)
}

// BurstMode retrieves queue burst mode.
func (q TxQueue) BurstMode() (info BurstModeInfo, ok bool) {
	if reader, ok := q.drv.(BurstModeReader); ok {
		info, e := reader.TxBurstMode(q.Port, q.Queue)
		return info, e == nil
	}
	return info, false
}
