// Package ethdevtestenv provides a scripted backend for testing port lifecycle and forwarding.
package ethdevtestenv

import (
	"fmt"
	"sync"

	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/ethdev/ethringdev"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

// Op identifies a backend operation.
type Op string

// Op values.
const (
	OpInit      Op = "init"
	OpPool      Op = "pool"
	OpConfigure Op = "configure"
	OpRxQueue   Op = "rxq"
	OpTxQueue   Op = "txq"
	OpStart     Op = "start"
	OpStop      Op = "stop"
	OpClose     Op = "close"
	OpRxBurst   Op = "rx"
	OpTxBurst   Op = "tx"
)

// OpOfStage returns the operation that implements a bring-up stage.
func OpOfStage(stage ethdev.Stage) Op {
	switch stage {
	case ethdev.StageConfigure:
		return OpConfigure
	case ethdev.StageRxQueue:
		return OpRxQueue
	case ethdev.StageTxQueue:
		return OpTxQueue
	case ethdev.StageStart:
		return OpStart
	}
	return ""
}

// AnyPort matches every port in Fail.
const AnyPort = -1

type failKey struct {
	op   Op
	port int
}

// Backend wraps a software backend, records lifecycle calls, and injects failures.
// Burst calls are not recorded.
type Backend struct {
	*ethringdev.Backend

	mutex sync.Mutex
	calls []string
	fails map[failKey]error
	pools []pktmbuf.Pool
}

var _ ethdev.Backend = (*Backend)(nil)

// New creates a Backend with nPorts ports.
func New(nPorts int) *Backend {
	return &Backend{
		Backend: ethringdev.New(nPorts),
		fails:   map[failKey]error{},
	}
}

// Fail causes op on port to fail with e.
// port may be AnyPort; OpInit and OpPool ignore port.
// Failures persist until Clear.
func (b *Backend) Fail(op Op, port int, e error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.fails[failKey{op, port}] = e
}

// Clear removes a failure set by Fail.
func (b *Backend) Clear(op Op, port int) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	delete(b.fails, failKey{op, port})
}

// Calls returns recorded lifecycle calls, such as "configure(0)".
func (b *Backend) Calls() []string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]string{}, b.calls...)
}

// CallsOn returns recorded lifecycle calls on a port, such as "configure".
func (b *Backend) CallsOn(port uint16) (ops []string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	suffix := fmt.Sprintf("(%d)", port)
	for _, call := range b.calls {
		if len(call) > len(suffix) && call[len(call)-len(suffix):] == suffix {
			ops = append(ops, call[:len(call)-len(suffix)])
		}
	}
	return ops
}

// ResetCalls clears recorded calls.
func (b *Backend) ResetCalls() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.calls = nil
}

// Pools returns pools created by NewPool.
func (b *Backend) Pools() []pktmbuf.Pool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]pktmbuf.Pool{}, b.pools...)
}

func (b *Backend) check(op Op, port int, record bool) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if record {
		if port < 0 {
			b.calls = append(b.calls, string(op))
		} else {
			b.calls = append(b.calls, fmt.Sprintf("%s(%d)", op, port))
		}
	}
	if e := b.fails[failKey{op, port}]; e != nil {
		return e
	}
	return b.fails[failKey{op, AnyPort}]
}

// InitRuntime implements eal.Runtime interface.
func (b *Backend) InitRuntime(args []string) error {
	if e := b.check(OpInit, AnyPort, true); e != nil {
		return e
	}
	return b.Backend.InitRuntime(args)
}

// NewPool implements pktmbuf.PoolProvider interface.
func (b *Backend) NewPool(name string, cfg pktmbuf.PoolConfig) (pktmbuf.Pool, error) {
	if e := b.check(OpPool, AnyPort, true); e != nil {
		return nil, e
	}
	mp, e := b.Backend.NewPool(name, cfg)
	if e == nil {
		b.mutex.Lock()
		b.pools = append(b.pools, mp)
		b.mutex.Unlock()
	}
	return mp, e
}

// Configure implements ethdev.Driver interface.
func (b *Backend) Configure(port uint16, nRxQueues, nTxQueues int) error {
	if e := b.check(OpConfigure, int(port), true); e != nil {
		return e
	}
	return b.Backend.Configure(port, nRxQueues, nTxQueues)
}

// SetupRxQueue implements ethdev.Driver interface.
func (b *Backend) SetupRxQueue(port, queue uint16, cfg ethdev.RxQueueConfig) error {
	if e := b.check(OpRxQueue, int(port), true); e != nil {
		return e
	}
	return b.Backend.SetupRxQueue(port, queue, cfg)
}

// SetupTxQueue implements ethdev.Driver interface.
func (b *Backend) SetupTxQueue(port, queue uint16, cfg ethdev.TxQueueConfig) error {
	if e := b.check(OpTxQueue, int(port), true); e != nil {
		return e
	}
	return b.Backend.SetupTxQueue(port, queue, cfg)
}

// Start implements ethdev.Driver interface.
func (b *Backend) Start(port uint16) error {
	if e := b.check(OpStart, int(port), true); e != nil {
		return e
	}
	return b.Backend.Start(port)
}

// Stop implements ethdev.Driver interface.
// An injected failure is reported after the port is stopped.
func (b *Backend) Stop(port uint16) error {
	failure := b.check(OpStop, int(port), true)
	if e := b.Backend.Stop(port); e != nil {
		return e
	}
	return failure
}

// Close implements ethdev.Driver interface.
// An injected failure is reported after the port is closed.
func (b *Backend) Close(port uint16) error {
	failure := b.check(OpClose, int(port), true)
	if e := b.Backend.Close(port); e != nil {
		return e
	}
	return failure
}

// RxBurst implements ethdev.Driver interface.
// An injected failure is reported after frames are received.
func (b *Backend) RxBurst(port, queue uint16, vec pktmbuf.Vector) (int, error) {
	n, e := b.Backend.RxBurst(port, queue, vec)
	if e != nil {
		return n, e
	}
	return n, b.check(OpRxBurst, int(port), false)
}

// TxBurst implements ethdev.Driver interface.
// An injected failure rejects the whole burst.
func (b *Backend) TxBurst(port, queue uint16, vec pktmbuf.Vector) (int, error) {
	if e := b.check(OpTxBurst, int(port), false); e != nil {
		return 0, e
	}
	return b.Backend.TxBurst(port, queue, vec)
}
