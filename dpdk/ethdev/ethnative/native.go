//go:build dpdk

package ethnative

/*
#cgo pkg-config: libdpdk
#cgo CFLAGS: -DALLOW_EXPERIMENTAL_API
#include <stdlib.h>

#include <rte_eal.h>
#include <rte_errno.h>
#include <rte_ethdev.h>
#include <rte_lcore.h>
#include <rte_mbuf.h>
#include <rte_mempool.h>

static inline int
NativeErrno(void)
{
  return rte_errno;
}

static inline uint32_t
NativeMbuf_PktLen(const struct rte_mbuf* m)
{
  return rte_pktmbuf_pkt_len(m);
}

static inline uint16_t
NativeMbuf_DataLen(const struct rte_mbuf* m)
{
  return rte_pktmbuf_data_len(m);
}

static inline void*
NativeMbuf_Data(struct rte_mbuf* m)
{
  return rte_pktmbuf_mtod(m, void*);
}
*/
import "C"
import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/usnistgov/pktfwd/core/logging"
	"github.com/usnistgov/pktfwd/dpdk/eal"
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
	"go.uber.org/zap"
)

var logger = logging.New("ethnative")

// ProgramName is passed to EAL as argv[0].
const ProgramName = "pktfwd"

func init() {
	ethdev.RegisterBackend("dpdk", func(ethdev.BackendOptions) (ethdev.Backend, error) {
		return &Backend{}, nil
	})
}

func check(fn string, port uint16, res C.int) error {
	if e := eal.CheckResult(int(res)); e != nil {
		return fmt.Errorf("%s(%d) error %w", fn, port, e)
	}
	return nil
}

// Backend is the DPDK packet I/O framework.
// RxBurst and TxBurst must be called from a single goroutine.
type Backend struct {
	scratch []*C.struct_rte_mbuf
}

var (
	_ ethdev.Backend         = (*Backend)(nil)
	_ ethdev.StatsReader     = (*Backend)(nil)
	_ ethdev.BurstModeReader = (*Backend)(nil)
	_ ethdev.PortNamer       = (*Backend)(nil)
)

// InitRuntime implements eal.Runtime interface.
// It calls rte_eal_init, which may be called only once per process.
func (b *Backend) InitRuntime(args []string) error {
	argv := append([]string{ProgramName}, args...)
	// EAL may retain pointers into argv, so that these strings are not freed.
	argvC := make([]*C.char, len(argv))
	for i, arg := range argv {
		argvC[i] = C.CString(arg)
	}

	res := C.rte_eal_init(C.int(len(argvC)), &argvC[0])
	if res < 0 {
		return eal.Errno(C.NativeErrno())
	}
	logger.Info("EAL initialized",
		zap.Int("lcore", int(C.rte_lcore_id())),
		zap.Int("socket", int(C.rte_socket_id())),
		zap.Int("ports", b.CountAvail()),
	)
	return nil
}

// NewPool implements pktmbuf.PoolProvider interface.
func (b *Backend) NewPool(name string, cfg pktmbuf.PoolConfig) (pktmbuf.Pool, error) {
	return newPool(name, cfg)
}

// CountAvail implements ethdev.Driver interface.
func (b *Backend) CountAvail() int {
	return int(C.rte_eth_dev_count_avail())
}

// PortName implements ethdev.PortNamer interface.
func (b *Backend) PortName(port uint16) string {
	var name [C.RTE_ETH_NAME_MAX_LEN]C.char
	if res := C.rte_eth_dev_get_name_by_port(C.uint16_t(port), &name[0]); res != 0 {
		return ""
	}
	return C.GoString(&name[0])
}

// Configure implements ethdev.Driver interface.
func (b *Backend) Configure(port uint16, nRxQueues, nTxQueues int) error {
	var conf C.struct_rte_eth_conf
	res := C.rte_eth_dev_configure(C.uint16_t(port), C.uint16_t(nRxQueues), C.uint16_t(nTxQueues), &conf)
	return check("rte_eth_dev_configure", port, res)
}

func socketOf(port uint16, socket eal.NumaSocket) C.uint {
	if socket.IsAny() {
		socket = eal.NumaSocketFromID(int(C.rte_eth_dev_socket_id(C.uint16_t(port))))
	}
	if socket.IsAny() {
		return C.uint(C.rte_socket_id())
	}
	return C.uint(socket.ID())
}

// SetupRxQueue implements ethdev.Driver interface.
// cfg.RxPool must be created by this backend.
func (b *Backend) SetupRxQueue(port, queue uint16, cfg ethdev.RxQueueConfig) error {
	mp, ok := cfg.RxPool.(*pool)
	if !ok {
		return fmt.Errorf("rte_eth_rx_queue_setup(%d) error %w", port, eal.Errno(syscall.EINVAL))
	}
	res := C.rte_eth_rx_queue_setup(C.uint16_t(port), C.uint16_t(queue), C.uint16_t(cfg.Capacity),
		socketOf(port, cfg.Socket), nil, mp.mp)
	return check("rte_eth_rx_queue_setup", port, res)
}

// SetupTxQueue implements ethdev.Driver interface.
func (b *Backend) SetupTxQueue(port, queue uint16, cfg ethdev.TxQueueConfig) error {
	res := C.rte_eth_tx_queue_setup(C.uint16_t(port), C.uint16_t(queue), C.uint16_t(cfg.Capacity),
		socketOf(port, cfg.Socket), nil)
	return check("rte_eth_tx_queue_setup", port, res)
}

// Start implements ethdev.Driver interface.
func (b *Backend) Start(port uint16) error {
	return check("rte_eth_dev_start", port, C.rte_eth_dev_start(C.uint16_t(port)))
}

// Stop implements ethdev.Driver interface.
func (b *Backend) Stop(port uint16) error {
	return check("rte_eth_dev_stop", port, C.rte_eth_dev_stop(C.uint16_t(port)))
}

// Close implements ethdev.Driver interface.
func (b *Backend) Close(port uint16) error {
	return check("rte_eth_dev_close", port, C.rte_eth_dev_close(C.uint16_t(port)))
}

func (b *Backend) getScratch(n int) []*C.struct_rte_mbuf {
	if n == 0 {
		n = 1
	}
	if cap(b.scratch) < n {
		b.scratch = make([]*C.struct_rte_mbuf, n)
	}
	return b.scratch[:n]
}

// RxBurst implements ethdev.Driver interface.
func (b *Backend) RxBurst(port, queue uint16, vec pktmbuf.Vector) (int, error) {
	ptrs := b.getScratch(len(vec))
	n := int(C.rte_eth_rx_burst(C.uint16_t(port), C.uint16_t(queue), &ptrs[0], C.uint16_t(len(vec))))
	for i, m := range ptrs[:n] {
		vec[i] = (*mbuf)(m)
	}
	return n, nil
}

// TxBurst implements ethdev.Driver interface.
// Every packet must be allocated from a pool of this backend.
func (b *Backend) TxBurst(port, queue uint16, vec pktmbuf.Vector) (int, error) {
	ptrs := b.getScratch(len(vec))
	if len(vec) == 0 {
		return 0, nil
	}
	for i, pkt := range vec {
		m, ok := pkt.(*mbuf)
		if !ok {
			return 0, eal.Errno(syscall.EINVAL)
		}
		ptrs[i] = m.ptr()
	}
	return int(C.rte_eth_tx_burst(C.uint16_t(port), C.uint16_t(queue), &ptrs[0], C.uint16_t(len(vec)))), nil
}

// Stats implements ethdev.StatsReader interface.
func (b *Backend) Stats(port uint16) (st ethdev.Stats, e error) {
	var c C.struct_rte_eth_stats
	if e = check("rte_eth_stats_get", port, C.rte_eth_stats_get(C.uint16_t(port), &c)); e != nil {
		return st, e
	}
	return ethdev.Stats{
		RxPackets: uint64(c.ipackets),
		RxBytes:   uint64(c.ibytes),
		RxMissed:  uint64(c.imissed),
		RxErrors:  uint64(c.ierrors),
		RxNoMbuf:  uint64(c.rx_nombuf),
		TxPackets: uint64(c.opackets),
		TxBytes:   uint64(c.obytes),
		TxErrors:  uint64(c.oerrors),
	}, nil
}

func burstModeFromC(bm *C.struct_rte_eth_burst_mode) ethdev.BurstModeInfo {
	return ethdev.BurstModeInfo{
		Flags: uint64(bm.flags),
		Info:  C.GoString(&bm.info[0]),
	}
}

// RxBurstMode implements ethdev.BurstModeReader interface.
func (b *Backend) RxBurstMode(port, queue uint16) (ethdev.BurstModeInfo, error) {
	var bm C.struct_rte_eth_burst_mode
	res := C.rte_eth_rx_burst_mode_get(C.uint16_t(port), C.uint16_t(queue), &bm)
	if e := check("rte_eth_rx_burst_mode_get", port, res); e != nil {
		return ethdev.BurstModeInfo{}, e
	}
	return burstModeFromC(&bm), nil
}

// TxBurstMode implements ethdev.BurstModeReader interface.
func (b *Backend) TxBurstMode(port, queue uint16) (ethdev.BurstModeInfo, error) {
	var bm C.struct_rte_eth_burst_mode
	res := C.rte_eth_tx_burst_mode_get(C.uint16_t(port), C.uint16_t(queue), &bm)
	if e := check("rte_eth_tx_burst_mode_get", port, res); e != nil {
		return ethdev.BurstModeInfo{}, e
	}
	return burstModeFromC(&bm), nil
}

// mbuf represents a DPDK packet buffer.
// Only the first segment is visible through Bytes.
type mbuf C.struct_rte_mbuf

var _ pktmbuf.Packet = (*mbuf)(nil)

func (m *mbuf) ptr() *C.struct_rte_mbuf {
	return (*C.struct_rte_mbuf)(m)
}

func (m *mbuf) Len() int {
	return int(C.NativeMbuf_PktLen(m.ptr()))
}

func (m *mbuf) Bytes() []byte {
	return unsafe.Slice((*byte)(C.NativeMbuf_Data(m.ptr())), int(C.NativeMbuf_DataLen(m.ptr())))
}

func (m *mbuf) Close() error {
	C.rte_pktmbuf_free(m.ptr())
	return nil
}

// pool represents a DPDK mempool of packet buffers.
type pool struct {
	mp   *C.struct_rte_mempool
	name string
	cfg  pktmbuf.PoolConfig
}

var _ pktmbuf.Pool = (*pool)(nil)

func newPool(name string, cfg pktmbuf.PoolConfig) (*pool, error) {
	nameC := C.CString(name)
	defer C.free(unsafe.Pointer(nameC))

	mp := C.rte_pktmbuf_pool_create(nameC, C.uint(cfg.Capacity), C.uint(cfg.CacheSize), 0,
		C.uint16_t(pktmbuf.DefaultHeadroom+cfg.Dataroom), C.int(C.rte_socket_id()))
	if mp == nil {
		return nil, eal.Errno(C.NativeErrno())
	}
	return &pool{mp: mp, name: name, cfg: cfg}, nil
}

func (p *pool) String() string {
	return p.name
}

func (p *pool) Config() pktmbuf.PoolConfig {
	return p.cfg
}

func (p *pool) CountAvailable() int {
	return int(C.rte_mempool_avail_count(p.mp))
}

func (p *pool) CountInUse() int {
	return int(C.rte_mempool_in_use_count(p.mp))
}

func (p *pool) Alloc(count int) (pktmbuf.Vector, error) {
	if count == 0 {
		return pktmbuf.Vector{}, nil
	}
	ptrs := make([]*C.struct_rte_mbuf, count)
	if res := C.rte_pktmbuf_alloc_bulk(p.mp, &ptrs[0], C.uint(count)); res != 0 {
		return nil, eal.MakeErrno(int(res))
	}
	vec := make(pktmbuf.Vector, count)
	for i, m := range ptrs {
		vec[i] = (*mbuf)(m)
	}
	return vec, nil
}

func (p *pool) Close() error {
	C.rte_mempool_free(p.mp)
	return nil
}
