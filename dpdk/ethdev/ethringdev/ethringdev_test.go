package ethringdev_test

import (
	"syscall"
	"testing"

	"github.com/usnistgov/pktfwd/core/testenv"
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/ethdev/ethringdev"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

func bringUp(b *ethringdev.Backend, mp pktmbuf.Pool, rxCap, txCap int, ports ...uint16) error {
	for _, port := range ports {
		if e := b.Configure(port, 1, 1); e != nil {
			return e
		}
		if e := b.SetupRxQueue(port, 0, ethdev.RxQueueConfig{Capacity: rxCap, RxPool: mp}); e != nil {
			return e
		}
		if e := b.SetupTxQueue(port, 0, ethdev.TxQueueConfig{Capacity: txCap}); e != nil {
			return e
		}
		if e := b.Start(port); e != nil {
			return e
		}
	}
	return nil
}

func TestLifecycle(t *testing.T) {
	assert, require := makeAR(t)

	b := ethringdev.New(0)
	assert.Equal(ethringdev.DefaultNPorts, b.CountAvail())
	require.NoError(b.InitRuntime([]string{"-l", "0"}))
	assert.ErrorIs(b.InitRuntime(nil), syscall.EALREADY)
	assert.Equal([]string{"-l", "0"}, b.Args())
	assert.Equal("net_ring1", b.PortName(1))

	mp, _ := b.NewPool("MP", pktmbuf.PoolConfig{Capacity: 15, Dataroom: 256})

	assert.ErrorIs(b.Configure(2, 1, 1), syscall.ENODEV)
	assert.ErrorIs(b.Configure(0, 2, 1), syscall.EINVAL)
	assert.ErrorIs(b.Start(0), syscall.EINVAL)
	require.NoError(b.Configure(0, 1, 1))
	assert.ErrorIs(b.SetupRxQueue(0, 0, ethdev.RxQueueConfig{Capacity: 64}), syscall.EINVAL)
	assert.ErrorIs(b.Start(0), syscall.EINVAL)

	require.NoError(bringUp(b, mp, 64, 64, 0))
	assert.ErrorIs(b.Configure(0, 1, 1), syscall.EBUSY)
	assert.ErrorIs(b.Close(0), syscall.EBUSY)

	require.NoError(b.Stop(0))
	require.NoError(b.Close(0))
	assert.ErrorIs(b.Close(0), syscall.EINVAL)
	assert.ErrorIs(b.Configure(0, 1, 1), syscall.EINVAL)

	_, e := b.RxBurst(0, 0, make(pktmbuf.Vector, 1))
	assert.ErrorIs(e, syscall.ENETDOWN)
}

func TestBurst(t *testing.T) {
	assert, require := makeAR(t)

	b := ethringdev.New(2)
	mp := pktmbuf.NewHeapPool("MP", pktmbuf.PoolConfig{Capacity: 15, Dataroom: 256})
	require.NoError(bringUp(b, mp, 8, 4, 0, 1))

	frames := [][]byte{}
	for i := 0; i < 10; i++ {
		frames = append(frames, testenv.MakeFrame(60+i, byte(i)))
	}
	assert.Equal(8, b.Inject(0, frames...))

	vec := make(pktmbuf.Vector, 5)
	n, e := b.RxBurst(0, 0, vec)
	require.NoError(e)
	assert.Equal(5, n)
	assert.Equal(10, mp.CountAvailable())
	assert.Equal(frames[2], vec[2].Bytes())

	n, e = b.TxBurst(1, 0, vec)
	require.NoError(e)
	assert.Equal(4, n)
	vec[n:].Close()
	assert.Equal(15, mp.CountAvailable())

	sent := b.Drain(1)
	assert.Len(sent, 4)
	assert.Equal(frames[3], sent[3])
	assert.Len(b.Drain(1), 0)

	st, e := b.Stats(0)
	require.NoError(e)
	assert.EqualValues(5, st.RxPackets)
	assert.EqualValues(2, st.RxMissed)
	st, _ = b.Stats(1)
	assert.EqualValues(4, st.TxPackets)
	assert.EqualValues(60+61+62+63, st.TxBytes)

	for _, port := range []uint16{0, 1} {
		require.NoError(b.Stop(port))
		require.NoError(b.Close(port))
	}
	assert.ErrorIs(b.Stop(1), syscall.EINVAL)
}

func TestNoMbuf(t *testing.T) {
	assert, require := makeAR(t)

	b := ethringdev.New(1)
	mp := pktmbuf.NewHeapPool("MP", pktmbuf.PoolConfig{Capacity: 2, Dataroom: 64})
	require.NoError(bringUp(b, mp, 8, 8, 0))
	b.Inject(0, testenv.MakeFrame(60, 1), testenv.MakeFrame(200, 2), testenv.MakeFrame(60, 3), testenv.MakeFrame(60, 4))

	vec := make(pktmbuf.Vector, 8)
	n, e := b.RxBurst(0, 0, vec)
	require.NoError(e)
	assert.Equal(2, n, "oversized frame is dropped, then pool runs out after two")
	assert.Equal(0, mp.CountAvailable())

	st, _ := b.Stats(0)
	assert.EqualValues(1, st.RxErrors)
	assert.EqualValues(1, st.RxNoMbuf)

	vec[:n].Close()
	n, _ = b.RxBurst(0, 0, vec)
	assert.Equal(1, n)
	vec[:n].Close()
}

func TestConnect(t *testing.T) {
	assert, require := makeAR(t)

	b := ethringdev.New(2)
	mp := pktmbuf.NewHeapPool("MP", pktmbuf.PoolConfig{Capacity: 31, Dataroom: 256})
	require.NoError(bringUp(b, mp, 4, 4, 0, 1))
	require.NoError(b.Connect(1, 0))
	assert.Error(b.Connect(1, 5))

	vec, e := mp.Alloc(6)
	require.NoError(e)
	for i, pkt := range vec {
		pkt.(*pktmbuf.Mbuf).SetBytes(testenv.MakeFrame(64, byte(i)))
	}
	n, e := b.TxBurst(1, 0, vec)
	require.NoError(e)
	assert.Equal(4, n, "limited by port 0 RX queue capacity")
	vec[n:].Close()
	assert.Len(b.Drain(1), 0)

	rx := make(pktmbuf.Vector, 8)
	n, e = b.RxBurst(0, 0, rx)
	require.NoError(e)
	assert.Equal(4, n)
	assert.Equal(testenv.MakeFrame(64, 3), rx[3].Bytes())
	rx[:n].Close()
	assert.Equal(31, mp.CountAvailable())
}

func TestBurstMode(t *testing.T) {
	assert, require := makeAR(t)

	b := ethringdev.New(2)
	mp := pktmbuf.NewHeapPool("MP", pktmbuf.PoolConfig{Capacity: 7, Dataroom: 256})
	_, e := b.RxBurstMode(0, 0)
	assert.ErrorIs(e, syscall.EINVAL)

	require.NoError(bringUp(b, mp, 8, 4, 0))
	info, e := b.RxBurstMode(0, 0)
	require.NoError(e)
	assert.Equal("ring rx capacity=8", info.Info)
	info, e = b.TxBurstMode(0, 0)
	require.NoError(e)
	assert.Equal("ring tx capacity=4", info.Info)
	_, e = b.TxBurstMode(0, 1)
	assert.ErrorIs(e, syscall.EINVAL)
	_, e = b.TxBurstMode(2, 0)
	assert.ErrorIs(e, syscall.ENODEV)

	port := ethdev.NewManager(b, ethdev.Config{}).Port(0)
	info, ok := port.RxQueue(0).BurstMode()
	assert.True(ok)
	assert.Equal("ring rx capacity=8", info.Info)
}
