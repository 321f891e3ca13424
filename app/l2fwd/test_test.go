package l2fwd_test

import (
	"testing"

	"github.com/usnistgov/pktfwd/app/l2fwd"
	"github.com/usnistgov/pktfwd/core/testenv"
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/ethdev/ethdevtestenv"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

var (
	makeAR    = testenv.MakeAR
	makeFrame = testenv.MakeFrame
	fromJSON  = testenv.FromJSON
	toJSON    = testenv.ToJSON
)

func makeFrames(count, length int) (frames [][]byte) {
	for i := 0; i < count; i++ {
		frames = append(frames, makeFrame(length, byte(i)))
	}
	return frames
}

type fixture struct {
	B    *ethdevtestenv.Backend
	M    *ethdev.Manager
	Pool pktmbuf.Pool
	Fwd  *l2fwd.Forwarder
}

func newFixture(t testing.TB, portCfg ethdev.Config, fwdCfg l2fwd.ForwarderConfig) (f *fixture) {
	_, require := makeAR(t)
	f = &fixture{
		B:    ethdevtestenv.New(2),
		Pool: pktmbuf.NewHeapPool("MP", pktmbuf.PoolConfig{Capacity: 64, Dataroom: 2048, CacheSize: 0}),
	}
	f.M = ethdev.NewManager(f.B, portCfg)
	require.NoError(f.M.BringUpAll([]uint16{0, 1}, f.Pool))
	t.Cleanup(func() {
		f.M.TearDownAll()
		f.Pool.Close()
	})
	f.Fwd = l2fwd.NewForwarder(f.M.Port(0), f.M.Port(1), fwdCfg)
	return f
}
