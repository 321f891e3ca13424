package l2fwd_test

import (
	"syscall"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/usnistgov/pktfwd/app/l2fwd"
	"github.com/usnistgov/pktfwd/core/nnduration"
	"github.com/usnistgov/pktfwd/dpdk/eal"
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/ethdev/ethdevtestenv"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

func makeConfig(port1, port2 uint16) l2fwd.Config {
	cfg := l2fwd.DefaultConfig()
	cfg.Ports = [2]uint16{port1, port2}
	return cfg
}

// stopAfterReport returns a Sink that requests shutdown on the first report.
func stopAfterReport(sd *l2fwd.Shutdown) l2fwd.Sink {
	return l2fwd.SinkFunc(func(l2fwd.Snapshot) { sd.Request() })
}

func TestApp(t *testing.T) {
	assert, require := makeAR(t)

	b := ethdevtestenv.New(2)
	app := l2fwd.New(b, makeConfig(0, 1))
	assert.Nil(app.Forwarder())
	require.NoError(app.Setup())
	assert.Equal([]string{
		"init", "pool",
		"configure(0)", "rxq(0)", "txq(0)", "start(0)",
		"configure(1)", "rxq(1)", "txq(1)", "start(1)",
	}, b.Calls())
	assert.Equal([]string{"-l", "0", "--proc-type=auto"}, b.Args())

	pool := app.Pool()
	require.NotNil(pool)
	assert.Equal(8192, pool.Config().Capacity)
	assert.Equal(2048, pool.Config().Dataroom)

	assert.Equal(10, b.Inject(0, makeFrames(10, 128)...))
	require.NoError(app.Forwarder().ForwardRound())
	cnt := app.Forwarder().Counters()
	assert.EqualValues(10, cnt[0].RxPackets)
	assert.EqualValues(10, cnt[1].TxPackets)
	assert.Len(b.Drain(1), 10)
	assert.Zero(pool.CountInUse())

	b.ResetCalls()
	require.NoError(app.Close())
	assert.Equal([]string{"stop(0)", "close(0)", "stop(1)", "close(1)"}, b.Calls())
	assert.Nil(app.Pool())

	require.NoError(app.Close())
	assert.Len(b.Calls(), 4)
}

func TestAppRun(t *testing.T) {
	assert, require := makeAR(t)

	cfg := makeConfig(0, 1)
	cfg.ReportInterval = nnduration.Milliseconds(1)
	b := ethdevtestenv.New(2)
	app := l2fwd.New(b, cfg)
	var sd l2fwd.Shutdown
	collector := l2fwd.NewMetricsCollector()
	app.AddSink(collector)
	app.AddSink(stopAfterReport(&sd))

	assert.ErrorIs(app.Run(&sd), l2fwd.ErrNotReady)
	require.NoError(app.Setup())
	assert.Equal(10, b.Inject(0, makeFrames(10, 100)...))
	assert.Equal(4, b.Inject(1, makeFrames(4, 100)...))

	require.NoError(app.Run(&sd))
	assert.True(sd.Requested())
	cnt := app.Forwarder().Counters()
	assert.EqualValues(10, cnt[0].RxPackets)
	assert.EqualValues(10, cnt[1].TxPackets)
	assert.EqualValues(4, cnt[1].RxPackets)
	assert.EqualValues(4, cnt[0].TxPackets)
	assert.Equal(16, testutil.CollectAndCount(collector))

	b.ResetCalls()
	require.NoError(app.Close())
	assert.Equal([]string{"stop", "close"}, b.CallsOn(0))
	assert.Equal([]string{"stop", "close"}, b.CallsOn(1))
	require.NoError(app.Close())
	assert.Len(b.Calls(), 4)
}

func TestAppRunTxError(t *testing.T) {
	assert, require := makeAR(t)

	cfg := makeConfig(0, 1)
	cfg.ReportInterval = nnduration.Milliseconds(1)
	b := ethdevtestenv.New(2)
	app := l2fwd.New(b, cfg)
	defer app.Close()
	var sd l2fwd.Shutdown
	app.AddSink(stopAfterReport(&sd))
	require.NoError(app.Setup())

	b.Fail(ethdevtestenv.OpTxBurst, 1, eal.Errno(syscall.EIO))
	b.Inject(0, makeFrames(10, 100)...)
	require.NoError(app.Run(&sd))

	cnt := app.Forwarder().Counters()
	assert.EqualValues(1, cnt[1].TxErrors)
	assert.Zero(cnt[0].RxPackets)
	assert.Zero(cnt[1].TxPackets)
	assert.Zero(app.Pool().CountInUse())
}

func TestAppRunRxError(t *testing.T) {
	assert, require := makeAR(t)

	cfg := makeConfig(0, 1)
	cfg.ReportInterval = nnduration.Milliseconds(1)
	b := ethdevtestenv.New(2)
	app := l2fwd.New(b, cfg)
	defer app.Close()
	var sd l2fwd.Shutdown
	app.AddSink(stopAfterReport(&sd))
	require.NoError(app.Setup())

	b.Fail(ethdevtestenv.OpRxBurst, 0, eal.Errno(syscall.EIO))
	require.NoError(app.Run(&sd))
	assert.Greater(app.Forwarder().Counters()[0].RxErrors, uint64(1))
}

func TestAppInvalidPort(t *testing.T) {
	assert, require := makeAR(t)

	for _, ports := range [][2]uint16{{0, 2}, {7, 1}, {1, 1}} {
		b := ethdevtestenv.New(2)
		app := l2fwd.New(b, makeConfig(ports[0], ports[1]))
		e := app.Setup()
		var setupErr *ethdev.SetupError
		require.ErrorAs(e, &setupErr, "%v", ports)
		assert.Equal(ethdev.StageValidate, setupErr.Stage)
		assert.ErrorIs(e, ethdev.ErrInvalidPort)
		assert.Equal([]string{"init"}, b.Calls(), "%v", ports)
		assert.Len(b.Pools(), 0)
		assert.NoError(app.Close())
		assert.Equal([]string{"init"}, b.Calls())
	}
}

func TestAppInitError(t *testing.T) {
	assert, require := makeAR(t)

	b := ethdevtestenv.New(2)
	b.Fail(ethdevtestenv.OpInit, ethdevtestenv.AnyPort, eal.Errno(syscall.EPERM))
	app := l2fwd.New(b, makeConfig(0, 1))
	e := app.Setup()
	var initErr *eal.InitError
	require.ErrorAs(e, &initErr)
	assert.ErrorIs(e, syscall.EPERM)
	assert.Equal([]string{"init"}, b.Calls())
}

func TestAppPoolError(t *testing.T) {
	assert, require := makeAR(t)

	b := ethdevtestenv.New(2)
	b.Fail(ethdevtestenv.OpPool, ethdevtestenv.AnyPort, eal.Errno(syscall.ENOMEM))
	app := l2fwd.New(b, makeConfig(0, 1))
	e := app.Setup()
	var poolErr *pktmbuf.PoolError
	require.ErrorAs(e, &poolErr)
	assert.Equal(l2fwd.PoolName, poolErr.Name)
	assert.Equal([]string{"init", "pool"}, b.Calls())
}

func TestAppBringUpFailure(t *testing.T) {
	assert, require := makeAR(t)

	b := ethdevtestenv.New(2)
	b.Fail(ethdevtestenv.OpStart, 1, eal.Errno(syscall.EIO))
	app := l2fwd.New(b, makeConfig(0, 1))
	e := app.Setup()
	var setupErr *ethdev.SetupError
	require.ErrorAs(e, &setupErr)
	assert.EqualValues(1, setupErr.Port)
	assert.Equal(ethdev.StageStart, setupErr.Stage)

	assert.Equal([]string{"configure", "rxq", "txq", "start", "stop", "close"}, b.CallsOn(0))
	assert.Equal([]string{"configure", "rxq", "txq", "start", "close"}, b.CallsOn(1))
	assert.Nil(app.Pool())
	assert.Nil(app.Forwarder())

	b.ResetCalls()
	assert.NoError(app.Close())
	assert.Len(b.Calls(), 0)
}

func TestAppConfigError(t *testing.T) {
	assert, require := makeAR(t)

	b := ethdevtestenv.New(2)
	cfg := makeConfig(0, 1)
	cfg.BurstSize = 1000
	e := l2fwd.New(b, cfg).Setup()
	var cfgErr *l2fwd.ConfigError
	require.ErrorAs(e, &cfgErr)
	assert.Len(b.Calls(), 0)
}

func TestAppEALConfigError(t *testing.T) {
	assert, require := makeAR(t)

	b := ethdevtestenv.New(2)
	cfg := makeConfig(0, 1)
	fromJSON(`{ "filePrefix": "bad prefix!" }`, &cfg.EAL)
	e := l2fwd.New(b, cfg).Setup()
	var cfgErr *l2fwd.ConfigError
	require.ErrorAs(e, &cfgErr)
	assert.Len(b.Calls(), 0)
}
