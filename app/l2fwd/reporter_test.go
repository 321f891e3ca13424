package l2fwd_test

import (
	"testing"
	"time"

	"github.com/usnistgov/pktfwd/app/l2fwd"
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
)

func TestReporter(t *testing.T) {
	assert, require := makeAR(t)
	f := newFixture(t, ethdev.Config{}, l2fwd.ForwarderConfig{})

	var snapshots []l2fwd.Snapshot
	r := l2fwd.NewReporter(time.Second, f.Pool)
	assert.Equal(time.Second, r.Interval())
	r.AddSink(l2fwd.SinkFunc(func(s l2fwd.Snapshot) { snapshots = append(snapshots, s) }))

	t0 := time.Unix(1700000000, 0)
	assert.False(r.Tick(t0, f.Fwd))
	assert.False(r.Tick(t0.Add(500*time.Millisecond), f.Fwd))
	assert.Len(snapshots, 0)

	f.B.Inject(0, makeFrames(10, 100)...)
	require.NoError(f.Fwd.ForwardRound())
	before := f.Fwd.Counters()

	assert.True(r.Tick(t0.Add(time.Second), f.Fwd))
	require.Len(snapshots, 1)
	s := snapshots[0]
	assert.Equal(t0.Add(time.Second), s.Time)
	assert.EqualValues(0, s.Ports[0].Port)
	assert.Equal("net_ring0", s.Ports[0].Name)
	assert.EqualValues(1, s.Ports[1].Port)
	assert.EqualValues(10, s.Ports[0].Counters.RxPackets)
	assert.EqualValues(10, s.Ports[1].Counters.TxPackets)
	if assert.NotNil(s.Ports[1].Hw) {
		assert.EqualValues(10, s.Ports[1].Hw.TxPackets)
	}
	assert.Equal(64, s.PoolAvailable)
	assert.Zero(s.PoolInUse)
	assert.Equal(before, f.Fwd.Counters())

	assert.False(r.Tick(t0.Add(1500*time.Millisecond), f.Fwd))
	assert.True(r.Tick(t0.Add(2*time.Second), f.Fwd))
	assert.Len(snapshots, 2)

	r.Report(t0.Add(2100*time.Millisecond), f.Fwd)
	assert.Len(snapshots, 3)
	assert.False(r.Tick(t0.Add(2500*time.Millisecond), f.Fwd))
}

func TestCountersString(t *testing.T) {
	assert, _ := makeAR(t)

	cnt := l2fwd.Counters{RxPackets: 1, RxBytes: 2, RxErrors: 3, TxPackets: 4, TxBytes: 5, TxErrors: 6, TxDropped: 7}
	assert.Equal("RX 1P 2B 3E, TX 4P 5B 6E 7D", cnt.String())
	assert.Equal(`{"rxPackets":1,"rxBytes":2,"rxErrors":3,"txPackets":4,"txBytes":5,"txErrors":6,"txDropped":7}`, toJSON(cnt))
}
