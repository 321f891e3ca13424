//go:build linux

package ethnetif_test

import (
	"testing"

	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/ethdev/ethnetif"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

func TestNew(t *testing.T) {
	assert, require := makeAR(t)

	_, e := ethnetif.New(nil)
	assert.Error(e)

	b, e := ethnetif.New([]string{"pktfwd-nx0", "pktfwd-nx1"})
	require.NoError(e)
	assert.Equal(2, b.CountAvail())
	assert.Equal("pktfwd-nx1", b.PortName(1))
	assert.Equal("", b.PortName(2))

	e = b.InitRuntime(nil)
	assert.ErrorContains(e, "pktfwd-nx0")

	assert.Error(b.Configure(0, 1, 1), "port without network interface")
	assert.Error(b.Close(0), "port never configured")
}

func TestRegistered(t *testing.T) {
	assert, _ := makeAR(t)
	assert.Contains(ethdev.ListBackends(), "netif")

	b, e := ethdev.NewBackend("netif", ethdev.BackendOptions{Netifs: []string{"pktfwd-nx0"}})
	if assert.NoError(e) {
		mp, e := b.NewPool("MP", pktmbuf.PoolConfig{Capacity: 63, Dataroom: 2048})
		assert.NoError(e)
		assert.Equal(63, mp.CountAvailable())
	}
}
