//go:build !dpdk

package ethnative_test

import (
	"testing"

	"github.com/usnistgov/pktfwd/core/testenv"
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/ethdev/ethnative"
)

func TestNotBuilt(t *testing.T) {
	assert, _ := testenv.MakeAR(t)

	_, e := ethdev.NewBackend("dpdk", ethdev.BackendOptions{})
	assert.ErrorIs(e, ethnative.ErrNotBuilt)
}
