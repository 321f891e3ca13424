//go:build !dpdk

package ethnative

import (
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
)

func init() {
	ethdev.RegisterBackend("dpdk", func(ethdev.BackendOptions) (ethdev.Backend, error) {
		return nil, ErrNotBuilt
	})
}
