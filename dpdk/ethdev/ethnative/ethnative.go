// Package ethnative binds DPDK ethdev, mbuf, and EAL as an ethdev.Backend.
//
// The binding is compiled only with the "dpdk" build tag, which requires libdpdk pkg-config.
// Without the tag, the "dpdk" backend reports ErrNotBuilt.
package ethnative

import (
	"errors"
)

// ErrNotBuilt indicates the program was compiled without DPDK support.
var ErrNotBuilt = errors.New("DPDK support not compiled in, rebuild with -tags dpdk")
