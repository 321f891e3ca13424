// Package appinit maps initialization errors to process exit codes.
package appinit

import (
	"errors"

	"github.com/usnistgov/pktfwd/app/l2fwd"
	"github.com/usnistgov/pktfwd/dpdk/eal"
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

// Process exit codes.
const (
	EXIT_OK                 = 0
	EXIT_FAILURE            = 1
	EXIT_BAD_CONFIG         = 2
	EXIT_EAL_INIT_ERROR     = 3
	EXIT_MEMPOOL_INIT_ERROR = 5
	EXIT_PORT_INIT_ERROR    = 6
)

// ExitCode determines the exit code for an error returned during initialization.
func ExitCode(e error) int {
	if e == nil {
		return EXIT_OK
	}

	var (
		cfgErr   *l2fwd.ConfigError
		initErr  *eal.InitError
		poolErr  *pktmbuf.PoolError
		setupErr *ethdev.SetupError
	)
	switch {
	case errors.As(e, &cfgErr):
		return EXIT_BAD_CONFIG
	case errors.As(e, &initErr):
		return EXIT_EAL_INIT_ERROR
	case errors.As(e, &poolErr):
		return EXIT_MEMPOOL_INIT_ERROR
	case errors.As(e, &setupErr):
		if setupErr.Stage == ethdev.StageValidate {
			return EXIT_BAD_CONFIG
		}
		return EXIT_PORT_INIT_ERROR
	}
	return EXIT_FAILURE
}
