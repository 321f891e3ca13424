package eal

import (
	"strconv"
	"syscall"
)

// DPDK-specific error numbers, above the range of system errno.
const (
	ErrnoSecondary Errno = 1001 // E_RTE_SECONDARY
	ErrnoNoConfig  Errno = 1002 // E_RTE_NO_CONFIG
)

// Errno represents a DPDK error number.
// Negative status codes from driver calls are converted to Errno so that they never escape as raw integers.
type Errno syscall.Errno

func (e Errno) Error() string {
	var msg string
	switch e {
	case ErrnoSecondary:
		msg = "Invalid call in secondary process instance"
	case ErrnoNoConfig:
		msg = "Missing rte_config structure"
	default:
		msg = syscall.Errno(e).Error()
	}
	return strconv.Itoa(int(e)) + " " + msg
}

// Is allows errors.Is(e, syscall.Errno) comparisons.
func (e Errno) Is(target error) bool {
	if errno, ok := target.(syscall.Errno); ok {
		return syscall.Errno(e) == errno
	}
	return false
}

type signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// MakeErrno creates Errno from non-zero number or returns nil for zero.
// The sign is ignored, so that both "return -errno" and "set rte_errno" conventions are accepted.
func MakeErrno[T signed](errno T) error {
	switch {
	case errno == 0:
		return nil
	case errno < 0:
		return Errno(-errno)
	default:
		return Errno(errno)
	}
}

// CheckResult converts a status code to error.
// Non-negative codes indicate success; negative codes are converted to Errno.
func CheckResult[T signed](res T) error {
	if res >= 0 {
		return nil
	}
	return Errno(-res)
}
