package l2fwd

import (
	"fmt"
)

// Direction indicates packet direction relative to a port.
type Direction int

// Direction values.
const (
	DirRx Direction = iota
	DirTx
)

func (dir Direction) String() string {
	switch dir {
	case DirRx:
		return "RX"
	case DirTx:
		return "TX"
	}
	return fmt.Sprintf("Direction(%d)", int(dir))
}

// ForwardError indicates a burst failed during a forwarding round.
// It is recoverable: the failure has been counted and the packets have been freed.
type ForwardError struct {
	Port uint16
	Dir  Direction
	Err  error
}

func (e *ForwardError) Error() string {
	return fmt.Sprintf("port %d %s burst: %v", e.Port, e.Dir, e.Err)
}

// Unwrap returns the underlying error.
func (e *ForwardError) Unwrap() error {
	return e.Err
}

// ConfigError indicates the configuration is invalid.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bad configuration: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
