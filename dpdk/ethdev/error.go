package ethdev

import (
	"errors"
	"fmt"
)

// Stage identifies a step of port bring-up.
type Stage int

// Stage values.
const (
	StageValidate Stage = iota
	StageConfigure
	StageRxQueue
	StageTxQueue
	StageStart
)

func (stage Stage) String() string {
	switch stage {
	case StageValidate:
		return "validate"
	case StageConfigure:
		return "configure"
	case StageRxQueue:
		return "rx-queue-setup"
	case StageTxQueue:
		return "tx-queue-setup"
	case StageStart:
		return "start"
	}
	return fmt.Sprintf("Stage(%d)", int(stage))
}

// Validation errors.
var (
	ErrInvalidPort   = errors.New("invalid port")
	ErrDuplicatePort = fmt.Errorf("%w: same as another port", ErrInvalidPort)
	ErrPortInUse     = errors.New("port already configured or closed")
	ErrNoPool        = errors.New("RX queue requires a packet buffer pool")
)

// SetupError indicates a port could not be brought up.
type SetupError struct {
	Port  uint16
	Stage Stage
	Err   error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("port %d %s: %v", e.Port, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *SetupError) Unwrap() error {
	return e.Err
}
