// Package eal abstracts the packet I/O runtime environment, modeled after DPDK Environment Abstraction Layer.
package eal

import (
	"fmt"

	"github.com/kballard/go-shellquote"
	"github.com/usnistgov/pktfwd/core/logging"
	"go.uber.org/zap"
)

var logger = logging.New("eal")

// Runtime represents a packet I/O runtime environment.
type Runtime interface {
	// InitRuntime initializes the environment.
	// args are EAL arguments and should not include program name.
	InitRuntime(args []string) error
}

// InitError indicates the runtime environment failed to initialize.
// Nothing has been allocated when this error occurs.
type InitError struct {
	Args []string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("runtime init [%s] %v", shellquote.Join(e.Args...), e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}

// Init initializes a runtime environment.
// It returns *InitError on failure.
func Init(rt Runtime, args []string) error {
	logEntry := logger.With(zap.String("args", shellquote.Join(args...)))
	if e := rt.InitRuntime(args); e != nil {
		logEntry.Error("EAL init error", zap.Error(e))
		return &InitError{Args: args, Err: e}
	}
	logEntry.Info("EAL ready")
	return nil
}
