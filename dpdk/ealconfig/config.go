// Package ealconfig prepares EAL parameters.
package ealconfig

import (
	"fmt"

	"github.com/usnistgov/pktfwd/core/logging"
	"go.uber.org/zap"
)

var logger = logging.New("ealconfig")

type section interface {
	args() (args []string, e error)
}

// Config contains EAL configuration.
type Config struct {
	LCoreConfig
	MemoryConfig
	DeviceConfig

	// ProcType is the process type passed to --proc-type.
	// Default is "auto".
	ProcType string `json:"procType,omitempty"`

	// ExtraFlags is additional flags passed to EAL.
	ExtraFlags string `json:"extraFlags,omitempty"`

	// Flags is all flags passed to EAL.
	// This replaces all other options.
	Flags string `json:"flags,omitempty"`
}

// Args validates the configuration and constructs EAL arguments.
// The result does not include the program name.
func (cfg Config) Args() (args []string, e error) {
	if cfg.Flags != "" {
		return shellSplit("flags", cfg.Flags)
	}

	for _, sec := range []section{cfg.LCoreConfig, cfg.MemoryConfig, cfg.DeviceConfig} {
		a, e := sec.args()
		if e != nil {
			return nil, e
		}
		args = append(args, a...)
	}

	procType := cfg.ProcType
	switch procType {
	case "":
		procType = "auto"
	case "auto", "primary", "secondary":
	default:
		return nil, fmt.Errorf("procType: unknown value %q", procType)
	}
	args = append(args, "--proc-type="+procType)

	if cfg.ExtraFlags != "" {
		a, e := shellSplit("extraFlags", cfg.ExtraFlags)
		if e != nil {
			return nil, e
		}
		args = append(args, a...)
	}

	logger.Debug("EAL arguments", zap.Strings("args", args))
	return args, nil
}
