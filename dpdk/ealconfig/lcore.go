package ealconfig

import (
	"errors"
	"strconv"
)

// LCoreConfig contains CPU and logical core related configuration.
type LCoreConfig struct {
	// Cores is the list of processors (hardware cores) available to EAL.
	// The forwarder is single-threaded, so only one core is needed.
	// Default is [0].
	Cores []int `json:"cores,omitempty"`

	// LCoreMain is the EAL main lcore ID.
	LCoreMain *int `json:"lcoreMain,omitempty"`

	// LCoreFlags is lcore-related flags passed to EAL.
	// This replaces all other options.
	LCoreFlags string `json:"lcoreFlags,omitempty"`
}

func (cfg LCoreConfig) args() (args []string, e error) {
	if cfg.LCoreFlags != "" {
		return shellSplit("lcoreFlags", cfg.LCoreFlags)
	}

	var l commaSeparatedNumbers
	if len(cfg.Cores) == 0 {
		l.Append(0)
	}
	for _, core := range cfg.Cores {
		if core < 0 {
			return nil, errors.New("cores: negative core ID")
		}
		l.Append(core)
	}
	args = append(args, "-l", l.String())

	if cfg.LCoreMain != nil {
		args = append(args, "--main-lcore", strconv.Itoa(*cfg.LCoreMain))
	}
	return args, nil
}
