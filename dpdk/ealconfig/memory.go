package ealconfig

import (
	"regexp"
	"strconv"
)

// MemoryConfig contains memory related configuration.
type MemoryConfig struct {
	// MemChannels is the number of memory channels.
	// Omitting or setting an incorrect value may result in suboptimal performance.
	MemChannels int `json:"memChannels,omitempty"`

	// FilePrefix is the shared data file prefix.
	// This allows multiple forwarder instances on the same host.
	FilePrefix string `json:"filePrefix,omitempty"`

	// InMemory disables hugepage file creation.
	InMemory bool `json:"inMemory,omitempty"`

	// MemFlags is memory-related flags passed to EAL.
	// This replaces all other options.
	MemFlags string `json:"memFlags,omitempty"`
}

var reFilePrefix = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func (cfg MemoryConfig) args() (args []string, e error) {
	if cfg.MemFlags != "" {
		return shellSplit("memFlags", cfg.MemFlags)
	}

	if cfg.MemChannels > 0 {
		args = append(args, "-n", strconv.Itoa(cfg.MemChannels))
	}

	if cfg.FilePrefix != "" {
		if !reFilePrefix.MatchString(cfg.FilePrefix) {
			return nil, errInvalidField("filePrefix", cfg.FilePrefix)
		}
		args = append(args, "--file-prefix", cfg.FilePrefix)
	}

	if cfg.InMemory {
		args = append(args, "--in-memory")
	}
	return args, nil
}
