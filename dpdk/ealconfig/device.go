package ealconfig

import (
	"fmt"

	"github.com/usnistgov/pktfwd/core/pciaddr"
)

// DeviceConfig contains device related configuration.
type DeviceConfig struct {
	// PciDevices is an allowlist of PCI devices to enable.
	// Each should be a PCI address.
	// If both this and VirtualDevices are empty, all PCI devices are available.
	PciDevices []pciaddr.PCIAddress `json:"pciDevices,omitempty"`

	// VirtualDevices is a list of virtual devices.
	// Each should be a device argument for --vdev flag, such as "net_ring0".
	VirtualDevices []string `json:"virtualDevices,omitempty"`

	// DisablePCI disables the PCI bus.
	// This is useful when only virtual devices are used.
	DisablePCI bool `json:"disablePCI,omitempty"`

	// DeviceFlags is device-related flags passed to EAL.
	// This replaces all other options.
	DeviceFlags string `json:"deviceFlags,omitempty"`
}

func (cfg DeviceConfig) args() (args []string, e error) {
	if cfg.DeviceFlags != "" {
		return shellSplit("deviceFlags", cfg.DeviceFlags)
	}

	if cfg.DisablePCI {
		if len(cfg.PciDevices) > 0 {
			return nil, fmt.Errorf("pciDevices: conflicts with disablePCI")
		}
		args = append(args, "--no-pci")
	}

	for _, dev := range cfg.PciDevices {
		args = append(args, "-a", dev.String())
	}

	for _, dev := range cfg.VirtualDevices {
		if dev == "" {
			return nil, errInvalidField("virtualDevices", dev)
		}
		args = append(args, "--vdev", dev)
	}
	return args, nil
}
