package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/usnistgov/pktfwd/app/l2fwd"
	"github.com/usnistgov/pktfwd/core/nnduration"
	"github.com/usnistgov/pktfwd/dpdk/ethdev/ethringdev"
)

var flags = []cli.Flag{
	&cli.UintFlag{
		Name:     "port1",
		Usage:    "first port `ID`",
		Required: true,
	},
	&cli.UintFlag{
		Name:     "port2",
		Usage:    "second port `ID`",
		Required: true,
	},
	&cli.StringFlag{
		Name:  "driver",
		Usage: "packet I/O backend (dpdk, ring, netif)",
		Value: "dpdk",
	},
	&cli.StringSliceFlag{
		Name:  "netif",
		Usage: "kernel network interface `NAME` (netif backend, repeatable)",
	},
	&cli.IntFlag{
		Name:  "ring-ports",
		Usage: "number of ports (ring backend)",
		Value: ethringdev.DefaultNPorts,
	},
	&cli.StringFlag{
		Name:  "config",
		Usage: "configuration `FILE` (JSON)",
	},
	&cli.StringFlag{
		Name:  "eal",
		Usage: "additional EAL `FLAGS`",
	},
	&cli.IntFlag{
		Name:  "burst",
		Usage: "burst size",
	},
	&cli.DurationFlag{
		Name:  "interval",
		Usage: "statistics reporting interval",
	},
	&cli.BoolFlag{
		Name:  "dump",
		Usage: "log packet summaries at debug level",
	},
	&cli.StringFlag{
		Name:  "metrics",
		Usage: "Prometheus metrics HTTP listen `ADDRESS`",
	},
}

// makeConfig loads the configuration file and applies command line overrides.
func makeConfig(c *cli.Context) (cfg l2fwd.Config, e error) {
	cfg = l2fwd.DefaultConfig()
	if filename := c.String("config"); filename != "" {
		file, e := os.Open(filename)
		if e != nil {
			return cfg, &l2fwd.ConfigError{Err: e}
		}
		defer file.Close()
		if cfg, e = l2fwd.LoadConfig(file); e != nil {
			return cfg, e
		}
	}

	for i, name := range []string{"port1", "port2"} {
		port := c.Uint(name)
		if port > math.MaxUint16 {
			return cfg, &l2fwd.ConfigError{Err: fmt.Errorf("--%s=%d out of range", name, port)}
		}
		cfg.Ports[i] = uint16(port)
	}
	if c.IsSet("eal") {
		if cfg.EAL.ExtraFlags != "" {
			cfg.EAL.ExtraFlags += " "
		}
		cfg.EAL.ExtraFlags += c.String("eal")
	}
	if c.IsSet("burst") {
		cfg.BurstSize = c.Int("burst")
	}
	if c.IsSet("interval") {
		d := c.Duration("interval")
		if d < time.Millisecond {
			return cfg, &l2fwd.ConfigError{Err: fmt.Errorf("--interval=%s too short", d)}
		}
		cfg.ReportInterval = nnduration.FromDuration(d)
	}
	if c.Bool("dump") {
		cfg.Dump = true
	}
	return cfg, cfg.Validate()
}
