// Command pktfwd forwards packets between two ports.
// Every packet received on one port is transmitted on the other port.
package main

import (
	"bytes"
	"os"
	"runtime"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/usnistgov/pktfwd/app/l2fwd"
	"github.com/usnistgov/pktfwd/appinit"
	"github.com/usnistgov/pktfwd/core/logging"
	"github.com/usnistgov/pktfwd/core/version"
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	_ "github.com/usnistgov/pktfwd/dpdk/ethdev/ethnative"
	_ "github.com/usnistgov/pktfwd/dpdk/ethdev/ethnetif"
	_ "github.com/usnistgov/pktfwd/dpdk/ethdev/ethringdev"
)

var logger = logging.New("main")

var app = &cli.App{
	Version: version.V.String(),
	Usage:   "Forward packets between two ports.",
	Flags:   flags,
	Action: func(c *cli.Context) error {
		cfg, e := makeConfig(c)
		if e != nil {
			return cli.Exit(e, appinit.ExitCode(e))
		}
		if cfg.Dump {
			logging.GetLevel("l2fwd").SetLevel("D")
		}

		backend, e := ethdev.NewBackend(c.String("driver"), ethdev.BackendOptions{
			NPorts: c.Int("ring-ports"),
			Netifs: c.StringSlice("netif"),
		})
		if e != nil {
			return cli.Exit(e, appinit.EXIT_BAD_CONFIG)
		}

		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		fwd := l2fwd.New(backend, cfg)
		if listen := c.String("metrics"); listen != "" {
			collector := l2fwd.NewMetricsCollector()
			fwd.AddSink(collector)
			stopMetrics := serveMetrics(listen, collector)
			defer stopMetrics()
		}

		var shutdown l2fwd.Shutdown
		stopSignals := shutdown.Notify(unix.SIGINT, unix.SIGTERM)
		defer stopSignals()

		if e := fwd.Setup(); e != nil {
			logger.Error("setup error", zap.Error(e))
			fwd.Close()
			return cli.Exit(e, appinit.ExitCode(e))
		}
		daemon.SdNotify(false, daemon.SdNotifyReady)

		e = fwd.Run(&shutdown)
		daemon.SdNotify(false, daemon.SdNotifyStopping)
		if e = multierr.Append(e, fwd.Close()); e != nil {
			logger.Error("shutdown error", zap.Error(e))
			return cli.Exit(e, appinit.EXIT_FAILURE)
		}
		logger.Info("clean shutdown")
		return nil
	},
}

func main() {
	var uname unix.Utsname
	unix.Uname(&uname)
	logger.Info("pktfwd starting",
		zap.Any("version", version.V),
		zap.Int("uid", os.Getuid()),
		zap.ByteString("linux", bytes.TrimRight(uname.Release[:], string([]byte{0}))),
		zap.Strings("backends", ethdev.ListBackends()),
	)

	os.Exit(run(os.Args))
}

// run executes the app and returns the process exit code.
// Errors from Action exit inside app.Run; errors returned here come from command line parsing.
func run(args []string) int {
	if e := app.Run(args); e != nil {
		logger.Error("command line error", zap.Error(e))
		return appinit.EXIT_BAD_CONFIG
	}
	return appinit.EXIT_OK
}
