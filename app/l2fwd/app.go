// Package l2fwd implements a two-port packet forwarder.
package l2fwd

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"go4.org/must"

	"github.com/usnistgov/pktfwd/core/logging"
	"github.com/usnistgov/pktfwd/dpdk/eal"
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

var logger = logging.New("l2fwd")

// PoolName is the name of the packet buffer pool.
const PoolName = "mbuf_pool"

// ErrNotReady indicates Run was called before a successful Setup.
var ErrNotReady = errors.New("application is not set up")

// App is the packet forwarder application.
// Its methods must be called from the same goroutine.
type App struct {
	backend  ethdev.Backend
	cfg      Config
	ports    *ethdev.Manager
	pool     pktmbuf.Pool
	fwd      *Forwarder
	reporter *Reporter
	sinks    []Sink
	closed   bool
}

// New creates an App.
func New(backend ethdev.Backend, cfg Config) *App {
	return &App{
		backend: backend,
		cfg:     cfg,
		ports:   ethdev.NewManager(backend, cfg.portConfig()),
	}
}

// AddSink registers a statistics Sink.
// It should be called before Setup.
func (app *App) AddSink(sink Sink) {
	app.sinks = append(app.sinks, sink)
}

// Ports returns the port lifecycle manager.
func (app *App) Ports() *ethdev.Manager {
	return app.ports
}

// Pool returns the packet buffer pool, or nil before Setup.
func (app *App) Pool() pktmbuf.Pool {
	return app.pool
}

// Forwarder returns the Forwarder, or nil before Setup.
func (app *App) Forwarder() *Forwarder {
	return app.fwd
}

// Reporter returns the statistics Reporter, or nil before Setup.
func (app *App) Reporter() *Reporter {
	return app.reporter
}

// Setup initializes the runtime, creates the packet buffer pool, and brings up both ports.
// It returns *ConfigError, *eal.InitError, *ethdev.SetupError, or *pktmbuf.PoolError.
// On failure, ports already touched have been torn down.
func (app *App) Setup() (e error) {
	if e = app.cfg.Validate(); e != nil {
		return e
	}
	args, e := app.cfg.EAL.Args()
	if e != nil {
		return &ConfigError{Err: e}
	}
	if e = eal.Init(app.backend, args); e != nil {
		return e
	}

	ports := app.cfg.Ports[:]
	if e = app.ports.Validate(ports...); e != nil {
		logger.Error("invalid port", zap.Error(e))
		return e
	}

	if app.pool, e = pktmbuf.NewPool(app.backend, PoolName, app.cfg.Mempool); e != nil {
		logger.Error("pool error", zap.Error(e))
		return e
	}

	if e = app.ports.BringUpAll(ports, app.pool); e != nil {
		must.Close(app.pool)
		app.pool = nil
		return e
	}

	app.fwd = NewForwarder(app.ports.Port(app.cfg.Ports[0]), app.ports.Port(app.cfg.Ports[1]), ForwarderConfig{
		BurstSize: app.cfg.BurstSize,
		Dump:      app.cfg.Dump,
	})
	app.reporter = NewReporter(app.cfg.ReportInterval.DurationOr(DefaultReportInterval), app.pool)
	for _, sink := range app.sinks {
		app.reporter.AddSink(sink)
	}
	logger.Info("forwarder ready",
		zap.Stringer("a", app.fwd.ports[0]),
		zap.Stringer("b", app.fwd.ports[1]),
		zap.Int("burst", app.fwd.cfg.BurstSize),
	)
	return nil
}

// Run executes forwarding rounds until shutdown is requested.
// A round in progress always completes. Forwarding errors are logged and do not stop the loop.
func (app *App) Run(shutdown *Shutdown) error {
	if app.fwd == nil {
		return ErrNotReady
	}

	suppressed, logNext := 0, true
	app.reporter.Tick(time.Now(), app.fwd)
	for !shutdown.Requested() {
		if e := app.fwd.ForwardRound(); e != nil {
			if logNext {
				logger.Warn("forward error", zap.Error(e))
				logNext = false
			} else {
				suppressed++
			}
		}
		if app.reporter.Tick(time.Now(), app.fwd) {
			if suppressed > 0 {
				logger.Warn("forward errors suppressed", zap.Int("count", suppressed))
			}
			suppressed, logNext = 0, true
		}
	}
	logger.Info("shutdown requested")
	return nil
}

// Close reports final statistics, tears down ports, and releases the pool.
// It is safe to call Close more than once.
func (app *App) Close() error {
	if app.closed {
		return nil
	}
	app.closed = true

	if app.fwd != nil {
		s := app.reporter.Report(time.Now(), app.fwd)
		logger.Info("final statistics",
			zap.Object("a", s.Ports[0].Counters),
			zap.Object("b", s.Ports[1].Counters),
		)
	}
	app.ports.TearDownAll()

	if app.pool == nil {
		return nil
	}
	if n := app.pool.CountInUse(); n > 0 {
		logger.Warn("packet buffers not returned", zap.Int("in-use", n))
	}
	e := app.pool.Close()
	app.pool = nil
	return e
}
