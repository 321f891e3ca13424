package ethdev

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

// State is the lifecycle state of a port.
type State int

// State values.
const (
	StateUnused State = iota
	StateConfigured
	StateStarted
	StateClosed
)

func (st State) String() string {
	switch st {
	case StateUnused:
		return "unused"
	case StateConfigured:
		return "configured"
	case StateStarted:
		return "started"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(st))
}

// Default queue capacities.
const (
	DefaultRxQueueCapacity = 128
	DefaultTxQueueCapacity = 128
)

// Config contains port configuration.
// Every port has exactly one RX queue and one TX queue.
type Config struct {
	RxQueueCapacity int
	TxQueueCapacity int
}

func (cfg *Config) applyDefaults() {
	if cfg.RxQueueCapacity <= 0 {
		cfg.RxQueueCapacity = DefaultRxQueueCapacity
	}
	if cfg.TxQueueCapacity <= 0 {
		cfg.TxQueueCapacity = DefaultTxQueueCapacity
	}
}

// Manager brings ports up and tears them down.
// It is not thread-safe.
type Manager struct {
	drv     Driver
	cfg     Config
	states  map[uint16]State
	touched []uint16
}

// NewManager creates a Manager.
func NewManager(drv Driver, cfg Config) *Manager {
	cfg.applyDefaults()
	return &Manager{
		drv:    drv,
		cfg:    cfg,
		states: map[uint16]State{},
	}
}

// Port returns the port handle.
func (m *Manager) Port(id uint16) EthDev {
	return EthDev{drv: m.drv, id: id}
}

// State returns lifecycle state of a port.
func (m *Manager) State(port uint16) State {
	return m.states[port]
}

func (m *Manager) setState(port uint16, st State) {
	if _, ok := m.states[port]; !ok {
		m.touched = append(m.touched, port)
	}
	m.states[port] = st
}

// Validate checks that port numbers exist and are distinct.
// It returns *SetupError with StageValidate.
func (m *Manager) Validate(ports ...uint16) error {
	nAvail := m.drv.CountAvail()
	seen := map[uint16]bool{}
	for _, port := range ports {
		switch {
		case int(port) >= nAvail:
			return &SetupError{Port: port, Stage: StageValidate,
				Err: fmt.Errorf("%w (%d ports available)", ErrInvalidPort, nAvail)}
		case seen[port]:
			return &SetupError{Port: port, Stage: StageValidate, Err: ErrDuplicatePort}
		case m.states[port] != StateUnused:
			return &SetupError{Port: port, Stage: StageValidate, Err: ErrPortInUse}
		}
		seen[port] = true
	}
	return nil
}

// BringUp configures a port with one RX queue and one TX queue, and starts it.
// RX queue stores packets in pool.
// On failure, it returns *SetupError; the port is left partially configured and should be torn down.
func (m *Manager) BringUp(port uint16, pool pktmbuf.Pool) error {
	if e := m.Validate(port); e != nil {
		return e
	}
	logEntry := logger.With(zap.Uint16("port", port))
	fail := func(stage Stage, e error) error {
		logEntry.Error("port setup error", zap.Stringer("stage", stage), zap.Error(e))
		return &SetupError{Port: port, Stage: stage, Err: e}
	}

	if pool == nil {
		return fail(StageRxQueue, ErrNoPool)
	}

	if e := m.drv.Configure(port, 1, 1); e != nil {
		return fail(StageConfigure, e)
	}
	m.setState(port, StateConfigured)

	if e := m.drv.SetupRxQueue(port, 0, RxQueueConfig{
		Capacity: m.cfg.RxQueueCapacity,
		RxPool:   pool,
	}); e != nil {
		return fail(StageRxQueue, e)
	}

	if e := m.drv.SetupTxQueue(port, 0, TxQueueConfig{
		Capacity: m.cfg.TxQueueCapacity,
	}); e != nil {
		return fail(StageTxQueue, e)
	}

	if e := m.drv.Start(port); e != nil {
		return fail(StageStart, e)
	}
	m.setState(port, StateStarted)

	dev := m.Port(port)
	fields := []zap.Field{zap.String("name", dev.Name())}
	if bm, ok := dev.RxQueue(0).BurstMode(); ok {
		fields = append(fields, zap.String("rx-burst-mode", bm.Info))
	}
	if bm, ok := dev.TxQueue(0).BurstMode(); ok {
		fields = append(fields, zap.String("tx-burst-mode", bm.Info))
	}
	logEntry.Info("port started", fields...)
	return nil
}

// BringUpAll brings up several ports in order.
// If any port fails, every port touched so far is torn down before the error is returned.
func (m *Manager) BringUpAll(ports []uint16, pool pktmbuf.Pool) error {
	if e := m.Validate(ports...); e != nil {
		return e
	}
	for i, port := range ports {
		if e := m.BringUp(port, pool); e != nil {
			m.TearDown(ports[:i+1]...)
			return e
		}
	}
	return nil
}

// TearDown stops and closes ports.
// A started port is stopped and closed; a partially configured port is closed.
// Unused and closed ports are skipped, so that this is idempotent.
// Errors are logged and not returned.
func (m *Manager) TearDown(ports ...uint16) {
	for _, port := range ports {
		st := m.states[port]
		var e error
		switch st {
		case StateStarted:
			e = multierr.Append(m.drv.Stop(port), m.drv.Close(port))
		case StateConfigured:
			e = m.drv.Close(port)
		default:
			continue
		}
		m.setState(port, StateClosed)

		logEntry := logger.With(zap.Uint16("port", port), zap.Stringer("from", st))
		if e != nil {
			for _, err := range multierr.Errors(e) {
				logEntry.Warn("port teardown error", zap.Error(err))
			}
		} else {
			logEntry.Info("port closed")
		}
	}
}

// TearDownAll tears down every port this Manager has touched.
func (m *Manager) TearDownAll() {
	m.TearDown(m.touched...)
}
