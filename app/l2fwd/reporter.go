package l2fwd

import (
	"time"

	"go.uber.org/zap"

	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

// PortSnapshot contains statistics of one port.
type PortSnapshot struct {
	Port     uint16        `json:"port"`
	Name     string        `json:"name"`
	Counters Counters      `json:"counters"`
	Hw       *ethdev.Stats `json:"hw,omitempty"`
}

// Snapshot contains statistics of both ports and the packet buffer pool.
type Snapshot struct {
	Time          time.Time       `json:"time"`
	Ports         [2]PortSnapshot `json:"ports"`
	PoolAvailable int             `json:"poolAvailable"`
	PoolInUse     int             `json:"poolInUse"`
}

// Sink receives published snapshots.
type Sink interface {
	PublishSnapshot(s Snapshot)
}

// SinkFunc adapts a function as Sink.
type SinkFunc func(s Snapshot)

// PublishSnapshot implements Sink interface.
func (f SinkFunc) PublishSnapshot(s Snapshot) {
	f(s)
}

// Reporter periodically reports Forwarder counters.
// It must be invoked from the goroutine that runs the Forwarder.
type Reporter struct {
	interval time.Duration
	pool     pktmbuf.Pool
	sinks    []Sink
	last     time.Time
}

// NewReporter creates a Reporter.
// pool may be nil.
func NewReporter(interval time.Duration, pool pktmbuf.Pool) *Reporter {
	if interval <= 0 {
		interval = DefaultReportInterval.Duration()
	}
	return &Reporter{
		interval: interval,
		pool:     pool,
	}
}

// Interval returns the reporting interval.
func (r *Reporter) Interval() time.Duration {
	return r.interval
}

// AddSink registers a Sink.
func (r *Reporter) AddSink(sink Sink) {
	r.sinks = append(r.sinks, sink)
}

// Report logs a snapshot of Forwarder counters and publishes it to sinks.
func (r *Reporter) Report(now time.Time, fwd *Forwarder) (s Snapshot) {
	s.Time = now
	cnt := fwd.Counters()
	for i, port := range fwd.Ports() {
		ps := PortSnapshot{
			Port:     port.ID(),
			Name:     port.Name(),
			Counters: cnt[i],
		}
		if hw, ok := port.Stats(); ok {
			ps.Hw = &hw
		}
		s.Ports[i] = ps
	}
	if r.pool != nil {
		s.PoolAvailable = r.pool.CountAvailable()
		s.PoolInUse = r.pool.CountInUse()
	}
	r.last = now

	for _, ps := range s.Ports {
		fields := []zap.Field{zap.Uint16("port", ps.Port), zap.Object("cnt", ps.Counters)}
		if ps.Hw != nil {
			fields = append(fields, zap.Stringer("hw", *ps.Hw))
		}
		logger.Info("statistics", fields...)
	}
	if r.pool != nil {
		logger.Debug("pool usage", zap.Int("available", s.PoolAvailable), zap.Int("in-use", s.PoolInUse))
	}

	for _, sink := range r.sinks {
		sink.PublishSnapshot(s)
	}
	return s
}

// Tick reports if at least one interval has elapsed since the last report.
// The first Tick only starts the clock.
func (r *Reporter) Tick(now time.Time, fwd *Forwarder) bool {
	if r.last.IsZero() {
		r.last = now
		return false
	}
	if now.Sub(r.last) < r.interval {
		return false
	}
	r.Report(now, fwd)
	return true
}
