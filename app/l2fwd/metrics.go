package l2fwd

import (
	"strconv"
	"strings"
	"sync"

	"github.com/pascaldekloe/name"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsNamespace is the prefix of exported metric names.
const MetricsNamespace = "pktfwd"

var counterFields = []struct {
	field string
	help  string
	get   func(cnt Counters) uint64
}{
	{"RxPackets", "Packets received and forwarded.", func(cnt Counters) uint64 { return cnt.RxPackets }},
	{"RxBytes", "Octets received and forwarded.", func(cnt Counters) uint64 { return cnt.RxBytes }},
	{"RxErrors", "Failed RX bursts.", func(cnt Counters) uint64 { return cnt.RxErrors }},
	{"TxPackets", "Packets accepted by TX queue.", func(cnt Counters) uint64 { return cnt.TxPackets }},
	{"TxBytes", "Octets accepted by TX queue.", func(cnt Counters) uint64 { return cnt.TxBytes }},
	{"TxErrors", "Failed TX bursts.", func(cnt Counters) uint64 { return cnt.TxErrors }},
	{"TxDropped", "Packets dropped due to truncated TX bursts.", func(cnt Counters) uint64 { return cnt.TxDropped }},
}

// MetricsCollector exports the most recent snapshot as Prometheus metrics.
// It is a Sink and a prometheus.Collector.
type MetricsCollector struct {
	counters      []*prometheus.Desc
	poolAvailable *prometheus.Desc
	poolInUse     *prometheus.Desc

	mutex sync.Mutex
	s     Snapshot
	ok    bool
}

var (
	_ Sink                 = (*MetricsCollector)(nil)
	_ prometheus.Collector = (*MetricsCollector)(nil)
)

// NewMetricsCollector creates a MetricsCollector.
func NewMetricsCollector() *MetricsCollector {
	c := &MetricsCollector{
		poolAvailable: prometheus.NewDesc(
			prometheus.BuildFQName(MetricsNamespace, "pool", "available"),
			"Packet buffers available for allocation.", nil, nil),
		poolInUse: prometheus.NewDesc(
			prometheus.BuildFQName(MetricsNamespace, "pool", "in_use"),
			"Packet buffers in use.", nil, nil),
	}
	for _, f := range counterFields {
		c.counters = append(c.counters, prometheus.NewDesc(
			prometheus.BuildFQName(MetricsNamespace, "port", strings.ToLower(name.SnakeCase(f.field))+"_total"),
			f.help, []string{"port"}, nil))
	}
	return c
}

// PublishSnapshot implements Sink interface.
func (c *MetricsCollector) PublishSnapshot(s Snapshot) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.s, c.ok = s, true
}

// Describe implements prometheus.Collector interface.
func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range c.counters {
		ch <- desc
	}
	ch <- c.poolAvailable
	ch <- c.poolInUse
}

// Collect implements prometheus.Collector interface.
func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	c.mutex.Lock()
	s, ok := c.s, c.ok
	c.mutex.Unlock()
	if !ok {
		return
	}

	for _, ps := range s.Ports {
		port := strconv.Itoa(int(ps.Port))
		for i, f := range counterFields {
			ch <- prometheus.MustNewConstMetric(c.counters[i], prometheus.CounterValue, float64(f.get(ps.Counters)), port)
		}
	}
	ch <- prometheus.MustNewConstMetric(c.poolAvailable, prometheus.GaugeValue, float64(s.PoolAvailable))
	ch <- prometheus.MustNewConstMetric(c.poolInUse, prometheus.GaugeValue, float64(s.PoolInUse))
}
