package l2fwd

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/usnistgov/pktfwd/core/jsonhelper"
	"github.com/usnistgov/pktfwd/core/nnduration"
	"github.com/usnistgov/pktfwd/dpdk/ealconfig"
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
	"github.com/usnistgov/pktfwd/dpdk/pktmbuf"
)

// Default configuration values.
const (
	DefaultPoolCapacity   = 8192
	DefaultPoolDataroom   = 2048
	DefaultPoolCacheSize  = 256
	DefaultReportInterval = nnduration.Milliseconds(1000)
)

//go:embed config.schema.json
var configSchema []byte

var configSchemaLoader = gojsonschema.NewBytesLoader(configSchema)

// QueueConfig contains queue configuration.
type QueueConfig struct {
	// Capacity is the number of descriptors.
	Capacity int `json:"capacity,omitempty"`
}

// Config contains application configuration.
type Config struct {
	EAL     ealconfig.Config   `json:"eal"`
	Mempool pktmbuf.PoolConfig `json:"mempool"`
	RxQueue QueueConfig        `json:"rxQueue"`
	TxQueue QueueConfig        `json:"txQueue"`

	// BurstSize is the maximum number of packets per RX or TX burst.
	BurstSize int `json:"burstSize,omitempty"`

	// ReportInterval is the statistics reporting interval.
	ReportInterval nnduration.Milliseconds `json:"reportInterval,omitempty"`

	// Dump enables packet summaries at debug level.
	Dump bool `json:"dump,omitempty"`

	// Ports contains the two port numbers to forward between.
	// They are given on the command line.
	Ports [2]uint16 `json:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Mempool: pktmbuf.PoolConfig{
			Capacity:  DefaultPoolCapacity,
			Dataroom:  DefaultPoolDataroom,
			CacheSize: DefaultPoolCacheSize,
		},
		RxQueue:        QueueConfig{Capacity: ethdev.DefaultRxQueueCapacity},
		TxQueue:        QueueConfig{Capacity: ethdev.DefaultTxQueueCapacity},
		BurstSize:      DefaultBurstSize,
		ReportInterval: DefaultReportInterval,
	}
}

// Validate checks the configuration.
// It returns *ConfigError on failure.
func (cfg Config) Validate() error {
	if e := cfg.Mempool.Validate(); e != nil {
		return &ConfigError{Err: fmt.Errorf("mempool: %w", e)}
	}
	if cfg.BurstSize < 1 || cfg.BurstSize > MaxBurstSize {
		return &ConfigError{Err: fmt.Errorf("burstSize must be between 1 and %d", MaxBurstSize)}
	}
	if cfg.RxQueue.Capacity < 1 || cfg.TxQueue.Capacity < 1 {
		return &ConfigError{Err: fmt.Errorf("queue capacity must be positive")}
	}
	if _, e := cfg.EAL.Args(); e != nil {
		return &ConfigError{Err: fmt.Errorf("eal: %w", e)}
	}
	return nil
}

func (cfg Config) portConfig() ethdev.Config {
	return ethdev.Config{
		RxQueueCapacity: cfg.RxQueue.Capacity,
		TxQueueCapacity: cfg.TxQueue.Capacity,
	}
}

type schemaError struct {
	*gojsonschema.Result
}

func (e schemaError) Error() string {
	var b strings.Builder
	fmt.Fprintln(&b, "JSON document failed schema validation:")
	for _, desc := range e.Result.Errors() {
		fmt.Fprintln(&b, "-", desc)
	}
	return strings.TrimSpace(b.String())
}

// LoadConfig reads a JSON document on top of the default configuration.
// The document is checked against the configuration schema, and unknown fields are rejected.
// It returns *ConfigError on failure.
func LoadConfig(r io.Reader) (cfg Config, e error) {
	cfg = DefaultConfig()
	doc, e := io.ReadAll(r)
	if e != nil {
		return cfg, &ConfigError{Err: e}
	}

	result, e := gojsonschema.Validate(configSchemaLoader, gojsonschema.NewBytesLoader(doc))
	if e != nil {
		return cfg, &ConfigError{Err: e}
	}
	if !result.Valid() {
		return cfg, &ConfigError{Err: schemaError{result}}
	}

	if e = jsonhelper.Decode(bytes.NewReader(doc), &cfg, jsonhelper.DisallowUnknownFields); e != nil {
		return cfg, &ConfigError{Err: e}
	}
	return cfg, nil
}
