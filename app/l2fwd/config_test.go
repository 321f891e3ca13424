package l2fwd_test

import (
	"strings"
	"testing"
	"time"

	"github.com/usnistgov/pktfwd/app/l2fwd"
	"github.com/usnistgov/pktfwd/dpdk/ethdev"
)

func TestDefaultConfig(t *testing.T) {
	assert, _ := makeAR(t)

	cfg := l2fwd.DefaultConfig()
	assert.Equal(8192, cfg.Mempool.Capacity)
	assert.Equal(2048, cfg.Mempool.Dataroom)
	assert.Equal(256, cfg.Mempool.CacheSize)
	assert.Equal(ethdev.DefaultRxQueueCapacity, cfg.RxQueue.Capacity)
	assert.Equal(ethdev.DefaultTxQueueCapacity, cfg.TxQueue.Capacity)
	assert.Equal(32, cfg.BurstSize)
	assert.Equal(time.Second, cfg.ReportInterval.Duration())
	assert.NoError(cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	assert, require := makeAR(t)

	cfg, e := l2fwd.LoadConfig(strings.NewReader(`{
		"eal": { "cores": [2, 3], "memChannels": 4, "procType": "primary" },
		"mempool": { "capacity": 4095 },
		"txQueue": { "capacity": 512 },
		"burstSize": 64,
		"reportInterval": "2500ms",
		"dump": true
	}`))
	require.NoError(e)
	assert.Equal([]int{2, 3}, cfg.EAL.Cores)
	assert.Equal(4095, cfg.Mempool.Capacity)
	assert.Equal(2048, cfg.Mempool.Dataroom)
	assert.Equal(128, cfg.RxQueue.Capacity)
	assert.Equal(512, cfg.TxQueue.Capacity)
	assert.Equal(64, cfg.BurstSize)
	assert.Equal(2500*time.Millisecond, cfg.ReportInterval.Duration())
	assert.True(cfg.Dump)
	assert.NoError(cfg.Validate())

	cfg, e = l2fwd.LoadConfig(strings.NewReader(`{}`))
	require.NoError(e)
	assert.Equal(l2fwd.DefaultConfig(), cfg)

	cfg, e = l2fwd.LoadConfig(strings.NewReader(`{ "reportInterval": 750 }`))
	require.NoError(e)
	assert.Equal(750*time.Millisecond, cfg.ReportInterval.Duration())
}

func TestLoadConfigInvalid(t *testing.T) {
	assert, _ := makeAR(t)

	for _, doc := range []string{
		``,
		`[]`,
		`{ "burstSize": 0 }`,
		`{ "burstSize": 513 }`,
		`{ "mempool": { "capacity": -1 } }`,
		`{ "mempool": { "cacheSize": 1024 } }`,
		`{ "mempool": { "dataroom": 65408 } }`,
		`{ "rxQueue": { "capacity": 0 } }`,
		`{ "eal": { "procType": "other" } }`,
		`{ "eal": { "unknown": 1 } }`,
		`{ "reportInterval": -5 }`,
		`{ "ports": [0, 1] }`,
		`{ "burstSize": 32 } { "burstSize": 64 }`,
	} {
		_, e := l2fwd.LoadConfig(strings.NewReader(doc))
		var cfgErr *l2fwd.ConfigError
		assert.ErrorAs(e, &cfgErr, "%s", doc)
	}
}

func TestConfigValidate(t *testing.T) {
	assert, _ := makeAR(t)

	cfg := l2fwd.DefaultConfig()
	cfg.Mempool.CacheSize = 9000
	assert.Error(cfg.Validate())

	cfg = l2fwd.DefaultConfig()
	cfg.TxQueue.Capacity = 0
	assert.Error(cfg.Validate())

	cfg = l2fwd.DefaultConfig()
	fromJSON(`{ "filePrefix": "bad prefix!" }`, &cfg.EAL)
	assert.Error(cfg.Validate())
}
