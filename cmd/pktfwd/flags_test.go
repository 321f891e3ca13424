package main

import (
	"io"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/usnistgov/pktfwd/app/l2fwd"
	"github.com/usnistgov/pktfwd/appinit"
	"github.com/usnistgov/pktfwd/core/testenv"
)

func parseConfig(args ...string) (cfg l2fwd.Config, e error) {
	a := &cli.App{
		Flags:  flags,
		Writer: io.Discard,
		Action: func(c *cli.Context) error {
			cfg, e = makeConfig(c)
			return nil
		},
	}
	if err := a.Run(append([]string{"pktfwd"}, args...)); err != nil {
		return cfg, err
	}
	return cfg, e
}

func TestMakeConfig(t *testing.T) {
	assert, require := testenv.MakeAR(t)

	cfg, e := parseConfig("--port1", "0", "--port2", "1")
	require.NoError(e)
	assert.Equal([2]uint16{0, 1}, cfg.Ports)
	assert.Equal(32, cfg.BurstSize)
	assert.False(cfg.Dump)

	filename := testenv.WriteTempFile(t, "pktfwd.json", []byte(`{
		"eal": { "extraFlags": "--no-huge" },
		"burstSize": 16,
		"reportInterval": 3000
	}`))
	cfg, e = parseConfig("--port1=3", "--port2=2", "--config", filename,
		"--eal=--log-level=8", "--burst=64", "--interval=500ms", "--dump")
	require.NoError(e)
	assert.Equal([2]uint16{3, 2}, cfg.Ports)
	assert.Equal("--no-huge --log-level=8", cfg.EAL.ExtraFlags)
	assert.Equal(64, cfg.BurstSize)
	assert.Equal(500*time.Millisecond, cfg.ReportInterval.Duration())
	assert.True(cfg.Dump)

	cfg, e = parseConfig("--port1=0", "--port2=1", "--config", filename)
	require.NoError(e)
	assert.Equal(16, cfg.BurstSize)
	assert.Equal(3*time.Second, cfg.ReportInterval.Duration())
}

func TestMakeConfigInvalid(t *testing.T) {
	assert, _ := testenv.MakeAR(t)

	_, e := parseConfig("--port1=0")
	assert.Error(e)

	badFile := testenv.WriteTempFile(t, "bad.json", []byte(`{ "burstSize": "many" }`))
	for _, args := range [][]string{
		{"--port1=0", "--port2=70000"},
		{"--port1=0", "--port2=1", "--burst=600"},
		{"--port1=0", "--port2=1", "--interval=0s"},
		{"--port1=0", "--port2=1", "--config", badFile},
		{"--port1=0", "--port2=1", "--config", "/nonexistent/pktfwd.json"},
	} {
		_, e := parseConfig(args...)
		assert.Equal(appinit.EXIT_BAD_CONFIG, appinit.ExitCode(e), "%v", args)
	}
}

func TestRunBadCommandLine(t *testing.T) {
	assert, _ := testenv.MakeAR(t)

	w := app.Writer
	app.Writer = io.Discard
	defer func() { app.Writer = w }()

	assert.Equal(appinit.EXIT_BAD_CONFIG, run([]string{"pktfwd", "--port2", "1", "--driver", "ring"}))
	assert.Equal(appinit.EXIT_BAD_CONFIG, run([]string{"pktfwd", "--port1", "abc", "--port2", "1"}))
	assert.Equal(appinit.EXIT_BAD_CONFIG, run([]string{"pktfwd", "--port1", "0", "--port2", "1", "--no-such-flag"}))
}
