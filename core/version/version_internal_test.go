package version

import (
	"runtime/debug"
	"testing"

	"github.com/usnistgov/pktfwd/core/testenv"
)

func TestFromBuildSettings(t *testing.T) {
	assert, _ := testenv.MakeAR(t)

	dflt := Version{Version: "development"}
	assert.Equal(dflt, fromBuildSettings(nil, dflt))
	assert.Equal(dflt, fromBuildSettings([]debug.BuildSetting{
		{Key: "vcs", Value: "hg"},
	}, dflt))

	v := fromBuildSettings([]debug.BuildSetting{
		{Key: "vcs", Value: "git"},
		{Key: "vcs.revision", Value: "0123456789abcdef0123456789abcdef01234567"},
		{Key: "vcs.time", Value: "2026-03-04T05:06:07Z"},
		{Key: "vcs.modified", Value: "true"},
	}, dflt)
	assert.Equal("v0.0.0-20260304050607-0123456789ab-dirty", v.Version)
	assert.Equal("v0.0.0-20260304050607-0123456789ab-dirty", v.String())
	assert.True(v.Dirty)
}
