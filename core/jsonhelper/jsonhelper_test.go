package jsonhelper_test

import (
	"strings"
	"testing"

	"github.com/usnistgov/pktfwd/core/jsonhelper"
	"github.com/usnistgov/pktfwd/core/testenv"
)

type sample struct {
	A int `json:"a"`
}

func TestDecode(t *testing.T) {
	assert, require := testenv.MakeAR(t)

	var v sample
	require.NoError(jsonhelper.Decode(strings.NewReader(`{"a":1,"b":2}`), &v))
	assert.Equal(1, v.A)

	assert.Error(jsonhelper.Decode(strings.NewReader(`{"a":1,"b":2}`), &v, jsonhelper.DisallowUnknownFields))
	assert.ErrorIs(jsonhelper.Decode(strings.NewReader(`{"a":1} {"a":2}`), &v), jsonhelper.ErrTrailingData)
}
