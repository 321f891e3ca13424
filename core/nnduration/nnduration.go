// Package nnduration provides a non-negative duration type for JSON configuration.
package nnduration

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

var errNegative = errors.New("duration cannot be negative")

func parse(input string, unit time.Duration) (value uint64, e error) {
	if d, e := time.ParseDuration(input); e == nil {
		if d < 0 {
			return 0, errNegative
		}
		return uint64(d / unit), nil
	}
	return strconv.ParseUint(input, 10, 64)
}

// Milliseconds is a duration in milliseconds unit.
// It can be decoded from a JSON integer (milliseconds) or a string accepted by time.ParseDuration.
type Milliseconds uint64

// Duration converts to time.Duration.
func (d Milliseconds) Duration() time.Duration {
	return time.Duration(d) * time.Millisecond
}

// DurationOr converts non-zero value to time.Duration, or returns dflt.
func (d Milliseconds) DurationOr(dflt Milliseconds) time.Duration {
	if d == 0 {
		return dflt.Duration()
	}
	return d.Duration()
}

// MarshalJSON implements json.Marshaler interface.
func (d Milliseconds) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(d))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (d *Milliseconds) UnmarshalJSON(p []byte) error {
	value, e := parse(strings.Trim(string(p), `"`), time.Millisecond)
	if e != nil {
		return e
	}
	*d = Milliseconds(value)
	return nil
}

// FromDuration converts time.Duration to Milliseconds, truncating toward zero.
// Negative durations become zero.
func FromDuration(d time.Duration) Milliseconds {
	if d < 0 {
		return 0
	}
	return Milliseconds(d / time.Millisecond)
}
