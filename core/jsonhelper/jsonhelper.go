// Package jsonhelper provides JSON-related helper functions.
package jsonhelper

import (
	"encoding/json"
	"errors"
	"io"
)

// Option sets an option on json.Decoder.
type Option func(*json.Decoder)

// DisallowUnknownFields causes json.Decoder to reject unknown struct fields.
var DisallowUnknownFields Option = func(d *json.Decoder) { d.DisallowUnknownFields() }

// ErrTrailingData indicates the input contains more than one JSON value.
var ErrTrailingData = errors.New("unexpected data after JSON value")

// Decode reads exactly one JSON value from r into ptr.
func Decode(r io.Reader, ptr any, options ...Option) error {
	decoder := json.NewDecoder(r)
	for _, option := range options {
		option(decoder)
	}
	if e := decoder.Decode(ptr); e != nil {
		return e
	}
	if decoder.More() {
		return ErrTrailingData
	}
	return nil
}
