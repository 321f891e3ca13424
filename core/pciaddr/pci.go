// Package pciaddr parses and validates PCI addresses.
package pciaddr

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrPCIAddress indicates the input PCI address is invalid.
var ErrPCIAddress = errors.New("bad PCI address")

var rePCI = regexp.MustCompile(`^(?:([[:xdigit:]]{1,4}):)?([[:xdigit:]]{1,2}):([[:xdigit:]]{1,2})\.([0-7])$`)

// PCIAddress represents a PCI address.
type PCIAddress struct {
	Domain   uint16
	Bus      uint8
	Slot     uint8
	Function uint8
}

// String returns the PCI address in 0000:00:01.0 format, as expected by EAL -a flag.
func (a PCIAddress) String() string {
	return fmt.Sprintf("%04x:%02x:%02x.%01x", a.Domain, a.Bus, a.Slot, a.Function)
}

// Valid determines whether the address can be represented in text.
func (a PCIAddress) Valid() bool {
	return a.Slot < 0x20 && a.Function < 0x08
}

// MarshalText implements encoding.TextMarshaler interface.
func (a PCIAddress) MarshalText() (text []byte, e error) {
	if !a.Valid() {
		return nil, ErrPCIAddress
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler interface.
func (a *PCIAddress) UnmarshalText(text []byte) (e error) {
	*a, e = Parse(string(text))
	return e
}

// Parse parses a PCI address.
// The domain may be omitted, in which case it is zero.
func Parse(input string) (a PCIAddress, e error) {
	m := rePCI.FindStringSubmatch(input)
	if m == nil {
		return PCIAddress{}, fmt.Errorf("%w %q", ErrPCIAddress, input)
	}
	if m[1] == "" {
		m[1] = "0"
	}

	var fields [4]uint64
	for i, bits := range [4]int{16, 8, 8, 4} {
		if fields[i], e = strconv.ParseUint(m[i+1], 16, bits); e != nil {
			return PCIAddress{}, fmt.Errorf("%w %q", ErrPCIAddress, input)
		}
	}
	a = PCIAddress{
		Domain:   uint16(fields[0]),
		Bus:      uint8(fields[1]),
		Slot:     uint8(fields[2]),
		Function: uint8(fields[3]),
	}
	if !a.Valid() {
		return PCIAddress{}, fmt.Errorf("%w %q", ErrPCIAddress, input)
	}
	return a, nil
}

// MustParse parses a PCI address, and panics on failure.
func MustParse(input string) (a PCIAddress) {
	a, e := Parse(input)
	if e != nil {
		panic(e)
	}
	return a
}
