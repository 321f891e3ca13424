package testenv

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// BytesFromHex converts a hexadecimal string to a byte slice.
// The octets must be written as upper case.
// All characters other than [0-9A-F] are considered comments and stripped.
func BytesFromHex(input string) []byte {
	s := strings.Map(func(ch rune) rune {
		if strings.ContainsRune("0123456789ABCDEF", ch) {
			return ch
		}
		return -1
	}, input)
	decoded, e := hex.DecodeString(s)
	if e != nil {
		panic(fmt.Errorf("hex.DecodeString error %w", e))
	}
	return decoded
}

// MakeFrame returns an Ethernet frame of the given total length.
// It carries broadcast destination, a locally administered source, EtherType 0x88B5,
// and a payload filled with seq.
func MakeFrame(length int, seq byte) []byte {
	if length < 14 {
		length = 14
	}
	frame := make([]byte, length)
	copy(frame, BytesFromHex("FFFFFFFFFFFF 020000000001 88B5"))
	for i := 14; i < length; i++ {
		frame[i] = seq
	}
	return frame
}
