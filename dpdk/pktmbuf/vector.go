package pktmbuf

import (
	"go.uber.org/multierr"
)

// Vector is a vector of packet buffers.
type Vector []Packet

// Close releases the packets.
// Nil elements are skipped.
func (vec Vector) Close() (e error) {
	for i, pkt := range vec {
		if pkt != nil {
			e = multierr.Append(e, pkt.Close())
			vec[i] = nil
		}
	}
	return e
}

// LenTotal returns total packet length of all packets.
func (vec Vector) LenTotal() (sum int) {
	for _, pkt := range vec {
		if pkt != nil {
			sum += pkt.Len()
		}
	}
	return sum
}
