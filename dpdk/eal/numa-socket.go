package eal

import (
	"encoding/json"
	"strconv"
)

// MaxNumaNodes is the maximum NUMA socket ID plus one.
const MaxNumaNodes = 32

// NumaSocket represents a NUMA socket.
// Zero value is SOCKET_ID_ANY.
type NumaSocket struct {
	v int // socket ID + 1
}

// NumaSocketFromID converts socket ID to NumaSocket.
// Negative or out of range ID gives SOCKET_ID_ANY.
func NumaSocketFromID(id int) (socket NumaSocket) {
	if id < 0 || id >= MaxNumaNodes {
		return socket
	}
	socket.v = id + 1
	return socket
}

// ID returns NUMA socket ID, or -1 for SOCKET_ID_ANY.
func (socket NumaSocket) ID() int {
	return socket.v - 1
}

// IsAny returns true if this represents SOCKET_ID_ANY.
func (socket NumaSocket) IsAny() bool {
	return socket.v == 0
}

func (socket NumaSocket) String() string {
	if socket.IsAny() {
		return "any"
	}
	return strconv.Itoa(socket.ID())
}

// MarshalJSON encodes NUMA socket as number.
// Any is encoded as null.
func (socket NumaSocket) MarshalJSON() ([]byte, error) {
	if socket.IsAny() {
		return json.Marshal(nil)
	}
	return json.Marshal(socket.ID())
}

// UnmarshalJSON decodes NUMA socket from number or null.
func (socket *NumaSocket) UnmarshalJSON(p []byte) error {
	var id *int
	if e := json.Unmarshal(p, &id); e != nil {
		return e
	}
	if id == nil {
		*socket = NumaSocket{}
	} else {
		*socket = NumaSocketFromID(*id)
	}
	return nil
}
