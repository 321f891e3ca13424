package l2fwd

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Counters contains per-port forwarding counters.
// All counters are monotonically non-decreasing; they wrap on overflow.
type Counters struct {
	RxPackets uint64 `json:"rxPackets"` // packets received on this port and forwarded
	RxBytes   uint64 `json:"rxBytes"`   // octets received on this port and forwarded
	RxErrors  uint64 `json:"rxErrors"`  // failed RX bursts
	TxPackets uint64 `json:"txPackets"` // packets accepted by TX queue of this port
	TxBytes   uint64 `json:"txBytes"`   // octets accepted by TX queue of this port
	TxErrors  uint64 `json:"txErrors"`  // failed TX bursts
	TxDropped uint64 `json:"txDropped"` // packets not accepted by a truncated TX burst
}

func (cnt Counters) String() string {
	return fmt.Sprintf("RX %dP %dB %dE, TX %dP %dB %dE %dD",
		cnt.RxPackets, cnt.RxBytes, cnt.RxErrors, cnt.TxPackets, cnt.TxBytes, cnt.TxErrors, cnt.TxDropped)
}

// MarshalLogObject implements zapcore.ObjectMarshaler interface.
func (cnt Counters) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint64("rx-packets", cnt.RxPackets)
	enc.AddUint64("rx-bytes", cnt.RxBytes)
	enc.AddUint64("rx-errors", cnt.RxErrors)
	enc.AddUint64("tx-packets", cnt.TxPackets)
	enc.AddUint64("tx-bytes", cnt.TxBytes)
	enc.AddUint64("tx-errors", cnt.TxErrors)
	enc.AddUint64("tx-dropped", cnt.TxDropped)
	return nil
}
