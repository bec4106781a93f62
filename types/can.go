package types

import "strconv"

// TxError reports a frame the transport refused. It is never retried.
type TxError struct {
	Frame string `json:"frame"`
	Error string `json:"error"`
}

func (e TxError) String() string { return e.Frame + " " + e.Error }

type AlertKind string

const (
	AlertRxQueueFull AlertKind = "rx_queue_full"
	AlertRxError     AlertKind = "rx_error"
)

// CANAlert mirrors controller alerts: queue overflow and receive failures.
type CANAlert struct {
	Kind    AlertKind `json:"kind"`
	Dropped uint32    `json:"dropped,omitempty"` // total since boot
	Error   string    `json:"error,omitempty"`
}

func (a CANAlert) String() string {
	out := string(a.Kind)
	if a.Dropped > 0 {
		out += " dropped=" + strconv.FormatUint(uint64(a.Dropped), 10)
	}
	if a.Error != "" {
		out += " err=" + a.Error
	}
	return out
}
