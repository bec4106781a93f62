package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	Busy          Code = "busy"
	Unsupported   Code = "unsupported"
	InvalidParams Code = "invalid_params"
	UnknownPin    Code = "unknown_pin"
	Timeout       Code = "timeout"
	Closed        Code = "closed"

	// Frames and transports.
	InvalidFrame  Code = "invalid_frame"
	InvalidLength Code = "invalid_length"
	InvalidID     Code = "invalid_id"
	TxFailed      Code = "tx_failed"
	RxFailed      Code = "rx_failed"
	RxQueueFull   Code = "rx_queue_full"
	TransportInit Code = "transport_init"

	// Provisioning.
	ChecksumMismatch Code = "checksum_mismatch"
	LengthMismatch   Code = "length_mismatch"
	TooLong          Code = "too_long"

	// Storage and OTA.
	NotFound      Code = "not_found"
	ReadOnly      Code = "read_only"
	StoreFailed   Code = "store_failed"
	NoCredentials Code = "no_credentials"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap returns an *E carrying code c, the failing operation and the cause.
// A nil cause still yields a non-nil error.
func Wrap(c Code, op string, err error) error {
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		if inner := u.Unwrap(); inner != nil {
			return Of(inner)
		}
	}
	return Error
}
