package config

import (
	"strconv"
	"time"

	"github.com/andreyvit/tinyjson"
)

// Decode applies a JSON override document to Default(). Absent keys keep
// their defaults; unknown keys and wrongly typed values are rejected. The
// result is not validated.
func Decode(raw []byte) (p Panel, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = invalid("json", panicText(r))
		}
	}()

	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return Panel{}, invalid("json", "config is not a JSON object")
	}
	p = Default()
	d := decoder{}
	for k, v := range m {
		switch k {
		case "buttons":
			d.pinGroup(k, v, &p.ButtonPins, &p.ButtonActiveLow)
		case "leds":
			d.pinGroup(k, v, &p.LEDPins, &p.LEDActiveLow)
		case "timing_ms":
			d.object(k, v, func(f string, v any) {
				switch f {
				case "debounce":
					p.Timing.Debounce = d.ms(k+"."+f, v)
				case "hold":
					p.Timing.Hold = d.ms(k+"."+f, v)
				case "step":
					p.Timing.Step = d.ms(k+"."+f, v)
				case "poll":
					p.PollInterval = d.ms(k+"."+f, v)
				default:
					d.unknown(k + "." + f)
				}
			})
		case "ota":
			d.object(k, v, func(f string, v any) {
				switch f {
				case "timeout_s":
					p.OTATimeout = time.Duration(d.integer(k+"."+f, v)) * time.Second
				case "hostname_prefix":
					p.HostNamePrefix = d.text(k+"."+f, v)
				default:
					d.unknown(k + "." + f)
				}
			})
		case "queues":
			d.object(k, v, func(f string, v any) {
				switch f {
				case "rx":
					p.RxQueueLen = d.integer(k+"."+f, v)
				case "bus":
					p.BusQueueLen = d.integer(k+"."+f, v)
				default:
					d.unknown(k + "." + f)
				}
			})
		case "startup_show":
			p.StartupShow = d.boolean(k, v)
		case "can":
			d.can(v, &p.CAN)
		default:
			d.unknown(k)
		}
	}
	if d.err != nil {
		return Panel{}, d.err
	}
	return p, nil
}

// decoder keeps the first error so field handlers stay one-liners.
type decoder struct{ err error }

func (d *decoder) fail(field, msg string) {
	if d.err == nil {
		d.err = invalid(field, msg)
	}
}

func (d *decoder) unknown(field string) { d.fail(field, "unknown key") }

func (d *decoder) object(field string, v any, each func(string, any)) {
	m, ok := v.(map[string]any)
	if !ok {
		d.fail(field, "want object")
		return
	}
	for k, fv := range m {
		each(k, fv)
	}
}

func (d *decoder) integer(field string, v any) int {
	switch n := v.(type) {
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case interface{ Int64() (int64, error) }:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	case string: // number literal kept as text
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	d.fail(field, "want integer")
	return 0
}

func (d *decoder) ms(field string, v any) time.Duration {
	return time.Duration(d.integer(field, v)) * time.Millisecond
}

func (d *decoder) text(field string, v any) string {
	s, ok := v.(string)
	if !ok {
		d.fail(field, "want string")
	}
	return s
}

func (d *decoder) boolean(field string, v any) bool {
	b, ok := v.(bool)
	if !ok {
		d.fail(field, "want bool")
	}
	return b
}

func (d *decoder) pins(field string, v any, out *[8]int) {
	list, ok := v.([]any)
	if !ok || len(list) != len(out) {
		d.fail(field, "want 8 pin numbers")
		return
	}
	for i, e := range list {
		out[i] = d.integer(field+"["+strconv.Itoa(i)+"]", e)
	}
}

func (d *decoder) pinGroup(field string, v any, pins *[8]int, activeLow *bool) {
	d.object(field, v, func(f string, v any) {
		switch f {
		case "pins":
			d.pins(field+"."+f, v, pins)
		case "active_low":
			*activeLow = d.boolean(field+"."+f, v)
		default:
			d.unknown(field + "." + f)
		}
	})
}

func (d *decoder) can(v any, c *CAN) {
	d.object("can", v, func(f string, v any) {
		field := "can." + f
		switch f {
		case "driver":
			c.Driver = d.text(field, v)
		case "sck":
			c.SCK = d.integer(field, v)
		case "sdo":
			c.SDO = d.integer(field, v)
		case "sdi":
			c.SDI = d.integer(field, v)
		case "cs":
			c.CS = d.integer(field, v)
		case "spi_hz":
			c.SPIHz = uint32(d.integer(field, v))
		case "bitrate_kbps":
			c.BitrateKbps = d.integer(field, v)
		case "crystal_mhz":
			c.CrystalMHz = d.integer(field, v)
		case "uart":
			c.UART = d.text(field, v)
		case "tx":
			c.TX = d.integer(field, v)
		case "rx":
			c.RX = d.integer(field, v)
		case "baud":
			c.Baud = uint32(d.integer(field, v))
		default:
			d.unknown(field)
		}
	})
}

func panicText(r any) string {
	switch v := r.(type) {
	case error:
		return v.Error()
	case string:
		return v
	}
	return "malformed document"
}

