// Package hal holds the GPIO abstractions the panel drives. Concrete pins
// come from hal/platform, selected by build tags.
package hal

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Number() int
}

// PinFactory supplies GPIO pins by the board's GP numbering.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}

// Line is a GPIO pin with a logical polarity applied. Active reports the
// logical state; Drive sets it.
type Line struct {
	Pin       GPIOPin
	ActiveLow bool
}

func (l Line) Active() bool { return l.Pin.Get() != l.ActiveLow }

func (l Line) Drive(on bool) { l.Pin.Set(on != l.ActiveLow) }

// PullFor returns the idle pull for an input of the given polarity.
func PullFor(activeLow bool) Pull {
	if activeLow {
		return PullUp
	}
	return PullDown
}

// Inputs configures pins as inputs with polarity-appropriate pulls.
func Inputs(f PinFactory, numbers []int, activeLow bool) ([]Line, error) {
	out := make([]Line, 0, len(numbers))
	for _, n := range numbers {
		p, ok := f.ByNumber(n)
		if !ok {
			return nil, unknownPin(n)
		}
		if err := p.ConfigureInput(PullFor(activeLow)); err != nil {
			return nil, err
		}
		out = append(out, Line{Pin: p, ActiveLow: activeLow})
	}
	return out, nil
}

// Outputs configures pins as outputs, all logically off.
func Outputs(f PinFactory, numbers []int, activeLow bool) ([]Line, error) {
	out := make([]Line, 0, len(numbers))
	for _, n := range numbers {
		p, ok := f.ByNumber(n)
		if !ok {
			return nil, unknownPin(n)
		}
		if err := p.ConfigureOutput(activeLow); err != nil {
			return nil, err
		}
		out = append(out, Line{Pin: p, ActiveLow: activeLow})
	}
	return out, nil
}
