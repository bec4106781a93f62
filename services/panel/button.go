package panel

import (
	"panelcode-go/services/config"
)

// Input is a debounced-by-time digital input; Active is the pressed level.
type Input interface {
	Active() bool
}

type Action uint8

const (
	ActionNone Action = iota
	ActionToggle
	ActionBrightness
	ActionBrightnessEnd
)

func (a Action) String() string {
	switch a {
	case ActionToggle:
		return "toggle"
	case ActionBrightness:
		return "brightness"
	case ActionBrightnessEnd:
		return "brightness_end"
	default:
		return "none"
	}
}

// ButtonState is a snapshot of one channel.
type ButtonState struct {
	Channel          uint8
	Pressed          bool
	PressStartMs     int64
	ToggleSent       bool
	InBrightnessMode bool
	Brightness       uint8
	LastStepMs       int64
}

// Button turns one input into toggle and brightness actions. A short press
// held past the debounce time toggles once; holding past the hold threshold
// ramps brightness one step per Step until release.
type Button struct {
	ch uint8
	in Input

	debounceMs, holdMs, stepMs int64

	pressed      bool
	pressStart   int64
	toggleSent   bool
	inBrightness bool
	level        uint8
	lastStep     int64
}

func NewButton(ch uint8, in Input, t config.Timing) *Button {
	return &Button{
		ch:         ch,
		in:         in,
		debounceMs: t.Debounce.Milliseconds(),
		holdMs:     t.Hold.Milliseconds(),
		stepMs:     t.Step.Milliseconds(),
	}
}

func (b *Button) Channel() uint8 { return b.ch }

// Poll samples the input at now and returns at most one action. The level is
// meaningful for brightness actions only.
func (b *Button) Poll(now int64) (Action, uint8) {
	active := b.in.Active()

	if !b.pressed {
		if active {
			b.pressed = true
			b.pressStart = now
			b.toggleSent = false
			b.inBrightness = false
		}
		return ActionNone, 0
	}

	if !active {
		ended, last := b.inBrightness, b.level
		b.reset()
		if ended {
			return ActionBrightnessEnd, last
		}
		return ActionNone, 0
	}

	hold := now - b.pressStart
	switch {
	case b.inBrightness:
		if now-b.lastStep >= b.stepMs {
			b.lastStep = now
			b.level++ // wraps 255 -> 0
			return ActionBrightness, b.level
		}
	case hold >= b.holdMs:
		b.inBrightness = true
		b.level = 0
		b.lastStep = now
		b.toggleSent = false
	case !b.toggleSent && hold >= b.debounceMs:
		b.toggleSent = true
		return ActionToggle, 0
	}
	return ActionNone, 0
}

func (b *Button) reset() {
	b.pressed = false
	b.pressStart = 0
	b.toggleSent = false
	b.inBrightness = false
	b.level = 0
	b.lastStep = 0
}

func (b *Button) State() ButtonState {
	return ButtonState{
		Channel:          b.ch,
		Pressed:          b.pressed,
		PressStartMs:     b.pressStart,
		ToggleSent:       b.toggleSent,
		InBrightnessMode: b.inBrightness,
		Brightness:       b.level,
		LastStepMs:       b.lastStep,
	}
}
