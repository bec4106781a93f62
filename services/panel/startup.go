package panel

import (
	"context"
	"time"

	"panelcode-go/errcode"
	"panelcode-go/services/store"
)

// Step is one beat of the startup light show: LEDs in Mask (bit i is LED i)
// are lit for On, then all LEDs are dark for Gap.
type Step struct {
	Mask uint8
	On   time.Duration
	Gap  time.Duration
}

const (
	beatQ  = 350 * time.Millisecond
	beatH  = 700 * time.Millisecond
	beatE  = 175 * time.Millisecond
	beatDQ = 525 * time.Millisecond
	beatW  = 1400 * time.Millisecond

	gapShort = 25 * time.Millisecond
	gapStd   = 50 * time.Millisecond
	gapLong  = 100 * time.Millisecond
)

// StartupShow is the chorus of Jingle Bells at roughly 150 BPM.
var StartupShow = []Step{
	{0b00010001, beatQ, gapStd},
	{0b00100010, beatQ, gapStd},
	{0b11111111, beatH, gapStd},

	{0b01000100, beatQ, gapStd},
	{0b10001000, beatQ, gapStd},
	{0b11111111, beatH, gapStd},

	{0b10000001, beatQ, gapStd},
	{0b01000010, beatQ, gapStd},
	{0b00100100, beatDQ, gapStd},
	{0b00011000, beatE, gapShort},
	{0b11111111, beatW, gapLong},

	{0b10000001, beatQ, gapStd},
	{0b11000011, beatQ, gapStd},
	{0b11100111, beatDQ, gapStd},
	{0b11111111, beatE, gapShort},

	{0b00011000, beatQ, gapStd},
	{0b00111100, beatQ, gapStd},
	{0b01111110, beatE, gapShort},
	{0b11111111, beatE, gapShort},

	{0b01000010, beatQ, gapStd},
	{0b10000001, beatQ, gapStd},
	{0b11000011, beatQ, gapStd},
	{0b01100110, beatQ, gapStd},
	{0b11111111, beatW, gapLong},
}

// Play runs steps on leds, leaving them all off. It stops early when sleep
// returns an error.
func Play(ctx context.Context, leds *LEDSink, steps []Step, sleep func(context.Context, time.Duration) error) error {
	defer leds.SetMask(0)
	for _, st := range steps {
		leds.SetMask(st.Mask)
		if err := sleep(ctx, st.On); err != nil {
			return err
		}
		leds.SetMask(0)
		if err := sleep(ctx, st.Gap); err != nil {
			return err
		}
	}
	return nil
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// playOnce plays the show unless the store records that it already ran,
// then records it. Returns whether the show was played.
func (s *Service) playOnce(ctx context.Context) (bool, error) {
	ns, err := s.store.Open(store.NSPanel, false)
	if err != nil {
		return false, err
	}
	defer ns.Close()

	played, err := ns.GetBool(store.KeyJBPlayed)
	if err != nil && errcode.Of(err) != errcode.NotFound {
		return false, err
	}
	if played {
		return false, nil
	}
	if err := Play(ctx, s.leds, s.show, s.sleep); err != nil {
		return false, err
	}
	return true, ns.PutBool(store.KeyJBPlayed, true)
}
