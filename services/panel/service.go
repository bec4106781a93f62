// Package panel is the wall panel core: eight button state machines, the
// WiFi credential receiver, the LED sink and the OTA trigger, all driven
// from a single goroutine by Service.Run.
package panel

import (
	"context"
	"sync/atomic"
	"time"

	"panelcode-go/bus"
	"panelcode-go/can"
	"panelcode-go/errcode"
	"panelcode-go/services/config"
	"panelcode-go/services/ota"
	"panelcode-go/services/store"
	"panelcode-go/types"
	"panelcode-go/x/timex"
)

// Deps are the collaborators a Service drives. Sleep is optional and only
// paces the startup show.
type Deps struct {
	Transport can.Transport
	Store     store.Store
	Updater   ota.Updater
	Buttons   []Input
	LEDs      []Output
	Clock     timex.Clock
	Conn      *bus.Connection
	Sleep     func(context.Context, time.Duration) error
}

type Service struct {
	cfg config.Panel

	tr      can.Transport
	store   store.Store
	updater ota.Updater
	clock   timex.Clock
	conn    *bus.Connection
	sleep   func(context.Context, time.Duration) error
	show    []Step

	buttons []*Button
	wifi    Session
	leds    *LEDSink

	mode    atomic.Value // types.Mode
	dropped atomic.Uint32
}

func New(cfg config.Panel, d Deps) (*Service, error) {
	switch {
	case d.Transport == nil || d.Store == nil || d.Updater == nil || d.Conn == nil:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "panel.new", Msg: "missing collaborator"}
	case len(d.Buttons) != can.Channels || len(d.LEDs) != can.Channels:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "panel.new", Msg: "need 8 buttons and 8 LEDs"}
	}
	if d.Clock == nil {
		d.Clock = timex.NewMono()
	}
	if d.Sleep == nil {
		d.Sleep = SleepContext
	}
	s := &Service{
		cfg:     cfg,
		tr:      d.Transport,
		store:   d.Store,
		updater: d.Updater,
		clock:   d.Clock,
		conn:    d.Conn,
		sleep:   d.Sleep,
		show:    StartupShow,
		leds:    NewLEDSink(d.LEDs),
	}
	for i, in := range d.Buttons {
		s.buttons = append(s.buttons, NewButton(uint8(i), in, cfg.Timing))
	}
	s.mode.Store(types.ModeBoot)
	return s, nil
}

func (s *Service) Mode() types.Mode { return s.mode.Load().(types.Mode) }

// Dropped is the number of inbound frames lost to a full receive queue.
func (s *Service) Dropped() uint32 { return s.dropped.Load() }

func (s *Service) setMode(m types.Mode) {
	s.mode.Store(m)
	s.publish(TopicMode, m, true)
}

// Run initialises the LEDs, plays the first-boot show and then services
// buttons and inbound frames until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	s.setMode(types.ModeBoot)
	s.leds.SetMask(0)
	s.publish(TopicLED, types.LEDState{}, true)

	if s.cfg.StartupShow {
		played, err := s.playOnce(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			s.publish(TopicStartup, "show failed: "+err.Error(), false)
		case played:
			s.publish(TopicStartup, "show played", false)
		}
	}

	rxq := make(chan can.Frame, s.cfg.RxQueueLen)
	go s.receive(ctx, rxq)

	tick := time.NewTicker(s.cfg.PollInterval)
	defer tick.Stop()

	s.setMode(types.ModeRun)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			s.pollButtons()
		case f := <-rxq:
			s.handle(ctx, f)
		}
	}
}

// receive moves frames from the transport to rxq. A full queue drops the
// frame and raises an alert; it never blocks the transport.
func (s *Service) receive(ctx context.Context, rxq chan<- can.Frame) {
	for {
		f, err := s.tr.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil || errcode.Of(err) == errcode.Closed {
				return
			}
			s.publish(TopicAlert, types.CANAlert{Kind: types.AlertRxError, Error: err.Error()}, false)
			if SleepContext(ctx, 100*time.Millisecond) != nil {
				return
			}
			continue
		}
		select {
		case rxq <- f:
		default:
			n := s.dropped.Add(1)
			s.publish(TopicAlert, types.CANAlert{Kind: types.AlertRxQueueFull, Dropped: n}, false)
		}
	}
}

func (s *Service) pollButtons() {
	now := s.clock.NowMs()
	for _, b := range s.buttons {
		act, level := b.Poll(now)
		ch := b.Channel()
		switch act {
		case ActionToggle:
			s.send(can.Toggle(ch))
			s.publish(TopicButton(ch, EvToggle), types.ToggleEvent{Channel: ch}, false)
		case ActionBrightness:
			s.send(can.Brightness(ch, level))
			s.publish(TopicButton(ch, EvBrightness), types.BrightnessEvent{Channel: ch, Level: level}, false)
		case ActionBrightnessEnd:
			s.publish(TopicButton(ch, EvBrightnessEnd), types.BrightnessEnd{Channel: ch, Level: level}, false)
		}
	}
}

// send transmits once. Failures are reported and never retried.
func (s *Service) send(f can.Frame) {
	if err := s.tr.Send(f); err != nil {
		s.publish(TopicTxError, types.TxError{Frame: f.String(), Error: err.Error()}, false)
	}
}

func (s *Service) handle(ctx context.Context, f can.Frame) {
	switch Classify(f.ID) {
	case RouteOTA:
		s.handleOTA(ctx, f)
	case RouteWifi:
		s.handleWifi(f)
	case RouteLED:
		if s.leds.Apply(f) {
			s.publish(TopicLED, types.LEDState{On: s.leds.State()}, true)
		}
	}
}

func (s *Service) handleWifi(f can.Frame) {
	r := s.wifi.Handle(f)
	switch r.Outcome {
	case OutcomeStarted:
		s.publish(TopicWifi, types.WifiState{Phase: types.WifiStarted}, false)
	case OutcomeReject:
		s.publish(TopicWifi, types.WifiState{Phase: types.WifiRejected, Error: string(r.Err)}, false)
	case OutcomeCommit:
		if err := store.PutCredentials(s.store, r.Creds.SSID, r.Creds.Password); err != nil {
			s.publish(TopicWifi, types.WifiState{Phase: types.WifiRejected, Error: string(errcode.StoreFailed)}, false)
			return
		}
		s.publish(TopicWifi, types.WifiState{Phase: types.WifiCommitted, SSID: r.Creds.SSID}, false)
	}
}

// handleOTA is the only blocking handler. A trigger for another panel has no
// side effects at all.
func (s *Service) handleOTA(ctx context.Context, f can.Frame) {
	target, ok := TargetHostName(s.cfg.HostNamePrefix, f)
	if !ok || target != s.updater.HostName() {
		return
	}
	ssid, password, err := store.Credentials(s.store)
	creds := types.WifiCredentials{SSID: ssid, Password: password}
	if err != nil || !creds.Valid() {
		s.publish(TopicOTA, types.OTAState{Phase: types.OTASkipped, Target: target, Error: string(errcode.NoCredentials)}, false)
		return
	}

	s.setMode(types.ModeOTA)
	s.publish(TopicOTA, types.OTAState{Phase: types.OTAStarted, Target: target}, false)
	octx, cancel := context.WithTimeout(ctx, s.cfg.OTATimeout)
	err = s.updater.WaitForOTA(octx, creds)
	cancel()
	if err != nil {
		s.publish(TopicOTA, types.OTAState{Phase: types.OTAFailed, Target: target, Error: err.Error()}, false)
	} else {
		s.publish(TopicOTA, types.OTAState{Phase: types.OTADone, Target: target}, false)
	}
	if ctx.Err() == nil {
		s.setMode(types.ModeRun)
	}
}

func (s *Service) publish(t bus.Topic, payload any, retained bool) {
	s.conn.Publish(s.conn.NewMessage(t, payload, retained))
}
