package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"panelcode-go/bus"
	"panelcode-go/can"
	"panelcode-go/can/loop"
	"panelcode-go/can/wsgw"
	"panelcode-go/hal"
	"panelcode-go/hal/platform"
	"panelcode-go/services/config"
	"panelcode-go/services/ota"
	"panelcode-go/services/panel"
	"panelcode-go/services/store"
)

var (
	simBoard  string
	simStore  string
	simOTACmd string
	simListen string
	simNoShow bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a simulated panel in the terminal",
	Long: `Run a complete panel against simulated pins. Keys 1-8 latch the buttons
(hold a key latched past the hold time to enter brightness mode).

Without a connection flag the panel sits on a loopback bus with a stand-in
controller that answers toggles with LED state; w sends test WiFi
credentials and o sends this panel's OTA trigger. --listen exposes that
loopback bus as a websocket gateway for other panelctl instances.

Credentials persist in the --store file. OTA runs the --ota-cmd program
with PANEL_WIFI_SSID, PANEL_WIFI_PASSWORD and PANEL_HOSTNAME set.`,
	RunE: runSim,
}

func init() {
	simCmd.Flags().StringVar(&simBoard, "board", "pico", "Built-in board config")
	simCmd.Flags().StringVar(&simStore, "store", "panel-sim.cbor", "Credential store file")
	simCmd.Flags().StringVar(&simOTACmd, "ota-cmd", "", "Updater program run on OTA trigger")
	simCmd.Flags().StringVar(&simListen, "listen", "", "Serve the loopback bus at this address (e.g. :8080)")
	simCmd.Flags().BoolVar(&simNoShow, "no-show", false, "Skip the first-boot light show")
	rootCmd.AddCommand(simCmd)
}

// simRig is everything a simulated panel runs on.
type simRig struct {
	cfg     config.Panel
	tr      can.Transport
	ctl     can.Transport // nil on an external bus
	info    string
	buttons []hal.Line
	leds    []hal.Line
	name    string
	bus     *bus.Bus
	svc     *panel.Service
	closers []func()
}

func (r *simRig) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func buildRig(ctx context.Context) (*simRig, error) {
	cfg, err := config.NewConfigService().Resolve(context.WithValue(ctx, config.CtxBoardKey, simBoard))
	if err != nil {
		return nil, err
	}
	cfg.StartupShow = !simNoShow

	r := &simRig{cfg: cfg}
	if connected() {
		r.tr, r.info, err = OpenTransport(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		lb := loop.New(64)
		r.tr = lb.Attach()
		ctl := lb.Attach()
		r.ctl = ctl
		go (&controller{tr: ctl}).run(ctx)
		r.info = "loopback with controller"
		if simListen != "" {
			srv := &http.Server{
				Addr:              simListen,
				Handler:           wsgw.Handler(func() (can.Transport, error) { return lb.Attach(), nil }),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() { _ = srv.ListenAndServe() }()
			r.closers = append(r.closers, func() { _ = srv.Close() })
			r.info += ", gateway on " + simListen
		}
	}
	r.closers = append(r.closers, func() { _ = r.tr.Close() })

	kv, err := store.OpenFile(simStore)
	if err != nil {
		r.Close()
		return nil, err
	}

	pins := platform.NewHostPins()
	if r.buttons, err = hal.Inputs(pins, cfg.ButtonPins[:], cfg.ButtonActiveLow); err != nil {
		r.Close()
		return nil, err
	}
	if r.leds, err = hal.Outputs(pins, cfg.LEDPins[:], cfg.LEDActiveLow); err != nil {
		r.Close()
		return nil, err
	}

	r.name = ota.HostName(cfg.HostNamePrefix, platform.DeviceID())
	r.bus = bus.NewBus(cfg.BusQueueLen)
	r.svc, err = panel.New(cfg, panel.Deps{
		Transport: r.tr,
		Store:     kv,
		Updater:   &ota.Exec{Name: r.name, Path: simOTACmd},
		Buttons:   inputs(r.buttons),
		LEDs:      outputs(r.leds),
		Conn:      r.bus.NewConnection("panel"),
	})
	if err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func inputs(ls []hal.Line) []panel.Input {
	out := make([]panel.Input, len(ls))
	for i, l := range ls {
		out[i] = l
	}
	return out
}

func outputs(ls []hal.Line) []panel.Output {
	out := make([]panel.Output, len(ls))
	for i, l := range ls {
		out[i] = l
	}
	return out
}

func runSim(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	r, err := buildRig(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	p := tea.NewProgram(newSimModel(r), tea.WithAltScreen())

	sub := r.bus.NewConnection("tui").Subscribe(panel.TopicRoot.Append(bus.MultiLevel))
	go func() {
		for msg := range sub.Channel() {
			p.Send(busMsg{msg})
		}
	}()

	runErr := make(chan error, 1)
	go func() {
		err := r.svc.Run(ctx)
		runErr <- err
		if !errors.Is(err, context.Canceled) {
			p.Send(stoppedMsg{err})
		}
	}()

	_, err = p.Run()
	cancel()
	if rerr := <-runErr; err == nil && !errors.Is(rerr, context.Canceled) {
		err = fmt.Errorf("panel stopped: %w", rerr)
	}
	return err
}
