//go:build rp2040 || rp2350

package main

import (
	"context"
	"runtime"
	"time"

	"panelcode-go/bus"
	"panelcode-go/hal"
	"panelcode-go/hal/platform"
	"panelcode-go/services/config"
	"panelcode-go/services/logger"
	"panelcode-go/services/ota"
	"panelcode-go/services/panel"
	"panelcode-go/services/store"
)

// board selects the built-in config; override with
// -ldflags "-X main.board=pico-slcan".
var board = "pico"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot, board", board)
	printMem()

	ctx := context.WithValue(context.Background(), config.CtxBoardKey, board)

	cfgSvc := config.NewConfigService()
	cfg, err := cfgSvc.Resolve(ctx)
	if err != nil {
		halt("config", err)
	}

	b := bus.NewBus(cfg.BusQueueLen)
	log := &logger.Service{W: platform.LogWriter(cfg.CAN), Heartbeat: 30 * time.Second}
	_ = log.Start(ctx, b.NewConnection("logger"))
	cfgSvc.Publish(b.NewConnection(cfgSvc.Name), cfg)

	pins := platform.Pins()
	buttons, err := hal.Inputs(pins, cfg.ButtonPins[:], cfg.ButtonActiveLow)
	if err != nil {
		halt("buttons", err)
	}
	leds, err := hal.Outputs(pins, cfg.LEDPins[:], cfg.LEDActiveLow)
	if err != nil {
		halt("leds", err)
	}

	var kv store.Store
	if fs, err := platform.OpenStore(); err != nil {
		println("[main] flash store unavailable, using RAM:", err.Error())
		kv = store.NewMemory()
	} else {
		kv = fs
	}

	tr, err := platform.OpenCAN(cfg.CAN)
	if err != nil {
		halt("can", err)
	}
	println("[main] can up:", cfg.CAN.Driver, cfg.CAN.BitrateKbps, "kbps")

	name := ota.HostName(cfg.HostNamePrefix, platform.DeviceID())
	println("[main] hostname", name)

	svc, err := panel.New(cfg, panel.Deps{
		Transport: tr,
		Store:     kv,
		Updater:   ota.Unsupported{Name: name},
		Buttons:   inputs(buttons),
		LEDs:      outputs(leds),
		Conn:      b.NewConnection("panel"),
	})
	if err != nil {
		halt("panel", err)
	}
	printMem()
	if err := svc.Run(ctx); err != nil {
		halt("run", err)
	}
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

// halt reports a fatal setup error forever.
func halt(stage string, err error) {
	for {
		println("[main] halted in", stage+":", err.Error())
		time.Sleep(5 * time.Second)
	}
}

// printMem prints a compact snapshot of TinyGo runtime memory stats.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"mallocs:", uint32(ms.Mallocs),
		"frees:", uint32(ms.Frees),
	)
}
