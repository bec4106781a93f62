package panel

import (
	"testing"

	"panelcode-go/can"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		id   uint32
		want Route
	}{
		{0x00, RouteOTA},
		{0x01, RouteWifi},
		{0x1B, RouteLED},
		{0x18, RouteDrop}, // our own toggles echoed back
		{0x15, RouteDrop},
		{0x7FF, RouteDrop},
	}
	for _, tt := range tests {
		if got := Classify(tt.id); got != tt.want {
			t.Errorf("Classify(0x%X) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestTargetHostName(t *testing.T) {
	got, ok := TargetHostName("panel-", can.OTATrigger([3]byte{0xA1, 0x0B, 0xC3}))
	if !ok || got != "panel-A10BC3" {
		t.Fatalf("TargetHostName = %q, %v", got, ok)
	}
	if _, ok := TargetHostName("panel-", can.MustNew(can.IDOTATrigger, 1, 2)); ok {
		t.Fatal("two-byte trigger accepted")
	}
}
