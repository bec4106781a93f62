package panel

import (
	"panelcode-go/can"
	"panelcode-go/services/ota"
)

type Route uint8

const (
	RouteDrop Route = iota
	RouteOTA
	RouteWifi
	RouteLED
)

func (r Route) String() string {
	switch r {
	case RouteOTA:
		return "ota"
	case RouteWifi:
		return "wifi"
	case RouteLED:
		return "led"
	default:
		return "drop"
	}
}

// Classify picks the single handler for an identifier. The extended flag is
// not considered.
func Classify(id uint32) Route {
	switch id {
	case can.IDOTATrigger:
		return RouteOTA
	case can.IDWifiConfig:
		return RouteWifi
	case can.IDLEDState:
		return RouteLED
	}
	return RouteDrop
}

// TargetHostName returns the host name an OTA trigger addresses.
func TargetHostName(prefix string, f can.Frame) (string, bool) {
	s, ok := can.ParseOTATrigger(f)
	if !ok {
		return "", false
	}
	return ota.HostNameFromSuffix(prefix, s), true
}
