package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"go.bug.st/serial"
	"golang.org/x/term"

	"panelcode-go/can"
	"panelcode-go/can/slcan"
	"panelcode-go/can/socketcan"
	"panelcode-go/can/wsgw"
)

const (
	envGatewayPassword = "PANEL_GW_PASSWORD"
	envWifiPassword    = "PANEL_WIFI_PASSWORD"
)

// errNoConnection is returned when no connection flag was given.
var errNoConnection = fmt.Errorf("one of --iface, --port or --url must be specified")

// OpenSerialPort opens an SLCAN adapter's serial device.
func OpenSerialPort(name string, baud int) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return port, nil
}

// Secret returns env when set, otherwise prompts on stderr without echo.
func Secret(env, prompt string) (string, error) {
	if v := os.Getenv(env); v != "" {
		return v, nil
	}
	fmt.Fprint(os.Stderr, prompt+": ")
	b, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Not a terminal; read a plain line.
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(prompt), err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(line), nil
	}
	fmt.Fprintln(os.Stderr)
	return string(b), nil
}

// OpenTransport opens the transport selected by the connection flags and
// describes it for status lines.
func OpenTransport(ctx context.Context) (can.Transport, string, error) {
	switch {
	case ifaceName != "":
		t, err := socketcan.Open(ifaceName, socketcan.Options{})
		if err != nil {
			return nil, "", err
		}
		return t, "SocketCAN: " + ifaceName, nil

	case portName != "":
		port, err := OpenSerialPort(portName, baudRate)
		if err != nil {
			return nil, "", err
		}
		t, err := slcan.Open(port, slcan.Options{BitrateKbps: bitrateKbps})
		if err != nil {
			port.Close()
			return nil, "", err
		}
		return t, fmt.Sprintf("SLCAN: %s @ %d baud, %d kbit/s", portName, baudRate, bitrateKbps), nil

	case wsURL != "":
		o := wsgw.DialOptions{Username: wsUsername, Timeout: 10 * time.Second, InsecureSkipVerify: wsNoSSLVerify}
		if wsUsername != "" {
			pw, err := Secret(envGatewayPassword, "Password")
			if err != nil {
				return nil, "", err
			}
			o.Password = pw
		}
		dctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		t, err := wsgw.Dial(dctx, wsURL, o)
		if err != nil {
			return nil, "", err
		}
		return t, "Gateway: " + wsURL, nil
	}
	return nil, "", errNoConnection
}

// connected reports whether any connection flag was given.
func connected() bool {
	return ifaceName != "" || portName != "" || wsURL != ""
}
