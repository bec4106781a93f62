//go:build !tinygo

package ota

import (
	"context"
	"os"
	"os/exec"
	"time"

	"panelcode-go/errcode"
	"panelcode-go/types"
)

// Exec runs an external updater command. Credentials and host name are
// passed as PANEL_WIFI_SSID, PANEL_WIFI_PASSWORD and PANEL_HOSTNAME.
type Exec struct {
	Name string
	Path string
	Args []string
}

func (e *Exec) HostName() string { return e.Name }

func (e *Exec) WaitForOTA(ctx context.Context, creds types.WifiCredentials) error {
	if !creds.Valid() {
		return errcode.NoCredentials
	}
	if e.Path == "" {
		return &errcode.E{C: errcode.Unsupported, Op: "ota.exec", Msg: "no updater command"}
	}
	cmd := exec.CommandContext(ctx, e.Path, e.Args...)
	cmd.WaitDelay = time.Second
	cmd.Env = append(os.Environ(),
		"PANEL_WIFI_SSID="+creds.SSID,
		"PANEL_WIFI_PASSWORD="+creds.Password,
		"PANEL_HOSTNAME="+e.Name,
	)
	out, err := cmd.CombinedOutput()
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		return errcode.Timeout
	case err != nil:
		return &errcode.E{C: errcode.Error, Op: "ota.exec", Msg: lastLine(out), Err: err}
	}
	return nil
}

func lastLine(b []byte) string {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] == '\n' {
			return string(b[i+1:])
		}
	}
	return string(b)
}
