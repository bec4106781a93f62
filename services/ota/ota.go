// Package ota provides the update collaborator: the panel's own host name,
// used to filter triggers, and a blocking update run.
package ota

import (
	"context"

	"panelcode-go/errcode"
	"panelcode-go/types"
	"panelcode-go/x/conv"
)

// DefaultPrefix precedes the hex device suffix in host names.
const DefaultPrefix = "panel-"

type Updater interface {
	HostName() string
	// WaitForOTA joins the network with creds and blocks until an update
	// completes, fails or ctx ends.
	WaitForOTA(ctx context.Context, creds types.WifiCredentials) error
}

// HostName is prefix followed by the last three id bytes in uppercase hex.
// Shorter ids are left-padded with zero bytes.
func HostName(prefix string, id []byte) string {
	var s [3]byte
	if len(id) >= 3 {
		copy(s[:], id[len(id)-3:])
	} else {
		copy(s[3-len(id):], id)
	}
	return HostNameFromSuffix(prefix, s)
}

// HostNameFromSuffix formats a trigger suffix the same way.
func HostNameFromSuffix(prefix string, s [3]byte) string {
	b := make([]byte, 0, len(prefix)+6)
	b = append(b, prefix...)
	return string(conv.AppendHex(b, s[:]))
}

// Unsupported has a host name but cannot update. Used on boards without a
// network interface.
type Unsupported struct{ Name string }

func (u Unsupported) HostName() string { return u.Name }

func (Unsupported) WaitForOTA(context.Context, types.WifiCredentials) error {
	return errcode.Unsupported
}
