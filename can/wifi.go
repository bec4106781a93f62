package can

import "panelcode-go/errcode"

// WiFi provisioning subtypes carried in data[0] of IDWifiConfig frames.
const (
	WifiStart    byte = 0x01 // [type, ssidLen, passLen, ssidChunks, passChunks]
	WifiSSID     byte = 0x02 // [type, chunkIndex, up to 6 bytes]
	WifiPassword byte = 0x03 // [type, chunkIndex, up to 6 bytes]
	WifiEnd      byte = 0x04 // [type, xor checksum]
)

// Credential limits and chunk geometry.
const (
	MaxSSIDLen     = 32
	MaxPasswordLen = 63
	ChunkHeaderLen = 2
	ChunkDataLen   = MaxDataLen - ChunkHeaderLen
)

// Checksum is the XOR of every byte of every part, in order.
func Checksum(parts ...[]byte) byte {
	var c byte
	for _, p := range parts {
		for _, b := range p {
			c ^= b
		}
	}
	return c
}

// WifiCredentialFrames encodes a full provisioning session: Start, SSID
// chunks, password chunks and End, in transmission order.
func WifiCredentialFrames(ssid, password string) ([]Frame, error) {
	if len(ssid) > MaxSSIDLen {
		return nil, &errcode.E{C: errcode.TooLong, Op: "wifi", Msg: "ssid"}
	}
	if len(password) > MaxPasswordLen {
		return nil, &errcode.E{C: errcode.TooLong, Op: "wifi", Msg: "password"}
	}
	s, p := []byte(ssid), []byte(password)
	sc, pc := chunkCount(len(s)), chunkCount(len(p))

	out := make([]Frame, 0, 2+sc+pc)
	out = append(out, MustNew(IDWifiConfig, WifiStart, byte(len(s)), byte(len(p)), byte(sc), byte(pc)))
	out = appendChunks(out, WifiSSID, s)
	out = appendChunks(out, WifiPassword, p)
	out = append(out, MustNew(IDWifiConfig, WifiEnd, Checksum(s, p)))
	return out, nil
}

func chunkCount(n int) int {
	return (n + ChunkDataLen - 1) / ChunkDataLen
}

func appendChunks(out []Frame, kind byte, b []byte) []Frame {
	for i := 0; len(b) > 0; i++ {
		n := len(b)
		if n > ChunkDataLen {
			n = ChunkDataLen
		}
		data := make([]byte, 0, MaxDataLen)
		data = append(data, kind, byte(i))
		data = append(data, b[:n]...)
		out = append(out, MustNew(IDWifiConfig, data...))
		b = b[n:]
	}
	return out
}
