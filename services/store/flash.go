package store

import (
	"encoding/binary"
	"hash/crc32"

	"panelcode-go/errcode"
)

// BlockDevice is the subset of machine.Flash the flash backend needs.
// Offsets are relative to the start of the data area.
type BlockDevice interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Size() int64
	WriteBlockSize() int64
	EraseBlockSize() int64
	EraseBlocks(start, length int64) error
}

var flashMagic = [4]byte{'P', 'N', 'L', '1'}

const flashHeaderLen = 12 // magic, payload length, crc32

// Record tags.
const (
	recString byte = 's'
	recBool   byte = 'b'
)

// OpenFlash returns a store persisted at the start of dev's data area.
// A blank or corrupt area reads as an empty store.
func OpenFlash(dev BlockDevice) (*KV, error) {
	kv := &KV{}
	var hdr [flashHeaderLen]byte
	if _, err := dev.ReadAt(hdr[:], 0); err != nil {
		return nil, errcode.Wrap(errcode.StoreFailed, "flash.read", err)
	}
	n := binary.LittleEndian.Uint32(hdr[4:8])
	if [4]byte(hdr[0:4]) == flashMagic && int64(n) <= dev.Size()-flashHeaderLen {
		body := make([]byte, n)
		if _, err := dev.ReadAt(body, flashHeaderLen); err != nil {
			return nil, errcode.Wrap(errcode.StoreFailed, "flash.read", err)
		}
		if crc32.ChecksumIEEE(body) == binary.LittleEndian.Uint32(hdr[8:12]) {
			kv.img, _ = decodeImage(body)
		}
	}
	kv.img.ensure()
	kv.persist = func(im image) error { return writeFlash(dev, encodeImage(im)) }
	return kv, nil
}

func writeFlash(dev BlockDevice, body []byte) error {
	total := int64(flashHeaderLen + len(body))
	if total > dev.Size() {
		return errcode.TooLong
	}
	buf := make([]byte, roundUp(total, dev.WriteBlockSize()))
	copy(buf[0:4], flashMagic[:])
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(body)))
	binary.LittleEndian.PutUint32(buf[8:12], crc32.ChecksumIEEE(body))
	copy(buf[flashHeaderLen:], body)

	eb := dev.EraseBlockSize()
	if err := dev.EraseBlocks(0, roundUp(int64(len(buf)), eb)/eb); err != nil {
		return err
	}
	_, err := dev.WriteAt(buf, 0)
	return err
}

func roundUp(n, to int64) int64 {
	if to <= 1 {
		return n
	}
	return (n + to - 1) / to * to
}

// encodeImage lays records out as tag, ns, key, value with u8 length
// prefixes (u16 for string values).
func encodeImage(im image) []byte {
	var out []byte
	for ns, m := range im.Strings {
		for k, v := range m {
			out = append(out, recString)
			out = appendShort(out, ns)
			out = appendShort(out, k)
			out = binary.LittleEndian.AppendUint16(out, uint16(len(v)))
			out = append(out, v...)
		}
	}
	for ns, m := range im.Bools {
		for k, v := range m {
			out = append(out, recBool)
			out = appendShort(out, ns)
			out = appendShort(out, k)
			if v {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out
}

func appendShort(out []byte, s string) []byte {
	out = append(out, byte(len(s)))
	return append(out, s...)
}

func decodeImage(b []byte) (image, error) {
	var im image
	im.ensure()
	for len(b) > 0 {
		tag := b[0]
		b = b[1:]
		ns, rest, ok := readShort(b)
		if !ok {
			return im, errcode.InvalidLength
		}
		key, rest, ok := readShort(rest)
		if !ok {
			return im, errcode.InvalidLength
		}
		switch tag {
		case recString:
			if len(rest) < 2 {
				return im, errcode.InvalidLength
			}
			n := int(binary.LittleEndian.Uint16(rest))
			rest = rest[2:]
			if len(rest) < n {
				return im, errcode.InvalidLength
			}
			if im.Strings[ns] == nil {
				im.Strings[ns] = make(map[string]string)
			}
			im.Strings[ns][key] = string(rest[:n])
			b = rest[n:]
		case recBool:
			if len(rest) < 1 {
				return im, errcode.InvalidLength
			}
			if im.Bools[ns] == nil {
				im.Bools[ns] = make(map[string]bool)
			}
			im.Bools[ns][key] = rest[0] != 0
			b = rest[1:]
		default:
			return im, errcode.InvalidFrame
		}
	}
	return im, nil
}

func readShort(b []byte) (string, []byte, bool) {
	if len(b) < 1 || len(b) < 1+int(b[0]) {
		return "", nil, false
	}
	n := int(b[0])
	return string(b[1 : 1+n]), b[1+n:], true
}
