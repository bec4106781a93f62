// Package conv holds allocation-free formatting helpers usable on MCU builds
// without fmt.
package conv

const hexd = "0123456789ABCDEF"

// AppendHex appends b as uppercase hex, two digits per byte.
func AppendHex(dst, b []byte) []byte {
	for _, c := range b {
		dst = append(dst, hexd[c>>4], hexd[c&0x0F])
	}
	return dst
}

// AppendHexU32 appends n in uppercase hex, zero-padded to at least width
// digits.
func AppendHexU32(dst []byte, n uint32, width int) []byte {
	var tmp [8]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = hexd[n&0xF]
		n >>= 4
		if n == 0 {
			break
		}
	}
	for pad := width - (len(tmp) - i); pad > 0; pad-- {
		dst = append(dst, '0')
	}
	return append(dst, tmp[i:]...)
}
