package fingerprint

// Chromaprint stores bit positions as little-endian bit streams of fixed-width
// integers: 3 bits for normal values, 5 bits for exceptional extensions.

const (
	normalBits      = 3
	exceptionalBits = 5

	// maxNormalValue in a normal slot means "read the rest from the exceptional stream".
	maxNormalValue = 1<<normalBits - 1
)

// packedSize is the number of bytes needed to hold n values of width bits.
func packedSize(n int, width uint) int {
	return (n*int(width) + 7) / 8
}

// unpack returns every complete width-bit value stored in data, least
// significant bits first. Trailing bits that do not form a whole value are dropped.
func unpack(data []byte, width uint) []byte {
	n := len(data) * 8 / int(width)
	out := make([]byte, n)
	mask := uint32(1)<<width - 1

	var acc uint32
	var have uint
	j := 0
	for _, b := range data {
		acc |= uint32(b) << have
		have += 8
		for have >= width && j < n {
			out[j] = byte(acc & mask)
			acc >>= width
			have -= width
			j++
		}
	}
	return out
}

// pack is the inverse of unpack. Values are masked to width bits.
func pack(values []byte, width uint) []byte {
	out := make([]byte, 0, packedSize(len(values), width))
	mask := uint32(1)<<width - 1

	var acc uint32
	var have uint
	for _, v := range values {
		acc |= (uint32(v) & mask) << have
		have += width
		for have >= 8 {
			out = append(out, byte(acc))
			acc >>= 8
			have -= 8
		}
	}
	if have > 0 {
		out = append(out, byte(acc))
	}
	return out
}
