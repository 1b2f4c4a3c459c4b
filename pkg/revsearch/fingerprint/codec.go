package fingerprint

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	headerSize = 4

	// MaxLength is the largest vector the 24-bit header can describe.
	MaxLength = 1<<24 - 1

	// DefaultAlgorithm is the algorithm id fpcalc writes by default (TEST2).
	DefaultAlgorithm byte = 1
)

// ErrDecode is matched by every error returned from Decode.
var ErrDecode = errors.New("fingerprint: decode failed")

// DecodeError describes why a fingerprint record could not be decoded.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decoding fingerprint: %s: %v", e.Reason, e.Err)
	}
	return "decoding fingerprint: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDecode) hold for any *DecodeError.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func decodeErr(reason string, err error) error {
	return &DecodeError{Reason: reason, Err: err}
}

// Decode parses a fingerprint record (the compressed, URL-safe base64 text
// printed by fpcalc) into a Vector. Surrounding whitespace and base64 padding
// are ignored. A record that declares zero values yields an empty Vector.
func Decode(raw []byte) (Vector, error) {
	v, _, err := DecodeWithAlgorithm(raw)
	return v, err
}

// DecodeWithAlgorithm is Decode that also returns the algorithm id stored in
// the record header.
func DecodeWithAlgorithm(raw []byte) (Vector, byte, error) {
	if !utf8.Valid(raw) {
		return nil, 0, decodeErr("record is not valid UTF-8", nil)
	}
	text := strings.TrimRight(strings.TrimSpace(string(raw)), "=")

	data, err := base64.RawURLEncoding.DecodeString(text)
	if err != nil {
		return nil, 0, decodeErr("invalid base64", err)
	}
	return decompress(data)
}

// Encode produces the textual record for v, the exact inverse of Decode.
func Encode(v Vector, algorithm byte) ([]byte, error) {
	if len(v) > MaxLength {
		return nil, fmt.Errorf("encoding fingerprint: %d values exceed the %d value limit", len(v), MaxLength)
	}
	data := compress(v, algorithm)
	out := make([]byte, base64.RawURLEncoding.EncodedLen(len(data)))
	base64.RawURLEncoding.Encode(out, data)
	return out, nil
}

// ------------------------ compressed layout ------------------------
//
// [algorithm:1][count:3 big-endian][normal bits (3-bit packed)][exceptional bits (5-bit packed)]
//
// Each value is XORed with its predecessor, then written as the gaps between
// its set bit positions (1-based, ascending) followed by a 0 terminator.
// Gaps >= 7 are stored as 7 in the normal stream plus (gap-7) in the
// exceptional stream.

func decompress(data []byte) (Vector, byte, error) {
	if len(data) < headerSize {
		return nil, 0, decodeErr(fmt.Sprintf("record is %d bytes, shorter than the %d byte header", len(data), headerSize), nil)
	}
	algorithm := data[0]
	count := int(data[1])<<16 | int(data[2])<<8 | int(data[3])
	if count == 0 {
		return Vector{}, algorithm, nil
	}
	body := data[headerSize:]

	bits := unpack(body, normalBits)
	found, exceptional, end := 0, 0, -1
	for i, b := range bits {
		if b == 0 {
			found++
			if found == count {
				end = i + 1
				break
			}
		} else if b == maxNormalValue {
			exceptional++
		}
	}
	if end < 0 {
		return nil, algorithm, decodeErr(fmt.Sprintf("not enough normal bits for %d values (found %d)", count, found), nil)
	}
	bits = bits[:end]

	offset := packedSize(end, normalBits)
	if len(body) < offset+packedSize(exceptional, exceptionalBits) {
		return nil, algorithm, decodeErr("not enough exceptional bits", nil)
	}
	if exceptional > 0 {
		ext := unpack(body[offset:], exceptionalBits)
		j := 0
		for i, b := range bits {
			if b == maxNormalValue {
				bits[i] += ext[j]
				j++
			}
		}
	}

	out := make(Vector, count)
	var value uint32
	lastBit, i := 0, 0
	for _, b := range bits {
		if b == 0 {
			if i > 0 {
				value ^= out[i-1]
			}
			out[i] = value
			value, lastBit = 0, 0
			i++
			continue
		}
		lastBit += int(b)
		if lastBit > 32 {
			return nil, algorithm, decodeErr(fmt.Sprintf("bit position %d out of range in value %d", lastBit, i), nil)
		}
		value |= 1 << (lastBit - 1)
	}
	return out, algorithm, nil
}

func compress(v Vector, algorithm byte) []byte {
	normal := make([]byte, 0, len(v)*8)
	var exceptional []byte

	var prev uint32
	for i, x := range v {
		value := x
		if i > 0 {
			value ^= prev
		}
		prev = x

		lastBit := 0
		for bit := 1; value != 0; bit++ {
			if value&1 != 0 {
				gap := bit - lastBit
				if gap >= maxNormalValue {
					normal = append(normal, maxNormalValue)
					exceptional = append(exceptional, byte(gap-maxNormalValue))
				} else {
					normal = append(normal, byte(gap))
				}
				lastBit = bit
			}
			value >>= 1
		}
		normal = append(normal, 0)
	}

	n := len(v)
	out := make([]byte, 0, headerSize+packedSize(len(normal), normalBits)+packedSize(len(exceptional), exceptionalBits))
	out = append(out, algorithm, byte(n>>16), byte(n>>8), byte(n))
	out = append(out, pack(normal, normalBits)...)
	out = append(out, pack(exceptional, exceptionalBits)...)
	return out
}
