// Package fingerprint decodes Chromaprint fingerprint records and scores
// decoded fingerprints against each other.
package fingerprint

import (
	"math"
	"strconv"
)

// Vector is a decoded fingerprint: one 32-bit sub-fingerprint per audio frame,
// in time order. Vectors are never modified after decoding.
type Vector []uint32

// Equal reports whether v and o hold the same elements in the same order.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// Distance is a dissimilarity score. Lower is more similar, 0 means the
// compared spans are identical.
type Distance int

// Infinite marks two fingerprints that cannot be compared, e.g. because one
// of them is empty.
const Infinite Distance = math.MaxInt

// IsInfinite reports whether d is the incomparable sentinel.
func (d Distance) IsInfinite() bool {
	return d == Infinite
}

func (d Distance) String() string {
	if d.IsInfinite() {
		return "inf"
	}
	return strconv.Itoa(int(d))
}

// MarshalJSON encodes finite distances as numbers and Infinite as null.
func (d Distance) MarshalJSON() ([]byte, error) {
	if d.IsInfinite() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, int64(d), 10), nil
}

// UnmarshalJSON accepts a number or null (Infinite).
func (d *Distance) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*d = Infinite
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*d = Distance(n)
	return nil
}
