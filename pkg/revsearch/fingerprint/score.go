package fingerprint

import (
	"fmt"
	"math/bits"
	"strings"
)

// Scorer computes the distance between two fingerprints. Implementations must
// be symmetric, never negative, and return Infinite when either side is empty.
type Scorer interface {
	Score(a, b Vector) Distance
}

// ElementHamming aligns both vectors at index 0, truncates to the shorter
// length and counts the positions whose 32-bit values differ. Each differing
// element adds 1 regardless of how many of its bits differ.
type ElementHamming struct{}

func (ElementHamming) Score(a, b Vector) Distance {
	m := min(len(a), len(b))
	if m == 0 {
		return Infinite
	}
	d := 0
	for i := 0; i < m; i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return Distance(d)
}

// BitHamming uses the same alignment as ElementHamming but counts differing
// bits, so a nearly identical sub-fingerprint costs less than a random one.
type BitHamming struct{}

func (BitHamming) Score(a, b Vector) Distance {
	m := min(len(a), len(b))
	if m == 0 {
		return Infinite
	}
	d := 0
	for i := 0; i < m; i++ {
		d += bits.OnesCount32(a[i] ^ b[i])
	}
	return Distance(d)
}

// Compare scores a against b with the default ElementHamming scorer.
func Compare(a, b Vector) Distance {
	return ElementHamming{}.Score(a, b)
}

// ScorerByName resolves the scorer names accepted in configuration.
// An empty name selects ElementHamming.
func ScorerByName(name string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "element", "elements":
		return ElementHamming{}, nil
	case "bit", "bits":
		return BitHamming{}, nil
	default:
		return nil, fmt.Errorf("unknown scorer %q (want element or bits)", name)
	}
}
