package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus"
	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
)

// loadVector reads a fingerprint record from a file or stdin and decodes it.
// Compressed corpus records (song.bin.zst, ...) are opened first.
func loadVector(arg string) (fingerprint.Vector, byte, error) {
	data, err := readInput(arg)
	if err != nil {
		return nil, 0, err
	}
	if arg != "-" && corpus.IsRecordName(arg) {
		if data, err = corpus.OpenRecord(arg, data); err != nil {
			return nil, 0, err
		}
	}
	return fingerprint.DecodeWithAlgorithm(data)
}

// parseValues accepts sub-fingerprint values separated by whitespace or
// commas, optionally wrapped in brackets as printed by "fpcalc -raw" or a
// JSON array.
func parseValues(text string) (fingerprint.Vector, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "FINGERPRINT=")
	text = strings.Trim(text, "[]")

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	v := make(fingerprint.Vector, 0, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		// fpcalc -raw -signed prints int32 values
		if n < -1<<31 || n > 1<<32-1 {
			return nil, fmt.Errorf("value %d: %d does not fit in 32 bits", i+1, n)
		}
		v = append(v, uint32(n))
	}
	return v, nil
}
