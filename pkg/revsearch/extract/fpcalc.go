// Package extract runs the Chromaprint fpcalc tool to fingerprint audio files.
package extract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultLength is the number of seconds of audio fpcalc analyses.
const DefaultLength = 120

var ErrNoFingerprint = errors.New("extract: fpcalc output has no FINGERPRINT line")

// Extractor turns an audio file into a fingerprint record.
type Extractor interface {
	Fingerprint(ctx context.Context, path string) ([]byte, error)
}

// Output is the parsed result of one fpcalc run.
type Output struct {
	Duration    float64
	Fingerprint []byte
}

// Fpcalc runs the fpcalc binary.
type Fpcalc struct {
	// Path defaults to "fpcalc" on PATH.
	Path string
	// Length limits the analysed audio in seconds; 0 means DefaultLength.
	Length  int
	Timeout time.Duration
}

func (f Fpcalc) Fingerprint(ctx context.Context, path string) ([]byte, error) {
	out, err := f.Run(ctx, path)
	if err != nil {
		return nil, err
	}
	return out.Fingerprint, nil
}

func (f Fpcalc) Run(ctx context.Context, path string) (*Output, error) {
	bin := f.Path
	if bin == "" {
		bin = "fpcalc"
	}
	length := f.Length
	if length <= 0 {
		length = DefaultLength
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-length", strconv.Itoa(length), path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("fpcalc failed: %v\nstderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return ParseOutput(stdout.Bytes())
}

// ParseOutput reads the KEY=VALUE lines printed by fpcalc.
func ParseOutput(data []byte) (*Output, error) {
	out := &Output{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "DURATION":
			d, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing fpcalc duration %q: %w", value, err)
			}
			out.Duration = d
		case "FINGERPRINT":
			out.Fingerprint = []byte(value)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading fpcalc output: %w", err)
	}
	if len(out.Fingerprint) == 0 {
		return nil, ErrNoFingerprint
	}
	return out, nil
}
