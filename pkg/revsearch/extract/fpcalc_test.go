package extract

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		duration float64
		fp       string
		wantErr  bool
	}{
		{
			name:     "full output",
			input:    "FILE=clip.wav\nDURATION=3\nFINGERPRINT=AQAAAQE\n",
			duration: 3,
			fp:       "AQAAAQE",
		},
		{
			name:     "crlf and fractional duration",
			input:    "DURATION=12.50\r\nFINGERPRINT=AQAAAA\r\n",
			duration: 12.5,
			fp:       "AQAAAA",
		},
		{
			name:    "no fingerprint",
			input:   "FILE=clip.wav\nDURATION=3\n",
			wantErr: true,
		},
		{
			name:    "bad duration",
			input:   "DURATION=abc\nFINGERPRINT=AQAAAA\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ParseOutput([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.duration, out.Duration)
			assert.Equal(t, tt.fp, string(out.Fingerprint))
		})
	}
}

func TestParseOutputNoFingerprintSentinel(t *testing.T) {
	_, err := ParseOutput(nil)
	assert.ErrorIs(t, err, ErrNoFingerprint)
}

// fakeFpcalc writes a shell script that mimics fpcalc's output format.
func fakeFpcalc(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fpcalc")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestFpcalcRun(t *testing.T) {
	raw, err := fingerprint.Encode(fingerprint.Vector{3, 1, 4, 1, 5}, fingerprint.DefaultAlgorithm)
	require.NoError(t, err)

	bin := fakeFpcalc(t, "echo \"FILE=$3\"\necho DURATION=7\necho FINGERPRINT="+string(raw)+"\n")

	out, err := Fpcalc{Path: bin}.Run(context.Background(), "clip.wav")
	require.NoError(t, err)
	assert.Equal(t, 7.0, out.Duration)

	v, err := fingerprint.Decode(out.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, fingerprint.Vector{3, 1, 4, 1, 5}, v)
}

func TestFpcalcFailure(t *testing.T) {
	bin := fakeFpcalc(t, "echo 'ERROR: could not open file' >&2\nexit 2\n")

	_, err := Fpcalc{Path: bin}.Fingerprint(context.Background(), "clip.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not open file")
}

func TestFpcalcReal(t *testing.T) {
	if _, err := exec.LookPath("fpcalc"); err != nil {
		t.Skipf("fpcalc not available: %v", err)
	}
	_, err := Fpcalc{}.Fingerprint(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}
