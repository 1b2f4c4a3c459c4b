package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/revsearch/pkg/revsearch"
	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus"
	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
)

func TestParseValues(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want fingerprint.Vector
	}{
		{"spaces", "1 2 3", fingerprint.Vector{1, 2, 3}},
		{"commas", "1,2,3\n", fingerprint.Vector{1, 2, 3}},
		{"fpcalc raw", "FINGERPRINT=4294967295,0,7", fingerprint.Vector{4294967295, 0, 7}},
		{"json array", "[10, 20]", fingerprint.Vector{10, 20}},
		{"signed", "-1 -2147483648", fingerprint.Vector{0xFFFFFFFF, 0x80000000}},
		{"empty", "  ", fingerprint.Vector{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseValues(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValuesRejects(t *testing.T) {
	for _, in := range []string{"1 x 3", "4294967296", "-2147483649"} {
		_, err := parseValues(in)
		assert.Error(t, err, in)
	}
}

func TestLoadVectorCompressedRecord(t *testing.T) {
	want := fingerprint.Vector{1, 2, 3, 0xDEADBEEF}
	raw, err := fingerprint.Encode(want, 2)
	require.NoError(t, err)

	dir := t.TempDir()
	plain := filepath.Join(dir, "song.bin")
	require.NoError(t, os.WriteFile(plain, raw, 0o644))

	packed, err := corpus.CompressRecord("zstd", raw)
	require.NoError(t, err)
	name, err := corpus.RecordName("song", "zstd")
	require.NoError(t, err)
	zst := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(zst, packed, 0o644))

	for _, path := range []string{plain, zst} {
		v, alg, err := loadVector(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, v)
		assert.Equal(t, byte(2), alg)
	}
}

func TestLoadVectorRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.txt")
	require.NoError(t, os.WriteFile(path, []byte("AQAABQ"), 0o644))
	_, _, err := loadVector(path)
	assert.ErrorIs(t, err, fingerprint.ErrDecode)
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitDataError, exitCodeFor(revsearch.ErrBadQuery))
	assert.Equal(t, ExitStoreUnavailable, exitCodeFor(revsearch.ErrStoreUnavailable))
	assert.Equal(t, ExitExtraction, exitCodeFor(revsearch.ErrExtraction))
	assert.Equal(t, ExitError, exitCodeFor(os.ErrPermission))
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"match", "identify", "add", "list", "stats", "delete", "decode", "encode", "compare"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
