package fingerprint

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKnownRecord(t *testing.T) {
	v, algorithm, err := DecodeWithAlgorithm([]byte("AQAAAQE"))
	require.NoError(t, err)
	assert.Equal(t, byte(1), algorithm)
	assert.Equal(t, Vector{1}, v)
}

func TestDecodeIgnoresWhitespaceAndPadding(t *testing.T) {
	for _, raw := range []string{"AQAAAQE\n", "  AQAAAQE\r\n", "AQAAAQE="} {
		v, err := Decode([]byte(raw))
		require.NoError(t, err, "raw=%q", raw)
		assert.Equal(t, Vector{1}, v)
	}
}

func TestDecodeZeroLength(t *testing.T) {
	v, err := Decode([]byte("AQAAAA"))
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Empty(t, v)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"invalid utf8", []byte{0xff, 0xfe, 0xfd}},
		{"invalid base64", []byte("!!!!")},
		{"empty", []byte("")},
		{"short header", []byte("AQA")},
		{"missing normal bits", []byte("AQAABQ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDecode))

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.NotEmpty(t, de.Reason)
		})
	}
}

func TestDecodeMissingExceptionalBits(t *testing.T) {
	// 1<<31 needs a gap of 32: normal 7 + exceptional 25.
	full := compress(Vector{1 << 31}, DefaultAlgorithm)
	truncated := full[:len(full)-1]

	_, _, err := decompress(truncated)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	cases := []Vector{
		{},
		{0},
		{1, 2, 3},
		{1 << 31, 0xFFFFFFFF, 0, 0x80000001},
		{42, 42, 42, 42},
	}
	for n := 0; n < 20; n++ {
		v := make(Vector, 1+rng.IntN(400))
		for i := range v {
			v[i] = rng.Uint32()
		}
		cases = append(cases, v)
	}

	for _, want := range cases {
		raw, err := Encode(want, DefaultAlgorithm)
		require.NoError(t, err)

		got, algorithm, err := DecodeWithAlgorithm(raw)
		require.NoError(t, err)
		assert.Equal(t, DefaultAlgorithm, algorithm)
		assert.True(t, want.Equal(got), "round trip mismatch for %d values", len(want))
	}
}

func TestEncodeKnownRecord(t *testing.T) {
	raw, err := Encode(Vector{1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "AQAAAQE", string(raw))

	raw, err = Encode(Vector{}, 1)
	require.NoError(t, err)
	assert.Equal(t, "AQAAAA", string(raw))
}

func TestPackUnpack(t *testing.T) {
	values := []byte{1, 7, 0, 3, 5, 2, 6, 4, 1}
	packed := pack(values, normalBits)
	assert.Len(t, packed, packedSize(len(values), normalBits))

	unpacked := unpack(packed, normalBits)
	require.GreaterOrEqual(t, len(unpacked), len(values))
	assert.Equal(t, values, unpacked[:len(values)])

	ext := []byte{25, 0, 31, 4}
	unpacked = unpack(pack(ext, exceptionalBits), exceptionalBits)
	assert.Equal(t, ext, unpacked[:len(ext)])
}
