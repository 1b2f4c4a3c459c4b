package audio

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWAV(t *testing.T, path string, sampleRate int, samples []int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func TestProbeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	samples := make([]int, 44100)
	for i := range samples {
		samples[i] = (i%200 - 100) * 50
	}
	samples[1234] = -12000
	writeWAV(t, path, 44100, samples)

	info, err := ProbeWAV(path)
	require.NoError(t, err)
	assert.Equal(t, 44100, info.SampleRate)
	assert.Equal(t, 1, info.Channels)
	assert.Equal(t, 16, info.BitDepth)
	assert.Equal(t, len(samples), info.Samples)
	assert.Equal(t, 12000, info.Peak)
	assert.False(t, info.Silent())
	assert.InDelta(t, 1.0, info.Duration.Seconds(), 0.01)
}

func TestProbeWAVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	writeWAV(t, path, 44100, []int{})

	_, err := ProbeWAV(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyAudio)
}

func TestProbeWAVInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.webm")
	require.NoError(t, os.WriteFile(path, []byte("definitely not RIFF data"), 0o644))

	_, err := ProbeWAV(path)
	assert.ErrorIs(t, err, ErrInvalidAudio)

	_, err = ProbeWAV(filepath.Join(t.TempDir(), "missing.wav"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConvertMissingBinary(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.webm")
	require.NoError(t, os.WriteFile(in, []byte("x"), 0o644))

	_, err := FFmpeg{Path: filepath.Join(t.TempDir(), "no-ffmpeg"), TempDir: t.TempDir()}.ToWAV(context.Background(), in)
	require.Error(t, err)
}

func TestConvertToMonoWAV(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skipf("ffmpeg not available: %v", err)
	}

	dir := t.TempDir()
	in := filepath.Join(dir, "clip.wav")
	samples := make([]int, 22050)
	for i := range samples {
		samples[i] = (i % 100) * 100
	}
	writeWAV(t, in, 22050, samples)

	outDir := filepath.Join(dir, "out")
	wavPath, err := FFmpeg{TempDir: outDir}.ToWAV(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, in, wavPath)
	assert.Equal(t, outDir, filepath.Dir(wavPath))

	info, err := ProbeWAV(wavPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultSampleRate, info.SampleRate)
	assert.Equal(t, 1, info.Channels)

	// Input must survive; the output name never collides with it.
	_, err = os.Stat(in)
	assert.NoError(t, err)
}
