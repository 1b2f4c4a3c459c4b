package audio

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	ErrInvalidAudio = errors.New("audio: not a valid WAV file")
	ErrEmptyAudio   = errors.New("audio: clip contains no samples")
)

// probeChunk is the number of samples read per PCMBuffer call.
const probeChunk = 8192

// WAVInfo describes a decoded WAV file.
type WAVInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
	Samples    int
	// Peak is the largest absolute sample value.
	Peak int
}

// Silent reports whether every sample is zero.
func (i WAVInfo) Silent() bool { return i.Peak == 0 }

// ProbeWAV reads the header and walks the PCM data of path.
func ProbeWAV(path string) (*WAVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidAudio)
	}

	duration, err := decoder.Duration()
	if err != nil {
		return nil, fmt.Errorf("reading duration of %s: %w", path, err)
	}

	info := &WAVInfo{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
		Duration:   duration,
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: info.Channels,
			SampleRate:  info.SampleRate,
		},
		Data:           make([]int, probeChunk),
		SourceBitDepth: info.BitDepth,
	}
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return nil, fmt.Errorf("reading samples from %s: %w", path, err)
		}
		if n == 0 {
			break
		}
		for _, s := range buf.Data[:n] {
			if s < 0 {
				s = -s
			}
			if s > info.Peak {
				info.Peak = s
			}
		}
		info.Samples += n
	}

	if info.Samples == 0 {
		return info, fmt.Errorf("%s: %w", path, ErrEmptyAudio)
	}
	return info, nil
}
