// Package audio prepares uploaded clips for fingerprinting: ffmpeg turns any
// input into mono PCM WAV and ProbeWAV checks the result before fpcalc runs.
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/himanishpuri/revsearch/pkg/utils"
)

const (
	DefaultSampleRate = 44100
	DefaultTimeout    = 30 * time.Second
)

type ConvertWAVConfig struct {
	SampleRate int
	// FFmpegPath defaults to "ffmpeg" on PATH.
	FFmpegPath string
}

// ConvertToMonoWAV transcodes inputPath into a fresh mono 16-bit WAV inside
// outputDir and returns its path. The caller owns (and removes) the output.
func ConvertToMonoWAV(ctx context.Context, inputPath, outputDir string, cfg ConvertWAVConfig) (string, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, fmt.Sprintf("%s-%s.wav", base, uuid.NewString()))
	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(
		ctx,
		cfg.FFmpegPath,
		"-y",
		"-v", "quiet",
		"-i", inputPath,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", cfg.SampleRate),
		"-c:a", "pcm_s16le",
		tmpPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %v (%s)", err, strings.TrimSpace(string(out)))
	}

	if err := utils.MoveFile(tmpPath, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

// FFmpeg converts clips with ConvertToMonoWAV and verifies the output with
// ProbeWAV.
type FFmpeg struct {
	Path       string
	TempDir    string
	SampleRate int
}

// ToWAV returns a probed mono WAV for inputPath. Clips that decode to no audio
// fail with ErrEmptyAudio; the partial output is removed in that case.
func (f FFmpeg) ToWAV(ctx context.Context, inputPath string) (string, error) {
	dir := f.TempDir
	if dir == "" {
		dir = os.TempDir()
	}

	wavPath, err := ConvertToMonoWAV(ctx, inputPath, dir, ConvertWAVConfig{
		SampleRate: f.SampleRate,
		FFmpegPath: f.Path,
	})
	if err != nil {
		return "", err
	}

	if _, err := ProbeWAV(wavPath); err != nil {
		utils.DeleteFile(wavPath)
		return "", err
	}
	return wavPath, nil
}
