package revsearch

import (
	"context"

	"github.com/himanishpuri/revsearch/pkg/revsearch/extract"
)

// Service identifies audio clips against a corpus of fingerprint records.
type Service interface {
	// FindBestMatch decodes a fingerprint record and returns the closest corpus entry.
	FindBestMatch(ctx context.Context, query []byte) (MatchResult, error)
	// MatchAudio transcodes and fingerprints an audio file, then matches it.
	MatchAudio(ctx context.Context, audioPath string) (MatchResult, error)
	// AddTrack fingerprints an audio file and stores it under name.
	AddTrack(ctx context.Context, audioPath, name string) (string, error)
	// AddFingerprint stores an existing fingerprint record under name.
	AddFingerprint(ctx context.Context, name string, record []byte) (string, error)
	ListTracks(ctx context.Context) ([]string, error)
	DeleteTrack(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Transcoder turns an arbitrary audio upload into a WAV file the extractor
// accepts. The returned file is owned and removed by the caller.
type Transcoder interface {
	ToWAV(ctx context.Context, inputPath string) (string, error)
}

// Extractor is re-exported so callers configuring a Service need only this package.
type Extractor = extract.Extractor

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
