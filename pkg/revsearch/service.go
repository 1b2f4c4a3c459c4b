// Package revsearch identifies short audio clips by comparing their Chromaprint
// fingerprints with a corpus of stored fingerprint records.
package revsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/himanishpuri/revsearch/pkg/logger"
	"github.com/himanishpuri/revsearch/pkg/revsearch/audio"
	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus"
	"github.com/himanishpuri/revsearch/pkg/revsearch/extract"
	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
	"github.com/himanishpuri/revsearch/pkg/revsearch/match"
	"github.com/himanishpuri/revsearch/pkg/utils"
)

// searchService is the default implementation of the Service interface.
type searchService struct {
	store  corpus.Store
	index  *corpus.Index
	engine *match.Engine
	log    Logger
	config *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.Scorer == nil {
		cfg.Scorer = fingerprint.ElementHamming{}
	}
	if _, err := corpus.RecordName("x", cfg.Compression); err != nil {
		return nil, err
	}

	store := cfg.Store
	if store == nil {
		if cfg.CorpusDir == "" {
			return nil, errors.New("no corpus store or directory configured")
		}
		store = corpus.NewDirStore(cfg.CorpusDir)
	}

	if cfg.Transcoder == nil {
		cfg.Transcoder = audio.FFmpeg{
			Path:       cfg.FFmpegPath,
			TempDir:    cfg.TempDir,
			SampleRate: cfg.SampleRate,
		}
	}
	if cfg.Extractor == nil {
		cfg.Extractor = extract.Fpcalc{Path: cfg.FpcalcPath}
	}

	index := corpus.NewIndex(store, corpus.Options{
		Order:            cfg.Order,
		FetchConcurrency: cfg.FetchConcurrency,
	})

	return &searchService{
		store: store,
		index: index,
		engine: match.New(index, match.Options{
			Scorer:  cfg.Scorer,
			Workers: cfg.Workers,
			Logger:  cfg.Logger,
		}),
		log:    cfg.Logger,
		config: cfg,
	}, nil
}

// FindBestMatch decodes query and scans the corpus. An undecodable query is
// ErrBadQuery; an unreadable corpus is ErrStoreUnavailable. Corrupt corpus
// records are skipped.
func (s *searchService) FindBestMatch(ctx context.Context, query []byte) (MatchResult, error) {
	vec, err := fingerprint.Decode(query)
	if err != nil {
		return noMatch(), fmt.Errorf("%w: %w", ErrBadQuery, err)
	}
	s.log.Debugf("Query fingerprint has %d elements", len(vec))

	res, err := s.engine.FindBestMatch(ctx, vec)
	if err != nil {
		return noMatch(), err
	}

	out := MatchResult{
		BestID:   res.BestID,
		Found:    res.Found,
		Distance: res.Distance,
		Scanned:  res.Scanned,
		Skipped:  res.Skipped,
	}
	if res.Skipped > 0 {
		s.log.Warnf("Skipped %d unreadable corpus records", res.Skipped)
	}
	s.log.Infof("Best match: %s (distance %s, %d records scanned)", out.Label(), out.Distance, out.Scanned)
	return out, nil
}

// MatchAudio transcodes audioPath, fingerprints it and matches the result.
// Intermediate files are removed before returning.
func (s *searchService) MatchAudio(ctx context.Context, audioPath string) (MatchResult, error) {
	s.log.Infof("Matching audio: %s", audioPath)

	raw, err := s.fingerprintAudio(ctx, audioPath)
	if err != nil {
		return noMatch(), err
	}
	return s.FindBestMatch(ctx, raw)
}

// AddTrack fingerprints audioPath and stores the record. An empty name uses
// the audio file's base name. Returns the stored record name.
func (s *searchService) AddTrack(ctx context.Context, audioPath, name string) (string, error) {
	if name == "" {
		base := filepath.Base(audioPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if _, err := s.writer(); err != nil {
		return "", err
	}
	s.log.Infof("Processing track: %s", name)

	raw, err := s.fingerprintAudio(ctx, audioPath)
	if err != nil {
		return "", err
	}
	if _, err := fingerprint.Decode(raw); err != nil {
		return "", fmt.Errorf("%w: fpcalc produced an undecodable fingerprint: %w", ErrExtraction, err)
	}
	return s.put(ctx, name, raw)
}

// AddFingerprint stores an existing record after checking that it decodes.
func (s *searchService) AddFingerprint(ctx context.Context, name string, record []byte) (string, error) {
	if _, err := s.writer(); err != nil {
		return "", err
	}
	if _, err := fingerprint.Decode(record); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadQuery, err)
	}
	return s.put(ctx, name, record)
}

func (s *searchService) put(ctx context.Context, name string, raw []byte) (string, error) {
	w, err := s.writer()
	if err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	id, err := corpus.RecordName(name, s.config.Compression)
	if err != nil {
		return "", err
	}
	data, err := corpus.CompressRecord(s.config.Compression, raw)
	if err != nil {
		return "", fmt.Errorf("compressing %s: %w", id, err)
	}
	if err := w.Put(ctx, id, data); err != nil {
		return "", fmt.Errorf("storing %s: %w", id, err)
	}

	s.log.Infof("Stored fingerprint record %s", id)
	return id, nil
}

func (s *searchService) ListTracks(ctx context.Context) ([]string, error) {
	return s.index.Names(ctx)
}

func (s *searchService) DeleteTrack(ctx context.Context, id string) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	if !corpus.IsRecordName(id) {
		return fmt.Errorf("%w: %q is not a fingerprint record", ErrInvalidName, id)
	}
	if err := w.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	s.log.Infof("Deleted fingerprint record %s", id)
	return nil
}

func (s *searchService) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Store: describeStore(s.store)}

	if c, ok := s.store.(corpus.Counter); ok {
		n, err := c.Count(ctx)
		if err != nil {
			return stats, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		stats.Tracks = n
		return stats, nil
	}

	names, err := s.index.Names(ctx)
	if err != nil {
		return stats, err
	}
	stats.Tracks = int64(len(names))
	return stats, nil
}

func (s *searchService) Close() error {
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// fingerprintAudio runs the transcoder and extractor, removing the
// intermediate WAV afterwards.
func (s *searchService) fingerprintAudio(ctx context.Context, audioPath string) ([]byte, error) {
	wavPath, err := s.config.Transcoder.ToWAV(ctx, audioPath)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, audio.ErrEmptyAudio) || errors.Is(err, audio.ErrInvalidAudio) {
			return nil, fmt.Errorf("%w: %w", ErrBadQuery, err)
		}
		return nil, fmt.Errorf("%w: audio conversion: %w", ErrExtraction, err)
	}
	defer func() {
		if err := utils.DeleteFile(wavPath); err != nil {
			s.log.Warnf("Failed to remove temp file %s: %v", wavPath, err)
		}
	}()

	raw, err := s.config.Extractor.Fingerprint(ctx, wavPath)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return raw, nil
}

func (s *searchService) writer() (corpus.Writer, error) {
	w, ok := s.store.(corpus.Writer)
	if !ok {
		return nil, ErrReadOnlyStore
	}
	return w, nil
}

func describeStore(store corpus.Store) string {
	if st, ok := store.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprintf("%T", store)
}

func noMatch() MatchResult {
	return MatchResult{Distance: fingerprint.Infinite}
}
