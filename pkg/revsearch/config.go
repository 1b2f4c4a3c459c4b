package revsearch

import (
	"os"

	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus"
	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
)

type Config struct {
	// Store takes precedence over CorpusDir.
	Store     corpus.Store
	CorpusDir string

	Scorer           fingerprint.Scorer
	Workers          int
	Order            corpus.Order
	FetchConcurrency int
	// Compression is applied to records written by AddTrack/AddFingerprint.
	Compression string

	Extractor  Extractor
	Transcoder Transcoder
	FFmpegPath string
	FpcalcPath string
	TempDir    string
	SampleRate int

	Logger Logger
}

type Option func(*Config)

func WithStore(store corpus.Store) Option {
	return func(c *Config) {
		c.Store = store
	}
}

func WithCorpusDir(dir string) Option {
	return func(c *Config) {
		c.CorpusDir = dir
	}
}

func WithScorer(scorer fingerprint.Scorer) Option {
	return func(c *Config) {
		c.Scorer = scorer
	}
}

// WithWorkers sets the scan fan-out. A negative value uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

func WithOrder(order corpus.Order) Option {
	return func(c *Config) {
		c.Order = order
	}
}

func WithFetchConcurrency(n int) Option {
	return func(c *Config) {
		c.FetchConcurrency = n
	}
}

func WithCompression(compression string) Option {
	return func(c *Config) {
		c.Compression = compression
	}
}

func WithExtractor(e Extractor) Option {
	return func(c *Config) {
		c.Extractor = e
	}
}

func WithTranscoder(t Transcoder) Option {
	return func(c *Config) {
		c.Transcoder = t
	}
}

func WithFFmpegPath(path string) Option {
	return func(c *Config) {
		c.FFmpegPath = path
	}
}

func WithFpcalcPath(path string) Option {
	return func(c *Config) {
		c.FpcalcPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func defaultConfig() *Config {
	return &Config{
		CorpusDir:  "fingerprints",
		Workers:    1,
		Order:      corpus.OrderStore,
		TempDir:    os.TempDir(),
		SampleRate: 44100,
	}
}
