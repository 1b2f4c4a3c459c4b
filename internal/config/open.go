package config

import (
	"context"
	"fmt"
	"io"

	"github.com/himanishpuri/revsearch/pkg/revsearch"
	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus"
	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus/minio"
	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus/s3"
	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus/sqlstore"
	"github.com/himanishpuri/revsearch/pkg/revsearch/extract"
	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
)

// OpenStore connects to the configured corpus store.
func (c *Config) OpenStore(ctx context.Context) (corpus.Store, error) {
	switch c.Corpus.Store {
	case StoreDir:
		return corpus.NewDirStore(c.Corpus.Dir), nil
	case StoreSQLite:
		st, err := sqlstore.Open(c.Corpus.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case StoreMinIO:
		m := c.Corpus.MinIO
		client, err := minio.Dial(m.Endpoint, m.AccessKey, m.SecretKey, m.Secure)
		if err != nil {
			return nil, err
		}
		return minio.NewStore(client, m.Bucket, m.Prefix), nil
	case StoreS3:
		client, err := s3.NewClient(ctx, c.Corpus.S3.Region, c.Corpus.S3.Endpoint)
		if err != nil {
			return nil, err
		}
		return s3.NewStore(client, c.Corpus.S3.Bucket, c.Corpus.S3.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown corpus store %q", c.Corpus.Store)
	}
}

// ServiceOptions translates the configuration into service options for store.
func (c *Config) ServiceOptions(store corpus.Store, log revsearch.Logger) ([]revsearch.Option, error) {
	order, err := corpus.ParseOrder(c.Corpus.Order)
	if err != nil {
		return nil, err
	}
	scorer, err := fingerprint.ScorerByName(c.Match.Scorer)
	if err != nil {
		return nil, err
	}

	opts := []revsearch.Option{
		revsearch.WithStore(store),
		revsearch.WithOrder(order),
		revsearch.WithScorer(scorer),
		revsearch.WithWorkers(c.Match.Workers),
		revsearch.WithFetchConcurrency(c.Corpus.FetchConcurrency),
		revsearch.WithCompression(c.Corpus.Compression),
		revsearch.WithFFmpegPath(c.Tools.FFmpeg),
		revsearch.WithExtractor(extract.Fpcalc{Path: c.Tools.Fpcalc, Length: c.Tools.FpcalcLength}),
		revsearch.WithTempDir(c.Tools.TempDir),
		revsearch.WithSampleRate(c.Tools.SampleRate),
	}
	if log != nil {
		opts = append(opts, revsearch.WithLogger(log))
	}
	return opts, nil
}

// NewService opens the store and builds a service over it. extra options are
// applied last.
func (c *Config) NewService(ctx context.Context, log revsearch.Logger, extra ...revsearch.Option) (revsearch.Service, error) {
	store, err := c.OpenStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", c.Corpus.Store, err)
	}

	opts, err := c.ServiceOptions(store, log)
	if err == nil {
		var svc revsearch.Service
		if svc, err = revsearch.NewService(append(opts, extra...)...); err == nil {
			return svc, nil
		}
		err = fmt.Errorf("failed to create service: %w", err)
	}
	if closer, ok := store.(io.Closer); ok {
		closer.Close()
	}
	return nil, err
}
