// Package config loads revsearch settings from revsearch.yaml, .env and the
// environment, and turns them into a configured corpus store and service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus"
	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
)

const (
	// DefaultFile is read from the working directory when no path is given.
	DefaultFile = "revsearch.yaml"
	// EnvFile names the config file through the environment.
	EnvFile = "REVSEARCH_CONFIG"
)

// Store kinds.
const (
	StoreDir    = "dir"
	StoreSQLite = "sqlite"
	StoreMinIO  = "minio"
	StoreS3     = "s3"
)

type Config struct {
	LogLevel string       `yaml:"log_level,omitempty"`
	Corpus   CorpusConfig `yaml:"corpus"`
	Match    MatchConfig  `yaml:"match"`
	Tools    ToolsConfig  `yaml:"tools"`
	Server   ServerConfig `yaml:"server"`
}

type CorpusConfig struct {
	Store string `yaml:"store"`
	Dir   string `yaml:"dir,omitempty"`
	// SQLitePath is the database file for the sqlite store.
	SQLitePath       string      `yaml:"sqlite_path,omitempty"`
	Order            string      `yaml:"order,omitempty"`
	Compression      string      `yaml:"compression,omitempty"`
	FetchConcurrency int         `yaml:"fetch_concurrency,omitempty"`
	MinIO            MinIOConfig `yaml:"minio,omitempty"`
	S3               S3Config    `yaml:"s3,omitempty"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Secure    bool   `yaml:"secure,omitempty"`
}

type S3Config struct {
	Region   string `yaml:"region,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Bucket   string `yaml:"bucket,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

type MatchConfig struct {
	Scorer string `yaml:"scorer,omitempty"`
	// Workers < 0 uses every CPU.
	Workers int `yaml:"workers,omitempty"`
}

type ToolsConfig struct {
	FFmpeg     string `yaml:"ffmpeg,omitempty"`
	Fpcalc     string `yaml:"fpcalc,omitempty"`
	TempDir    string `yaml:"temp_dir,omitempty"`
	SampleRate int    `yaml:"sample_rate,omitempty"`
	// FpcalcLength is the number of seconds fpcalc analyses.
	FpcalcLength int `yaml:"fpcalc_length,omitempty"`
}

type ServerConfig struct {
	Port        string   `yaml:"port,omitempty"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
	// RateLimit is match requests per second; 0 disables limiting.
	RateLimit      float64       `yaml:"rate_limit,omitempty"`
	RateBurst      int           `yaml:"rate_burst,omitempty"`
	MaxUploadMB    int64         `yaml:"max_upload_mb,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Corpus: CorpusConfig{
			Store:      StoreDir,
			Dir:        "fingerprints",
			SQLitePath: "revsearch.sqlite3",
			Order:      "store",
		},
		Match: MatchConfig{
			Scorer:  "element",
			Workers: 1,
		},
		Tools: ToolsConfig{
			FFmpeg:       "ffmpeg",
			Fpcalc:       "fpcalc",
			TempDir:      os.TempDir(),
			SampleRate:   44100,
			FpcalcLength: 120,
		},
		Server: ServerConfig{
			Port:           "8080",
			CORSOrigins:    []string{"*"},
			RateLimit:      5,
			RateBurst:      10,
			MaxUploadMB:    32,
			RequestTimeout: 2 * time.Minute,
		},
	}
}

// Load builds the effective configuration: defaults, then the YAML file,
// then .env and REVSEARCH_* variables. An empty path falls back to
// $REVSEARCH_CONFIG and then DefaultFile; only an explicitly named file must exist.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvFile)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"REVSEARCH_LOG_LEVEL":        &c.LogLevel,
		"REVSEARCH_STORE":            &c.Corpus.Store,
		"REVSEARCH_CORPUS_DIR":       &c.Corpus.Dir,
		"REVSEARCH_SQLITE_PATH":      &c.Corpus.SQLitePath,
		"REVSEARCH_ORDER":            &c.Corpus.Order,
		"REVSEARCH_COMPRESSION":      &c.Corpus.Compression,
		"REVSEARCH_MINIO_ENDPOINT":   &c.Corpus.MinIO.Endpoint,
		"REVSEARCH_MINIO_ACCESS_KEY": &c.Corpus.MinIO.AccessKey,
		"REVSEARCH_MINIO_SECRET_KEY": &c.Corpus.MinIO.SecretKey,
		"REVSEARCH_MINIO_BUCKET":     &c.Corpus.MinIO.Bucket,
		"REVSEARCH_MINIO_PREFIX":     &c.Corpus.MinIO.Prefix,
		"REVSEARCH_S3_REGION":        &c.Corpus.S3.Region,
		"REVSEARCH_S3_ENDPOINT":      &c.Corpus.S3.Endpoint,
		"REVSEARCH_S3_BUCKET":        &c.Corpus.S3.Bucket,
		"REVSEARCH_S3_PREFIX":        &c.Corpus.S3.Prefix,
		"REVSEARCH_SCORER":           &c.Match.Scorer,
		"REVSEARCH_FFMPEG":           &c.Tools.FFmpeg,
		"REVSEARCH_FPCALC":           &c.Tools.Fpcalc,
		"REVSEARCH_TEMP_DIR":         &c.Tools.TempDir,
		"REVSEARCH_PORT":             &c.Server.Port,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"REVSEARCH_WORKERS":           &c.Match.Workers,
		"REVSEARCH_FETCH_CONCURRENCY": &c.Corpus.FetchConcurrency,
		"REVSEARCH_SAMPLE_RATE":       &c.Tools.SampleRate,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv("REVSEARCH_MINIO_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REVSEARCH_MINIO_SECURE: %w", err)
		}
		c.Corpus.MinIO.Secure = b
	}
	if v, ok := os.LookupEnv("REVSEARCH_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	return nil
}

// Validate checks that the selected store has what it needs and that names
// resolve to known scorers, orders and compressions.
func (c *Config) Validate() error {
	var errs []error

	switch c.Corpus.Store {
	case StoreDir:
		if c.Corpus.Dir == "" {
			errs = append(errs, errors.New("corpus.dir is required for the dir store"))
		}
	case StoreSQLite:
		if c.Corpus.SQLitePath == "" {
			errs = append(errs, errors.New("corpus.sqlite_path is required for the sqlite store"))
		}
	case StoreMinIO:
		if c.Corpus.MinIO.Endpoint == "" || c.Corpus.MinIO.Bucket == "" {
			errs = append(errs, errors.New("corpus.minio.endpoint and corpus.minio.bucket are required for the minio store"))
		}
	case StoreS3:
		if c.Corpus.S3.Bucket == "" {
			errs = append(errs, errors.New("corpus.s3.bucket is required for the s3 store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown corpus.store %q (want dir, sqlite, minio or s3)", c.Corpus.Store))
	}

	if _, err := corpus.ParseOrder(c.Corpus.Order); err != nil {
		errs = append(errs, err)
	}
	if _, err := corpus.RecordName("x", c.Corpus.Compression); err != nil {
		errs = append(errs, err)
	}
	if _, err := fingerprint.ScorerByName(c.Match.Scorer); err != nil {
		errs = append(errs, err)
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
