package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/himanishpuri/revsearch/internal/config"
	"github.com/himanishpuri/revsearch/pkg/logger"
)

var (
	configPath     string
	port           string
	store          string
	corpusDir      string
	allowedOrigins string
	logLevel       string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to revsearch.yaml (default: $REVSEARCH_CONFIG or ./revsearch.yaml)")
	flag.StringVar(&port, "port", getEnvOrDefault("PORT", ""), "HTTP server port")
	flag.StringVar(&store, "store", "", "Corpus store: dir, sqlite, minio or s3")
	flag.StringVar(&corpusDir, "corpus", "", "Directory of .bin fingerprint records (dir store)")
	flag.StringVar(&allowedOrigins, "origins", "", "Comma-separated list of allowed CORS origins (use * for all)")
	flag.StringVar(&logLevel, "log-level", getEnvOrDefault("LOG_LEVEL", ""), "Log level: debug, info, warn, error")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// applyFlags lets command-line flags override the loaded configuration.
func applyFlags(cfg *config.Config) error {
	if port != "" {
		cfg.Server.Port = port
	}
	if store != "" {
		cfg.Corpus.Store = store
	}
	if corpusDir != "" {
		cfg.Corpus.Dir = corpusDir
	}
	if allowedOrigins != "" {
		var origins []string
		for _, o := range strings.Split(allowedOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg.Validate()
}

func main() {
	flag.Parse()
	log := logger.GetLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := applyFlags(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if lvl, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.Warnf("%v; keeping %s", err, log.Level())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := cfg.NewService(ctx, log.With("revsearch"))
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	server := NewServer(service, &ServerConfig{
		Port:           cfg.Server.Port,
		TempDir:        cfg.Tools.TempDir,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		AllowedOrigins: cfg.Server.CORSOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, log.With("http"))

	if err := server.Run(ctx); err != nil {
		log.Errorf("Server failed: %v", err)
		service.Close()
		os.Exit(1)
	}
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := s.newHTTPServer()
	s.logEndpoints()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
