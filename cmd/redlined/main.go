// Command redlined is the redline HTTP service.
// It serves evaluation, hybrid scoring, arena runs, task artifacts,
// Prometheus metrics and a health check.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/redline-eval/redline/internal/api"
	"github.com/redline-eval/redline/internal/artifact"
	"github.com/redline-eval/redline/internal/logging"
	"github.com/redline-eval/redline/pkg/arena"
	"github.com/redline-eval/redline/pkg/config"
	"github.com/redline-eval/redline/pkg/judge"
)

// env holds the secrets and overrides read from the environment.
type env struct {
	ConfigPath   string
	Port         string
	APIKey       string
	OpenAIKey    string
	AWSAccessKey string
	AWSSecretKey string
}

func loadEnv() env {
	return env{
		ConfigPath:   envOrDefault("REDLINE_CONFIG", "/etc/redline/config.yaml"),
		Port:         os.Getenv("PORT"),
		APIKey:       os.Getenv("REDLINE_API_KEY"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	e := loadEnv()

	cfg, err := config.Load(e.ConfigPath)
	if err != nil {
		return err
	}
	if e.Port != "" {
		cfg.Server.Port = e.Port
	}

	logger := logging.New(cfg.Log)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, err := newHandler(ctx, cfg, e, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: api.Chain(mux,
			api.Instrument(logger),
			api.CORS(cfg.Server.AllowedOrigins),
			api.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst),
			api.APIKeyAuth(e.APIKey),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting redlined", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	return nil
}

// newHandler wires the engine, judge, optional generator and artifact store.
func newHandler(ctx context.Context, cfg *config.Config, e env, logger *zap.Logger) (*api.Handler, error) {
	engine, err := cfg.Engine()
	if err != nil {
		return nil, err
	}

	j, err := cfg.NewJudge(e.OpenAIKey, logger)
	if err != nil {
		return nil, err
	}
	if e.OpenAIKey == "" {
		logger.Warn("OPENAI_API_KEY not set: hybrid scores use the rule score only and /v1/arena is disabled")
	}

	var gen arena.Generator
	oc := cfg.OpenAIConfig(e.OpenAIKey)
	client, err := judge.NewOpenAIClient(oc)
	switch {
	case errors.Is(err, judge.ErrNoCredential):
	case err != nil:
		return nil, err
	default:
		model := cfg.Arena.Model
		if model == "" {
			model = oc.Model
		}
		gen = arena.NewOpenAIGenerator(client, model)
	}

	store, err := artifact.Open(ctx, cfg.Storage, e.AWSAccessKey, e.AWSSecretKey)
	if err != nil {
		return nil, fmt.Errorf("opening artifact store: %w", err)
	}

	return api.NewHandler(api.Options{
		Engine:    engine,
		Judge:     j,
		Generator: gen,
		ArenaOpts: []arena.Option{
			arena.WithRetries(cfg.Arena.Retries),
			arena.WithBackoff(time.Duration(cfg.Arena.Backoff) * time.Millisecond),
		},
		Store:  store,
		Logger: logger,
	}), nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
