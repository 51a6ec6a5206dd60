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
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/semdex/internal/config"
	"github.com/kailas-cloud/semdex/internal/domain"
	domdoc "github.com/kailas-cloud/semdex/internal/domain/document"
	logpkg "github.com/kailas-cloud/semdex/internal/logger"
	"github.com/kailas-cloud/semdex/internal/metrics"
	chiTransport "github.com/kailas-cloud/semdex/internal/transport/chi"
	documentuc "github.com/kailas-cloud/semdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/semdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/semdex/internal/usecase/search"
	"github.com/kailas-cloud/semdex/internal/version"
)

// gateway is what the usecases need from a vector store backend.
type gateway interface {
	documentuc.Repository
	searchuc.Repository
	EnsureIndex(ctx context.Context) (bool, error)
}

// backend is a connected store plus the gateway and embedder built on it.
type backend struct {
	gateway  gateway
	embedder domain.Embedder
	pinger   healthuc.Pinger
	close    func()
}

func main() {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "semdex: load config:", err)
		os.Exit(1)
	}
	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "semdex: logger:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, &cfg, logger)
	stop()
	if err != nil {
		logger.Error("semdex stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
	_ = logger.Sync()
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting semdex API server",
		zap.String("version", version.String()),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("filter_field", cfg.Search.FilterField),
	)
	metrics.Register()

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	be, err := connect(ctx, cfg, readiness, logger)
	if err != nil {
		return fmt.Errorf("vector store: %w", err)
	}
	defer be.close()

	created, err := be.gateway.EnsureIndex(ctx)
	if err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	logger.Info("Vector index ready", zap.Bool("created", created))

	srv, err := newHTTPServer(cfg, be, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newHTTPServer(cfg *config.Config, be *backend, logger *zap.Logger) (*http.Server, error) {
	admission, err := domdoc.NewAdmission(cfg.Ingest.MaxContentTokens)
	if err != nil {
		return nil, fmt.Errorf("ingest settings: %w", err)
	}
	logger.Info("Admission configured", zap.Int("max_words", admission.MaxWords()))

	docSvc := documentuc.New(be.gateway, admission).WithCounters(
		metrics.LabelCounter{Vec: metrics.IngestDocumentsTotal},
		metrics.LabelCounter{Vec: metrics.DeleteRequestsTotal},
	)
	searchSvc := searchuc.New(be.gateway).WithObserver(metrics.SearchObserver{})
	healthSvc := healthuc.New(be.pinger, newEmbeddingHealthChecker(be.embedder))

	server := chiTransport.NewServer(docSvc, searchSvc, healthSvc, cfg.Search.FilterField, logger)
	readTimeout := time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second
	return &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: chiTransport.NewRouter(server, chiTransport.RouterConfig{
			APIKeys: cfg.Auth.APIKeys,
			Logger:  logger,
		}),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}, nil
}
