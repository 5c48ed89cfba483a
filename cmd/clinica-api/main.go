package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/api"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/auth"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/config"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/content"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/gateway"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/ratelimit"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/schema"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		serve(cfg, logger)
	case "check-gateway":
		os.Exit(checkGateway(cfg, logger))
	case "token":
		os.Exit(issueToken(cfg, os.Args[2:]))
	default:
		log.Fatalf("Unknown command: %s (use 'serve', 'check-gateway' or 'token')", cmd)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development() {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	return zc.Build()
}

func newGateway(cfg *config.Config, logger *zap.Logger) *gateway.Gateway {
	return gateway.New(cfg.Gateway(), gateway.NewHTTPTransport(nil, cfg.GatewayTimeout), logger)
}

func serve(cfg *config.Config, logger *zap.Logger) {
	ctx := context.Background()

	gw := newGateway(cfg, logger)
	status := gw.Status()
	if !status.Configured {
		logger.Warn("Gateway endpoint not configured, submissions will be simulated")
	}
	logger.Info("Gateway configured",
		zap.Bool("configured", status.Configured),
		zap.String("environment", status.Environment),
	)

	compiler, err := schema.NewFormCompiler(ctx)
	if err != nil {
		logger.Fatal("Failed to compile form schemas", zap.Error(err))
	}

	catalog, err := content.Load()
	if err != nil {
		logger.Fatal("Failed to load content catalog", zap.Error(err))
	}

	forms := service.NewFormService(compiler, gw, logger)
	forms.SetSpecialties(catalog.SpecialtyNames())

	deps := api.Dependencies{
		Forms:          forms,
		Content:        catalog,
		Auth:           auth.NewJWTConfig(cfg.JWTSecret),
		AllowedOrigins: cfg.AllowedOrigins(),
		Log:            logger,
	}

	// Redis is optional; without it form posts are not rate limited
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis not reachable, rate limiter will fail open", zap.Error(err))
		}
		deps.Limiter = ratelimit.New(rdb, cfg.RateLimitPerMinute, time.Minute, logger)
	}

	// HTTP router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/v1", api.Routes(deps))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	logger.Info("Starting server", zap.String("addr", cfg.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
