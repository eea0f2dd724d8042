package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/config"
	"github.com/pesio-ai/be-tbc-triage/internal/handler"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/httpclient"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/logger"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/middleware"
	"github.com/pesio-ai/be-tbc-triage/internal/repository"
	"github.com/pesio-ai/be-tbc-triage/internal/service"
	"github.com/pesio-ai/be-tbc-triage/internal/stats"
	"github.com/pesio-ai/be-tbc-triage/internal/wizard"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       cfg.Service.LogLevel,
		Environment: cfg.Service.Environment,
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
	})

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("environment", cfg.Service.Environment).
		Str("backend", cfg.Backend.BaseURL).
		Msg("Starting TBC triage service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session storage: Postgres when configured, memory otherwise
	var (
		sessions repository.SessionStore
		audit    repository.AuditStore
	)
	if cfg.Database.URL != "" {
		pool, err := openDatabase(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare database schema")
		}
		sessions = repository.NewPostgresSessionStore(pool)
		audit = repository.NewPostgresAuditStore(pool)
		log.Info().Msg("Database connection established")
	} else {
		sessions = repository.NewMemorySessionStore()
		audit = repository.NewMemoryAuditStore()
		log.Warn().Msg("DATABASE_URL not set, wizard sessions are kept in memory")
	}

	// Backend clients
	rest := httpclient.NewClient(cfg.Backend.BaseURL, httpclient.WithTimeout(cfg.Backend.Timeout))
	stepsClient := client.NewStepsClient(rest)
	locationsClient := client.NewLocationsClient(rest, cfg.Backend.LocationsPrefix)
	statsClient := client.NewStatsClient(rest)
	adminClient := client.NewAdminClient(rest)
	authClient := client.NewAuthClient(rest)

	// Services
	recorder := stats.NewRecorder(locationsClient, statsClient, log.Component("stats"), cfg.Wizard.AsyncStats)
	wizardService := service.NewWizardService(stepsClient, locationsClient, recorder, sessions, audit,
		service.WizardConfig{
			Transitions: wizard.Transitions{
				InitialStepID:      cfg.Wizard.InitialStepID,
				ProvinceNextStepID: cfg.Wizard.ProvinceNextStepID,
				CityNextStepID:     cfg.Wizard.CityNextStepID,
			},
			SessionTTL: cfg.Wizard.SessionTTL,
		}, log)
	locationService := service.NewLocationService(locationsClient)
	dashboardService := service.NewDashboardService(statsClient)

	janitorInterval := cfg.Wizard.SessionTTL / 2
	if janitorInterval > 0 {
		go wizardService.RunJanitor(ctx, janitorInterval)
	}

	// HTTP routes and middleware
	httpHandler := handler.NewHTTPHandler(wizardService, locationService, dashboardService, adminClient, authClient, log)

	var h http.Handler = httpHandler.Router()
	h = middleware.RequestID(h)
	h = middleware.Logger(&log.Logger)(h)
	h = middleware.Recovery(&log.Logger)(h)
	h = middleware.CORS(cfg.Server.AllowedOrigins)(h)
	h = middleware.Timeout(cfg.Server.RequestTimeout)(h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// gRPC health server
	healthServer := health.NewServer()
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(middleware.UnaryLogger(&log.Logger)))
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create gRPC listener")
	}

	go func() {
		log.Info().Int("port", cfg.GRPC.Port).Msg("Starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Error().Err(err).Msg("gRPC server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	grpcServer.GracefulStop()

	// let in-flight consultation submissions finish
	recorder.Wait()

	log.Info().Msg("Server stopped")
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}
