// Package server provides the HTTP server for the PageGuard moderation bot.
// It wires storage, the Graph API client, the moderation pipeline and the
// admin API together and manages the server lifecycle.
//
// Initialization follows a fixed order so every layer receives its
// dependencies ready to use: database, auth providers, repositories,
// services, handlers and finally routes. Background work (rate limiter
// housekeeping and scheduled log retention) runs alongside the HTTP server
// and stops with it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/yasinhessnawi1/pageguard/internal/auth"
	"github.com/yasinhessnawi1/pageguard/internal/config"
	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/database"
	"github.com/yasinhessnawi1/pageguard/internal/dedupe"
	"github.com/yasinhessnawi1/pageguard/internal/graph"
	"github.com/yasinhessnawi1/pageguard/internal/handlers"
	"github.com/yasinhessnawi1/pageguard/internal/moderation"
	"github.com/yasinhessnawi1/pageguard/internal/repository"
	"github.com/yasinhessnawi1/pageguard/internal/service"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
	"github.com/yasinhessnawi1/pageguard/internal/utils/ratelimit"
	"github.com/yasinhessnawi1/pageguard/internal/webhook"
	"github.com/yasinhessnawi1/pageguard/migrations"
)

// Handlers contains all HTTP handlers for the application.
type Handlers struct {
	// WebhookHandler serves the Facebook webhook endpoint
	WebhookHandler *handlers.WebhookHandler

	// PageHandler manages connected pages and their settings
	PageHandler *handlers.PageHandler

	// BlockHandler manages the per-page block list
	BlockHandler *handlers.BlockHandler

	// LogHandler exposes the action log
	LogHandler *handlers.LogHandler

	// FacebookHandler proxies read-only Graph API data and manual sends
	FacebookHandler *handlers.FacebookHandler
}

// Server represents the API server.
// It encapsulates all server components and handles server lifecycle management,
// including initialization, startup, and graceful shutdown.
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Db provides database health checks and is closed on shutdown
	Db ServerDBHealthChecker

	// router handles HTTP routing
	router chi.Router

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	// jwtValidator authenticates admin API requests
	jwtValidator auth.JWTValidator

	// limiter holds the per-client token buckets for the admin API
	limiter *ratelimit.Store

	// logCleaner runs the scheduled retention cleanup
	logCleaner LogCleaner

	// scheduler runs maintenance tasks, nil until SetupMaintenanceTasks
	scheduler *cron.Cron

	// closers release external resources such as the Redis client
	closers []func() error

	// httpServer is the underlying HTTP server
	httpServer *http.Server
}

// NewServer creates a new server instance with all required components.
//
// Parameters:
//   - cfg: Application configuration
//
// Returns:
//   - A fully initialized Server instance ready to start
//   - An error if initialization of any component fails
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{
		Config: cfg,
	}

	pool, err := s.setupDatabase()
	if err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	s.setupAuthProviders()

	repos := s.setupRepositories(pool)

	svcs, err := s.setupServices(repos)
	if err != nil {
		s.closeResources()
		return nil, fmt.Errorf("failed to set up services: %w", err)
	}

	s.setupHandlers(svcs)

	s.limiter = newRateLimiter(cfg, constants.RateLimiterIdleExpiry)

	s.SetupRoutes()
	s.setupHTTPServer()

	return s, nil
}

// setupHTTPServer creates the HTTP server around the configured router.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:         s.Config.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  s.Config.Server.ReadTimeout,
		WriteTimeout: s.Config.Server.WriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}
}

// setupDatabase connects to PostgreSQL and brings the schema up to date.
func (s *Server) setupDatabase() (*database.Pool, error) {
	db, err := database.Connect(s.Config)
	if err != nil {
		return nil, err
	}

	s.Db = db

	migrator := migrations.NewMigrator(db)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return db, nil
}

// setupAuthProviders creates the JWT service guarding the admin API.
func (s *Server) setupAuthProviders() {
	s.jwtValidator = auth.NewJWTService(&s.Config.JWT)
}

// repositories holds all repositories used by the server.
type repositories struct {
	pages         repository.PageRepository
	blocks        repository.BlockedUserRepository
	logs          repository.ActionLogRepository
	comments      repository.CommentRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
}

// setupRepositories creates repository instances for each domain entity.
func (s *Server) setupRepositories(db *database.Pool) *repositories {
	return &repositories{
		pages:         repository.NewPageRepository(db),
		blocks:        repository.NewBlockedUserRepository(db),
		logs:          repository.NewActionLogRepository(db),
		comments:      repository.NewCommentRepository(db),
		conversations: repository.NewConversationRepository(db),
		messages:      repository.NewMessageRepository(db),
	}
}

// services holds all services used by the server.
type services struct {
	pages      *service.PageService
	blocks     *service.BlockService
	logs       *service.LogService
	facebook   *service.FacebookService
	dispatcher *webhook.Dispatcher
}

// setupServices creates the business services and the webhook pipeline.
//
// Parameters:
//   - repos: The repositories created by setupRepositories
//
// Returns:
//   - The services used by the handlers
//   - An error if the token key cannot be derived or the dedupe store is unreachable
func (s *Server) setupServices(repos *repositories) (*services, error) {
	tokenKey, err := s.tokenKey()
	if err != nil {
		return nil, err
	}

	dedupeStore, closeDedupe, err := dedupe.New(context.Background(), s.Config.Dedupe)
	if err != nil {
		return nil, fmt.Errorf("failed to set up webhook dedupe: %w", err)
	}
	s.closers = append(s.closers, closeDedupe)

	graphClient := graph.NewClient(s.Config.Graph)

	pageService := service.NewPageService(repos.pages, tokenKey, service.DefaultPageSettings(s.Config.PageDefaults))
	logService := service.NewLogService(pageService, repos.logs, s.Config.Retention.RetentionWindow())

	recorder := moderation.NewRecorder(repos.comments, repos.conversations, repos.messages)
	evaluator := moderation.NewEvaluator(repos.blocks, repos.logs, moderation.GraphActions(graphClient), recorder)

	s.logCleaner = logService

	return &services{
		pages:    pageService,
		blocks:   service.NewBlockService(pageService, repos.blocks, repos.logs),
		logs:     logService,
		facebook: service.NewFacebookService(pageService, service.GraphPages(graphClient), repos.logs),
		dispatcher: webhook.NewDispatcher(webhook.Options{
			VerifyToken:  s.Config.Webhook.VerifyToken,
			AppSecret:    s.Config.Webhook.AppSecret,
			Dedupe:       dedupeStore,
			DedupeWindow: s.Config.Dedupe.Window,
		}, pageService, evaluator, repos.logs),
	}, nil
}

// tokenKey derives the key used to encrypt page access tokens at rest.
func (s *Server) tokenKey() ([]byte, error) {
	if s.Config.Security.TokenEncryptionKey == "" && s.Config.App.IsDevelopment() {
		log.Warn().Msg("TOKEN_ENCRYPTION_KEY not set, deriving page token key from JWT secret")
	}

	key, err := utils.DeriveTokenKey(s.Config.PageTokenSecret())
	if err != nil {
		return nil, fmt.Errorf("failed to derive page token key: %w", err)
	}
	return key, nil
}

// setupHandlers creates handler instances using the initialized services.
func (s *Server) setupHandlers(svcs *services) {
	s.Handlers = &Handlers{
		WebhookHandler:  handlers.NewWebhookHandler(svcs.dispatcher),
		PageHandler:     handlers.NewPageHandler(svcs.pages),
		BlockHandler:    handlers.NewBlockHandler(svcs.blocks),
		LogHandler:      handlers.NewLogHandler(svcs.logs),
		FacebookHandler: handlers.NewFacebookHandler(svcs.facebook),
	}
}

// Start runs the server until SIGINT or SIGTERM is received.
//
// Returns:
//   - An error if the server fails to start or does not stop gracefully
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.Run(ctx)
}

// Run starts the HTTP server together with its background tasks and blocks
// until ctx is cancelled or one of them fails. The server is then shut down
// within the configured shutdown timeout.
//
// Parameters:
//   - ctx: Cancelling this context triggers a graceful shutdown
//
// Returns:
//   - An error if the server failed or could not stop gracefully
func (s *Server) Run(ctx context.Context) error {
	if err := s.SetupMaintenanceTasks(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("address", s.httpServer.Addr).
			Msg("Starting server")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if s.limiter != nil {
		g.Go(func() error {
			s.limiter.RunCleanup(gctx, constants.RateLimiterCleanupInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the server. In-flight requests are
// completed, running maintenance tasks are awaited and external
// connections are closed.
//
// Parameters:
//   - ctx: Context with timeout for the shutdown operation
//
// Returns:
//   - An error if shutdown fails within the context timeout
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info().Msg("Server stopped gracefully")

	if s.scheduler != nil {
		select {
		case <-s.scheduler.Stop().Done():
		case <-ctx.Done():
			log.Warn().Msg("Maintenance tasks still running at shutdown")
		}
	}

	s.closeResources()

	return nil
}

// closeResources closes the external clients and the database.
func (s *Server) closeResources() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			log.Warn().Err(err).Msg("Failed to close resource")
		}
	}
	s.closers = nil

	if s.Db != nil {
		s.Db.Close()
		log.Info().Msg("Database connection closed")
	}
}

// newRateLimiter builds the per-client limiter of the admin API. Log cleanup
// gets its own, much smaller budget.
func newRateLimiter(cfg *config.AppConfig, idleExpiry time.Duration) *ratelimit.Store {
	limiter := ratelimit.NewStore(ratelimit.Rate{
		RequestsPerSecond: cfg.RateLimit.Rate,
		Burst:             cfg.RateLimit.Burst,
	}, idleExpiry)
	limiter.SetRate(cleanupRateCategory, ratelimit.Rate{
		RequestsPerSecond: constants.CleanupRateLimitRate,
		Burst:             constants.CleanupRateLimitBurst,
	})
	return limiter
}

// SetupMaintenanceTasks schedules the periodic maintenance tasks. Expired
// action logs are removed on the configured cleanup schedule.
//
// Returns:
//   - An error if the cleanup schedule cannot be parsed
func (s *Server) SetupMaintenanceTasks() error {
	if s.logCleaner == nil {
		return nil
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(s.Config.Retention.CleanupSchedule, s.runLogCleanup); err != nil {
		return fmt.Errorf("invalid log cleanup schedule: %w", err)
	}

	scheduler.Start()
	s.scheduler = scheduler

	log.Info().
		Str("schedule", s.Config.Retention.CleanupSchedule).
		Int("retention_days", s.Config.Retention.LogDays).
		Msg("Log cleanup scheduled")

	return nil
}

// runLogCleanup removes action logs older than the retention window.
func (s *Server) runLogCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.MaintenanceTaskTimeout)
	defer cancel()

	result, err := s.logCleaner.Cleanup(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to clean up expired action logs")
		return
	}

	if result.Deleted > 0 {
		log.Info().
			Int64("count", result.Deleted).
			Time("cutoff", result.Cutoff).
			Msg("Cleaned up expired action logs")
	}
}
