package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/middleware"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

const (
	cleanupRateCategory = "cleanup"

	corsAllowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowedHeaders = "Accept, Authorization, Content-Type, X-Request-ID"
)

// SetupRoutes configures the routes for the application.
//
// The configured routes include:
//   - Health check and version endpoints (unprotected)
//   - The Facebook webhook, authenticated by the verify token and body signature
//   - The admin API for pages, blocked users, action logs and Graph read-through,
//     protected by JWT authentication and rate limiting
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	r.Use(corsMiddleware(s.Config.CORS.AllowedOrigins, s.Config.CORS.AllowCredentials))

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders())
	if s.Config.Logging.RequestLog {
		r.Use(requestLogger)
	}

	r.Get(constants.HealthPath, s.handleHealth)
	r.Get(constants.VersionPath, s.handleVersion)

	// Facebook delivers events here. The handler bounds and signs the body itself.
	r.Route(constants.WebhookPath, func(r chi.Router) {
		r.Get("/", s.Handlers.WebhookHandler.Verify)
		r.Post("/", s.Handlers.WebhookHandler.Receive)
	})

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(middleware.RateLimit(s.limiter, "api"))
		}
		r.Use(middleware.JWTAuth(s.jwtValidator))
		r.Use(middleware.MaxBodySize(constants.MaxRequestBodySize))
		r.Use(chimiddleware.NoCache)

		pages := s.Handlers.PageHandler
		r.Get(constants.PagesBasePath, pages.ListPages)
		r.Post(constants.PagesBasePath, pages.ConnectPage)
		r.Get(constants.PageDetailPath, pages.GetPage)
		r.Put(constants.PageSettingsPath, pages.UpdateSettings)
		r.Put(constants.PageBotTogglePath, pages.ToggleBot)
		r.Get(constants.BannedWordsPath, pages.GetBannedWords)
		r.Post(constants.BannedWordsPath, pages.AddBannedWords)
		r.Delete(constants.BannedWordsPath, pages.RemoveBannedWords)

		blocks := s.Handlers.BlockHandler
		r.Get(constants.BlockedUsersPath, blocks.ListBlockedUsers)
		r.Post(constants.BlockedUsersPath, blocks.BlockUser)
		r.Get(constants.BlockedStatsPath, blocks.GetBlockStats)
		r.Put(constants.UnblockUserPath, blocks.UnblockUser)

		logs := s.Handlers.LogHandler
		r.Get(constants.PageLogsPath, logs.ListLogs)
		r.Get(constants.PageLogStatsPath, logs.GetLogStats)
		if s.limiter != nil {
			r.With(middleware.RateLimit(s.limiter, cleanupRateCategory)).Delete(constants.LogsCleanupPath, logs.CleanupLogs)
		} else {
			r.Delete(constants.LogsCleanupPath, logs.CleanupLogs)
		}

		facebook := s.Handlers.FacebookHandler
		r.Get(constants.PagePostsPath, facebook.GetPosts)
		r.Get(constants.PostCommentsPath, facebook.GetPostComments)
		r.Get(constants.PageConversationsPath, facebook.GetConversations)
		r.Get(constants.ConversationMessagesPath, facebook.GetConversationMessages)
		r.Get(constants.PageUserInfoPath, facebook.GetUserInfo)
		r.Post(constants.PageMessagesPath, facebook.SendMessage)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.NotFound(w, constants.MsgResourceNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.MethodNotAllowed(w)
	})

	s.router = r
}

// GetRouter returns the configured router.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

// handleHealth reports whether the database is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.Db.HealthCheck(r.Context()); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		utils.Error(w, http.StatusServiceUnavailable, "service_unavailable", "Service is not healthy", nil)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.Config.App.Version,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{
		"version":     s.Config.App.Version,
		"environment": s.Config.App.Environment,
	})
}

// requestLogger logs every request once it has been served.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		utils.LogHTTPRequest(
			chimiddleware.GetReqID(r.Context()),
			r.Method,
			r.URL.Path,
			r.RemoteAddr,
			r.UserAgent(),
			ww.Status(),
			time.Since(start),
		)
	})
}

// corsMiddleware creates a CORS middleware for the configured origins.
// Preflight requests from an allowed origin are answered directly with 204.
//
// Parameters:
//   - allowedOrigins: Origins allowed to call the API, "*" allows any origin
//   - allowCredentials: Whether browsers may send credentials cross-origin
//
// Returns:
//   - A middleware function that adds CORS headers to responses
func corsMiddleware(allowedOrigins []string, allowCredentials bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !originAllowed(allowedOrigins, origin) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			if allowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			w.Header().Set("Access-Control-Max-Age", "300")
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func originAllowed(allowedOrigins []string, origin string) bool {
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
