package utils

import (
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/config"
	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// sensitiveQueryMarkers flag queries whose string arguments must not be logged
var sensitiveQueryMarkers = []string{
	constants.ColumnAccessToken,
	"secret",
	"token",
}

// InitLogger replaces the global zerolog logger with one built from the
// logging settings. Unknown levels fall back to info.
func InitLogger(cfg *config.AppConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = newLogger(cfg, os.Stdout)

	if err != nil {
		log.Warn().Str("configured", cfg.Logging.Level).Msg("Unknown log level, using info")
	}
	log.Info().Str("log_level", level.String()).Msg("Logger initialized")
}

// newLogger writes JSON lines, or human readable lines when the console
// format is asked for outside production.
func newLogger(cfg *config.AppConfig, out io.Writer) zerolog.Logger {
	w := out
	if strings.EqualFold(cfg.Logging.Format, "console") && !cfg.App.IsProduction() {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).With().
		Timestamp().
		Str("app", cfg.App.Name).
		Str("version", cfg.App.Version).
		Str("env", cfg.App.Environment).
		Logger()
}

// LogHTTPRequest writes the access log line of one request. Failures are
// raised to warn or error, admin API and webhook traffic is logged at info and
// everything else, health probes included, only at debug.
func LogHTTPRequest(requestID, method, path, remoteAddr, userAgent string, statusCode int, latency time.Duration) {
	log.WithLevel(requestLevel(path, statusCode)).
		Str(constants.RequestIDContextKey, requestID).
		Str("method", method).
		Str("path", path).
		Str("remote_addr", remoteAddr).
		Str("user_agent", userAgent).
		Int("status", statusCode).
		Dur("latency", latency).
		Msg("HTTP Request")
}

func requestLevel(path string, statusCode int) zerolog.Level {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case statusCode >= http.StatusBadRequest:
		return zerolog.WarnLevel
	case path == constants.WebhookPath, strings.HasPrefix(path, constants.APIBasePath):
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// LogPanic logs a recovered panic with its stack. Fields add the context
// the panic happened in, such as the request or the webhook event.
func LogPanic(recovered interface{}, stack []byte, fields map[string]string) {
	event := log.Error().
		Interface("panic", recovered).
		Str("stack", string(stack))
	for key, value := range fields {
		event = event.Str(key, value)
	}
	event.Msg("Panic recovered")
}

// LogDBQuery logs a query at debug level, or at error level when it failed
func LogDBQuery(query string, args []interface{}, duration time.Duration, err error) {
	event := log.Debug()
	if err != nil {
		event = log.Error().Err(err)
	}

	event.
		Str("query", query).
		Interface("args", maskQueryArgs(query, args)).
		Dur("duration", duration).
		Msg("Database query executed")
}

// maskQueryArgs redacts the string arguments of queries that touch secrets
// such as page access tokens.
func maskQueryArgs(query string, args []interface{}) []interface{} {
	lowered := strings.ToLower(query)
	sensitive := slices.ContainsFunc(sensitiveQueryMarkers, func(marker string) bool {
		return strings.Contains(lowered, marker)
	})
	if !sensitive {
		return args
	}

	masked := make([]interface{}, len(args))
	for i, arg := range args {
		if _, isString := arg.(string); isString {
			masked[i] = constants.LogRedactedValue
		} else {
			masked[i] = arg
		}
	}
	return masked
}
