package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// AppConfig represents the entire application configuration
type AppConfig struct {
	App          AppSettings          `yaml:"app"`
	Database     DatabaseSettings     `yaml:"database"`
	Server       ServerSettings       `yaml:"server"`
	Webhook      WebhookSettings      `yaml:"webhook"`
	Graph        GraphSettings        `yaml:"graph"`
	JWT          JWTSettings          `yaml:"jwt"`
	Logging      LoggingSettings      `yaml:"logging"`
	CORS         CORSSettings         `yaml:"cors"`
	Security     SecuritySettings     `yaml:"security"`
	Retention    RetentionSettings    `yaml:"retention"`
	Dedupe       DedupeSettings       `yaml:"dedupe"`
	RateLimit    RateLimitSettings    `yaml:"rate_limit"`
	PageDefaults PageDefaultsSettings `yaml:"page_defaults"`
}

// AppSettings contains general application settings
type AppSettings struct {
	Environment string `yaml:"environment" env:"APP_ENV"`
	Name        string `yaml:"name" env:"APP_NAME"`
	Version     string `yaml:"version" env:"APP_VERSION"`
}

// DatabaseSettings contains database connection settings
type DatabaseSettings struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Name     string `yaml:"name" env:"DB_NAME"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	SSL      bool   `yaml:"ssl" env:"DB_SSL"`
	MaxConns int    `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns int    `yaml:"min_conns" env:"DB_MIN_CONNS"`
}

// ServerSettings contains HTTP server settings
type ServerSettings struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// WebhookSettings contains the Facebook webhook subscription settings.
// AppSecret is optional; when set every POST body must carry a valid
// X-Hub-Signature-256 header.
type WebhookSettings struct {
	VerifyToken string `yaml:"verify_token" env:"WEBHOOK_VERIFY_TOKEN"`
	AppSecret   string `yaml:"app_secret" env:"FACEBOOK_APP_SECRET"`
}

// GraphSettings contains Facebook Graph API client settings
type GraphSettings struct {
	BaseURL string        `yaml:"base_url" env:"GRAPH_BASE_URL"`
	Version string        `yaml:"version" env:"GRAPH_VERSION"`
	Timeout time.Duration `yaml:"timeout" env:"GRAPH_TIMEOUT"`
}

// JWTSettings contains the settings used to verify admin bearer tokens.
// Tokens are issued by the external auth service.
type JWTSettings struct {
	Secret string `yaml:"secret" env:"JWT_SECRET"`
	Issuer string `yaml:"issuer" env:"JWT_ISSUER"`
}

// LoggingSettings contains logging configuration
type LoggingSettings struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"`
	RequestLog bool   `yaml:"request_log" env:"LOG_REQUESTS"`
}

// CORSSettings contains CORS configuration
type CORSSettings struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
}

// SecuritySettings contains secrets used to protect data at rest
type SecuritySettings struct {
	TokenEncryptionKey string `yaml:"token_encryption_key" env:"TOKEN_ENCRYPTION_KEY"`
}

// RetentionSettings controls action log retention
type RetentionSettings struct {
	LogDays         int    `yaml:"log_days" env:"LOG_RETENTION_DAYS"`
	CleanupSchedule string `yaml:"cleanup_schedule" env:"LOG_CLEANUP_SCHEDULE"`
}

// DedupeSettings controls webhook delivery de-duplication.
// When RedisAddr is empty an in-process store is used.
type DedupeSettings struct {
	Enabled       bool          `yaml:"enabled" env:"DEDUPE_ENABLED"`
	Window        time.Duration `yaml:"window" env:"DEDUPE_WINDOW"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB"`
}

// RateLimitSettings controls the per-client token bucket on the admin API
type RateLimitSettings struct {
	Rate  float64 `yaml:"rate" env:"RATE_LIMIT_RATE"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

// PageDefaultsSettings holds the moderation settings a page starts with when connected
type PageDefaultsSettings struct {
	WelcomeMessage        string `yaml:"welcome_message" env:"PAGE_DEFAULT_WELCOME_MESSAGE"`
	AutoReplyMessage      string `yaml:"auto_reply_message" env:"PAGE_DEFAULT_AUTO_REPLY"`
	CommentAutoReply      string `yaml:"comment_auto_reply" env:"PAGE_DEFAULT_COMMENT_REPLY"`
	AutoDeleteBadComments *bool  `yaml:"auto_delete_bad_comments" env:"PAGE_DEFAULT_AUTO_DELETE"`
	WelcomeMode           string `yaml:"welcome_mode" env:"PAGE_DEFAULT_WELCOME_MODE"`
}

// ConnectionString returns the PostgreSQL connection string
func (dbs *DatabaseSettings) ConnectionString() string {
	sslParams := constants.PostgresSSLDisable
	if dbs.SSL {
		sslParams = constants.PostgresSSLRequire
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s %s",
		dbs.Host, dbs.Port, dbs.User, dbs.Password, dbs.Name, sslParams,
	)
}

// ServerAddress returns the complete server address
func (ss *ServerSettings) ServerAddress() string {
	return fmt.Sprintf("%s:%d", ss.Host, ss.Port)
}

// SignatureRequired reports whether webhook bodies must be signed
func (ws *WebhookSettings) SignatureRequired() bool {
	return ws.AppSecret != ""
}

// RetentionWindow returns the log retention period as a duration
func (rs *RetentionSettings) RetentionWindow() time.Duration {
	return time.Duration(rs.LogDays) * 24 * time.Hour
}

// PageTokenSecret returns the secret page access tokens are encrypted with.
// Development setups without a dedicated key fall back to the JWT secret.
func (c *AppConfig) PageTokenSecret() string {
	if c.Security.TokenEncryptionKey == "" && c.App.IsDevelopment() {
		return c.JWT.Secret
	}
	return c.Security.TokenEncryptionKey
}

// IsDevelopment checks if the application is running in development mode
func (as *AppSettings) IsDevelopment() bool {
	return strings.ToLower(as.Environment) == constants.EnvDevelopment
}

// IsProduction checks if the application is running in production mode
func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

// IsTesting checks if the application is running in testing mode
func (as *AppSettings) IsTesting() bool {
	return strings.ToLower(as.Environment) == constants.EnvTesting
}

var (
	// cfg holds the current application configuration
	cfg *AppConfig
)

// Load loads the configuration from a config file and environment variables
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	// Load configuration from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Override with environment variables
	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	setDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = config

	logConfig(config)

	return config, nil
}

// Get returns the current application configuration
func Get() *AppConfig {
	if cfg == nil {
		log.Fatal().Msg("configuration not loaded")
	}
	return cfg
}

// setDefaults sets default values for any missing configuration
func setDefaults(config *AppConfig) {
	if config.App.Environment == "" {
		config.App.Environment = constants.EnvDevelopment
	}
	if config.App.Name == "" {
		config.App.Name = "pageguard"
	}
	if config.App.Version == "" {
		config.App.Version = "1.0.0"
	}

	if config.Server.Port == 0 {
		config.Server.Port = constants.DefaultServerPort
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = constants.DefaultReadTimeout
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = constants.DefaultWriteTimeout
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = constants.DefaultShutdownTimeout
	}

	if config.Database.Port == 0 {
		config.Database.Port = constants.DefaultDBPort
	}
	if config.Database.MaxConns == 0 {
		config.Database.MaxConns = constants.DefaultDBMaxConnections
	}
	if config.Database.MinConns == 0 {
		config.Database.MinConns = constants.DefaultDBMinConnections
	}

	// Graph API defaults
	if config.Graph.BaseURL == "" {
		config.Graph.BaseURL = constants.DefaultGraphBaseURL
	}
	if config.Graph.Version == "" {
		config.Graph.Version = constants.DefaultGraphVersion
	}
	if config.Graph.Timeout == 0 {
		config.Graph.Timeout = constants.DefaultGraphTimeout
	}

	if config.JWT.Issuer == "" {
		config.JWT.Issuer = constants.DefaultJWTIssuer
	}

	if config.Logging.Level == "" {
		config.Logging.Level = constants.DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = constants.DefaultLogFormat
	}

	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{"*"}
	}

	if config.Retention.LogDays == 0 {
		config.Retention.LogDays = constants.DefaultLogRetentionDays
	}
	if config.Retention.CleanupSchedule == "" {
		config.Retention.CleanupSchedule = constants.DefaultCleanupSchedule
	}

	if config.Dedupe.Window == 0 {
		config.Dedupe.Window = constants.DefaultDedupeWindow
	}

	if config.RateLimit.Rate == 0 {
		config.RateLimit.Rate = constants.DefaultRateLimitRate
	}
	if config.RateLimit.Burst == 0 {
		config.RateLimit.Burst = constants.DefaultRateLimitBurst
	}

	// Page defaults: the copy new pages start with
	if config.PageDefaults.WelcomeMessage == "" {
		config.PageDefaults.WelcomeMessage = constants.DefaultWelcomeMessage
	}
	if config.PageDefaults.AutoReplyMessage == "" {
		config.PageDefaults.AutoReplyMessage = constants.DefaultAutoReplyMessage
	}
	if config.PageDefaults.CommentAutoReply == "" {
		config.PageDefaults.CommentAutoReply = constants.DefaultCommentAutoReply
	}
	if config.PageDefaults.AutoDeleteBadComments == nil {
		autoDelete := constants.DefaultAutoDeleteBadComment
		config.PageDefaults.AutoDeleteBadComments = &autoDelete
	}
	if config.PageDefaults.WelcomeMode == "" {
		config.PageDefaults.WelcomeMode = constants.DefaultWelcomeMode
	}
}

// validateConfig validates that the configuration has all required values
func validateConfig(config *AppConfig) error {
	env := strings.ToLower(config.App.Environment)
	if env != constants.EnvDevelopment && env != constants.EnvTesting && env != constants.EnvProduction {
		log.Warn().Str("environment", config.App.Environment).Msg("Invalid environment, defaulting to development")
		config.App.Environment = constants.EnvDevelopment
	}

	if config.Webhook.VerifyToken == "" {
		return fmt.Errorf("webhook verify token must be set")
	}

	if config.App.IsProduction() && (config.JWT.Secret == "" || config.JWT.Secret == "changeme") {
		return fmt.Errorf("JWT secret must be set in production")
	}

	if config.App.IsProduction() && config.Security.TokenEncryptionKey == "" {
		return fmt.Errorf("token encryption key must be set in production")
	}

	if config.Database.User == "" {
		return fmt.Errorf("database user must be set")
	}

	if config.Retention.LogDays < 0 {
		return fmt.Errorf("invalid log retention days: %d", config.Retention.LogDays)
	}

	if _, err := cron.ParseStandard(config.Retention.CleanupSchedule); err != nil {
		return fmt.Errorf("invalid log cleanup schedule %q: %w", config.Retention.CleanupSchedule, err)
	}

	mode := config.PageDefaults.WelcomeMode
	if mode != "every_message" && mode != "first_message" {
		return fmt.Errorf("invalid welcome mode: %s", mode)
	}

	logLevel := strings.ToLower(config.Logging.Level)
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLevels {
		if logLevel == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// logConfig logs the current configuration, masking sensitive values
func logConfig(config *AppConfig) {
	log.Info().
		Str("environment", config.App.Environment).
		Str("version", config.App.Version).
		Str("server", config.Server.ServerAddress()).
		Str("db_host", config.Database.Host).
		Int("db_port", config.Database.Port).
		Str("db_name", config.Database.Name).
		Str("graph_version", config.Graph.Version).
		Bool("signature_required", config.Webhook.SignatureRequired()).
		Bool("dedupe_enabled", config.Dedupe.Enabled).
		Int("log_retention_days", config.Retention.LogDays).
		Str("log_level", config.Logging.Level).
		Msg("Configuration loaded")
}
